package model

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// modelDir creates a temp directory containing the given (empty) files.
func modelDir(t *testing.T, files ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestResolveEmbeddedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ggml-base.en.bin")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	d, err := Resolve(path)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if d.Kind != Embedded {
		t.Errorf("Kind = %q, want %q", d.Kind, Embedded)
	}
	if d.Model != path {
		t.Errorf("Model = %q, want %q", d.Model, path)
	}
	if d.Name != "ggml-base.en.bin" {
		t.Errorf("Name = %q, want %q", d.Name, "ggml-base.en.bin")
	}
}

func TestResolveSenseVoice(t *testing.T) {
	dir := modelDir(t, "tokens.txt", "model.int8.onnx")

	d, err := Resolve(dir)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if d.Kind != SenseVoice {
		t.Errorf("Kind = %q, want %q", d.Kind, SenseVoice)
	}
	if d.Model != filepath.Join(dir, "model.int8.onnx") {
		t.Errorf("Model = %q, want model.int8.onnx under dir", d.Model)
	}
	if d.Tokens != filepath.Join(dir, "tokens.txt") {
		t.Errorf("Tokens = %q, want tokens.txt under dir", d.Tokens)
	}
}

func TestResolveTransducer(t *testing.T) {
	dir := modelDir(t, "tokens.txt", "encoder.onnx", "decoder.onnx", "joiner.onnx")

	d, err := Resolve(dir)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if d.Kind != Transducer {
		t.Errorf("Kind = %q, want %q", d.Kind, Transducer)
	}
	if d.Joiner != filepath.Join(dir, "joiner.onnx") {
		t.Errorf("Joiner = %q, want joiner.onnx under dir", d.Joiner)
	}
	if d.Name != filepath.Base(dir) {
		t.Errorf("Name = %q, want %q", d.Name, filepath.Base(dir))
	}
}

func TestResolveWhisperExport(t *testing.T) {
	dir := modelDir(t, "tokens.txt", "encoder.onnx", "decoder.onnx")

	d, err := Resolve(dir)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if d.Kind != Whisper {
		t.Errorf("Kind = %q, want %q", d.Kind, Whisper)
	}
	if d.Joiner != "" {
		t.Errorf("Joiner = %q, want empty", d.Joiner)
	}
}

func TestResolvePrefersInt8Variants(t *testing.T) {
	dir := modelDir(t, "tokens.txt",
		"encoder.onnx", "encoder.int8.onnx",
		"decoder.onnx", "decoder.int8.onnx",
		"joiner.onnx", "joiner.int8.onnx")

	d, err := Resolve(dir)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if d.Encoder != filepath.Join(dir, "encoder.int8.onnx") {
		t.Errorf("Encoder = %q, want int8 variant", d.Encoder)
	}
	if d.Decoder != filepath.Join(dir, "decoder.int8.onnx") {
		t.Errorf("Decoder = %q, want int8 variant", d.Decoder)
	}
	if d.Joiner != filepath.Join(dir, "joiner.int8.onnx") {
		t.Errorf("Joiner = %q, want int8 variant", d.Joiner)
	}
}

func TestResolveMissingTokens(t *testing.T) {
	dir := modelDir(t, "encoder.onnx", "decoder.onnx")

	_, err := Resolve(dir)
	if !errors.Is(err, ErrMissingTokens) {
		t.Errorf("Resolve() error = %v, want ErrMissingTokens", err)
	}
}

func TestResolveMissingComponents(t *testing.T) {
	dir := modelDir(t, "tokens.txt", "encoder.onnx") // no decoder

	_, err := Resolve(dir)
	if !errors.Is(err, ErrMissingModel) {
		t.Errorf("Resolve() error = %v, want ErrMissingModel", err)
	}
}

func TestResolveNonexistentPath(t *testing.T) {
	_, err := Resolve(filepath.Join(t.TempDir(), "nope"))
	if err == nil {
		t.Fatal("Resolve() on nonexistent path should return error")
	}
}
