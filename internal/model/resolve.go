// Package model inspects an on-disk model location and produces a typed
// engine configuration. Three incompatible sherpa-onnx layouts are told
// apart by which component files are present; there is no manifest.
package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Kind identifies the model family a Descriptor was resolved as.
type Kind string

const (
	// Embedded is a single-file whisper.cpp model run in-process.
	Embedded Kind = "embedded"
	// Transducer is a sherpa-onnx encoder/decoder/joiner model.
	Transducer Kind = "transducer"
	// Whisper is a sherpa-onnx whisper export (encoder/decoder, no joiner).
	Whisper Kind = "whisper"
	// SenseVoice is a single combined sherpa-onnx model.
	SenseVoice Kind = "sense-voice"
)

var (
	// ErrMissingTokens indicates a model directory without tokens.txt.
	ErrMissingTokens = errors.New("model: missing tokens.txt")
	// ErrMissingModel indicates a directory matching none of the known layouts.
	ErrMissingModel = errors.New("model: missing model files: need either 'model.int8.onnx' (SenseVoice) or 'encoder/decoder' (Transducer/Whisper)")
)

// Descriptor is a validated model configuration. Which path fields are
// set depends on Kind: Embedded and SenseVoice use Model; Transducer
// uses Encoder, Decoder and Joiner; Whisper uses Encoder and Decoder.
type Descriptor struct {
	Kind    Kind
	Name    string // human-readable label, base name of the path
	Tokens  string
	Model   string
	Encoder string
	Decoder string
	Joiner  string
}

// Resolve inspects path and returns a Descriptor. A plain file is taken
// to be an embedded whisper model; its loadability is only checked when
// the engine instantiates it. A directory must contain tokens.txt plus
// one of the recognized component layouts, with quantized (.int8.)
// variants preferred over plain ones when both exist.
func Resolve(path string) (*Descriptor, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("model: stat %s: %w", path, err)
	}

	name := filepath.Base(path)

	if !info.IsDir() {
		return &Descriptor{Kind: Embedded, Name: name, Model: path}, nil
	}

	tokens := filepath.Join(path, "tokens.txt")
	if !exists(tokens) {
		return nil, fmt.Errorf("%w in %s", ErrMissingTokens, path)
	}

	if combined := filepath.Join(path, "model.int8.onnx"); exists(combined) {
		return &Descriptor{
			Kind:   SenseVoice,
			Name:   name,
			Tokens: tokens,
			Model:  combined,
		}, nil
	}

	encoder := preferInt8(path, "encoder")
	decoder := preferInt8(path, "decoder")
	if !exists(encoder) || !exists(decoder) {
		return nil, fmt.Errorf("%w in %s", ErrMissingModel, path)
	}

	d := &Descriptor{
		Kind:    Whisper,
		Name:    name,
		Tokens:  tokens,
		Encoder: encoder,
		Decoder: decoder,
	}
	if joiner := preferInt8(path, "joiner"); exists(joiner) {
		d.Kind = Transducer
		d.Joiner = joiner
	}

	return d, nil
}

// preferInt8 returns the .int8. variant of the named component if it
// exists, otherwise the plain variant path (which may not exist either).
func preferInt8(dir, component string) string {
	int8Path := filepath.Join(dir, component+".int8.onnx")
	if exists(int8Path) {
		return int8Path
	}
	return filepath.Join(dir, component+".onnx")
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
