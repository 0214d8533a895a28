package engine

import (
	"fmt"
	"io"
	"strings"

	whisper "github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"
)

// hallucinationMarkers are literal tokens whisper emits on silence or
// non-speech audio. They are stripped from the final transcript; the
// surrounding whitespace is left as-is.
var hallucinationMarkers = []string{
	"[BLANK_AUDIO]",
	"[silence]",
	"(music)",
	"[MUSIC]",
	"(silence)",
}

// whisperBackend runs an in-process whisper.cpp model. The model handle
// is loaded once; each transcription opens its own decoding context.
type whisperBackend struct {
	model   whisper.Model
	threads int
}

func newWhisperBackend(modelPath string, threads int) (*whisperBackend, error) {
	m, err := whisper.New(modelPath)
	if err != nil {
		return nil, fmt.Errorf("load model %q: %w", modelPath, err)
	}
	return &whisperBackend{model: m, threads: threads}, nil
}

func (b *whisperBackend) transcribe(samples []float32) (string, error) {
	ctx, err := b.model.NewContext()
	if err != nil {
		return "", fmt.Errorf("engine: create whisper context: %w", err)
	}
	ctx.SetThreads(uint(b.threads))

	if err := ctx.Process(samples, nil, nil, nil); err != nil {
		return "", fmt.Errorf("engine: whisper decode: %w", err)
	}

	var text strings.Builder
	for {
		seg, err := ctx.NextSegment()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("engine: next segment: %w", err)
		}
		text.WriteString(seg.Text)
	}

	return filterHallucinations(text.String()), nil
}

func (b *whisperBackend) close() error {
	if b.model == nil {
		return nil
	}
	if err := b.model.Close(); err != nil {
		return fmt.Errorf("engine: closing whisper model: %w", err)
	}
	return nil
}

// filterHallucinations trims the transcript and removes every literal
// hallucination marker. Removal is plain substring deletion; spacing
// left behind by a removed token is not collapsed.
func filterHallucinations(text string) string {
	text = strings.TrimSpace(text)
	for _, marker := range hallucinationMarkers {
		text = strings.ReplaceAll(text, marker, "")
	}
	return strings.TrimSpace(text)
}
