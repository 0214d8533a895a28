// Package engine dispatches transcription requests to one of two
// interchangeable recognition backends behind a single interface: an
// in-process whisper.cpp model, or an external sherpa-onnx process.
//
// One Engine instance is owned by the process entry point and passed
// to every operation. Its mutex is the only synchronization primitive
// in the core: it serializes load-vs-load, load-vs-transcribe, and
// transcribe-vs-transcribe into a strict one-at-a-time schedule.
package engine

import (
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/voxkit/voxkit/internal/audio"
	"github.com/voxkit/voxkit/internal/model"
)

// ErrNoModelLoaded indicates a transcription was attempted before any
// model was loaded.
var ErrNoModelLoaded = errors.New("engine: no model loaded")

// backend runs one transcription over a fully-buffered mono 16 kHz
// audio signal. Implementations are not safe for concurrent use; the
// Engine mutex guarantees a single caller at a time.
type backend interface {
	transcribe(samples []float32) (string, error)
	close() error
}

// Options configures backend construction. Zero values fall back to
// the defaults the sherpa-onnx sidecar and whisper.cpp expect.
type Options struct {
	// Threads is the worker-thread count passed to both backends.
	Threads int
	// ScratchDir receives the sidecar's temporary WAV files.
	ScratchDir string
	// SidecarBinDir is the packaged location of the sidecar binary,
	// searched before the ./bin development fallback.
	SidecarBinDir string
	// SidecarBinary is the binary name without OS suffix.
	SidecarBinary string
	// HotwordsPath is checked per call; when the file exists, transducer
	// models decode with hotword-biased beam search.
	HotwordsPath string
	// HotwordsScore is the bias score passed with the hotwords file.
	HotwordsScore float64
}

// Engine holds the currently loaded recognition backend. A nil backend
// means no model is loaded. The label is updated together with the
// backend under the same lock so the two never disagree.
type Engine struct {
	opts Options

	mu      sync.Mutex
	backend backend
	label   string
}

// New returns an Engine with no model loaded.
func New(opts Options) *Engine {
	if opts.Threads <= 0 {
		opts.Threads = 4
	}
	if opts.SidecarBinary == "" {
		opts.SidecarBinary = "sherpa-onnx"
	}
	if opts.HotwordsScore <= 0 {
		opts.HotwordsScore = 2.0
	}
	return &Engine{opts: opts, label: "None"}
}

// Load resolves path into a model descriptor, constructs the matching
// backend, and swaps it in, closing the previous one. A single file is
// loaded in-process through whisper.cpp; a directory becomes a sidecar
// configuration and stays stateless until the first transcription.
// On failure the previously loaded backend remains active.
func (e *Engine) Load(path string) (string, error) {
	desc, err := model.Resolve(path)
	if err != nil {
		return "", err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	var b backend
	if desc.Kind == model.Embedded {
		b, err = newWhisperBackend(desc.Model, e.opts.Threads)
		if err != nil {
			return "", fmt.Errorf("engine: loading whisper model: %w", err)
		}
	} else {
		b = newSidecarBackend(desc, e.opts)
	}

	if e.backend != nil {
		if cerr := e.backend.close(); cerr != nil {
			log.Warn("closing replaced backend", "err", cerr)
		}
	}
	e.backend = b
	e.label = desc.Name

	log.Info("model loaded", "name", desc.Name, "kind", desc.Kind)
	return desc.Name, nil
}

// CurrentModel returns the human-readable label of the loaded model,
// or "None" when nothing is loaded.
func (e *Engine) CurrentModel() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.label
}

// Transcribe decodes a WAV byte buffer and transcribes it with the
// loaded backend. The input must be 16 kHz mono or stereo WAV.
func (e *Engine) Transcribe(wavData []byte) (string, error) {
	samples, err := audio.DecodeWAV(wavData)
	if err != nil {
		return "", err
	}
	return e.TranscribeSamples(samples)
}

// TranscribeSamples transcribes normalized mono 16 kHz samples with the
// loaded backend. It holds the engine lock for the whole call, so only
// one transcription runs at a time and loads wait for it to finish.
func (e *Engine) TranscribeSamples(samples []float32) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.backend == nil {
		return "", ErrNoModelLoaded
	}
	return e.backend.transcribe(samples)
}

// Close releases the loaded backend, if any.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.backend != nil {
		if err := e.backend.close(); err != nil {
			log.Warn("closing backend", "err", err)
		}
		e.backend = nil
		e.label = "None"
	}
}
