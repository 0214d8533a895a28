package engine

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/voxkit/voxkit/internal/audio"
	"github.com/voxkit/voxkit/internal/model"
)

// ErrBinaryNotFound indicates the sidecar binary exists at neither the
// packaged location nor the development-tree fallback.
var ErrBinaryNotFound = errors.New("engine: sidecar binary not found")

// sidecarBackend invokes the external sherpa-onnx recognizer. It holds
// no process state between calls: each transcription writes a fresh
// scratch WAV, spawns the binary, and recovers the transcript from its
// output streams.
type sidecarBackend struct {
	desc *model.Descriptor
	opts Options
}

func newSidecarBackend(desc *model.Descriptor, opts Options) *sidecarBackend {
	return &sidecarBackend{desc: desc, opts: opts}
}

func (b *sidecarBackend) transcribe(samples []float32) (string, error) {
	bin, err := b.binaryPath()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(b.opts.ScratchDir, 0o755); err != nil {
		return "", fmt.Errorf("engine: creating scratch dir: %w", err)
	}
	scratch := filepath.Join(b.opts.ScratchDir, fmt.Sprintf("temp_rec_%s.wav", uuid.NewString()))
	if err := audio.EncodeWAV(samples, scratch); err != nil {
		return "", err
	}

	args := b.buildArgs(scratch)
	log.Debug("spawning sidecar", "bin", bin, "args", strings.Join(args, " "))

	cmd := exec.Command(bin, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	suppressWindow(cmd)

	if err := cmd.Run(); err != nil {
		// The scratch file is kept on purpose so a failing invocation
		// can be replayed by hand.
		log.Warn("sidecar failed, keeping scratch wav", "path", scratch)
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("engine: sidecar exit code %d: stderr: %s stdout: %s",
				exitErr.ExitCode(), strings.TrimSpace(stderr.String()), strings.TrimSpace(stdout.String()))
		}
		return "", fmt.Errorf("engine: running sidecar: %w", err)
	}

	if err := os.Remove(scratch); err != nil {
		log.Warn("could not remove scratch wav", "path", scratch, "err", err)
	}

	// The binary prints its result to stderr or stdout depending on the
	// build, so probe both before falling back to raw output.
	if text, ok := extractStructuredText(stderr.String()); ok {
		return text, nil
	}
	if text, ok := extractStructuredText(stdout.String()); ok {
		return text, nil
	}
	return strings.TrimSpace(stdout.String()), nil
}

func (b *sidecarBackend) close() error { return nil }

// buildArgs serializes the model descriptor into the sidecar's flag
// protocol: tokens first, kind-specific flags, thread count, and the
// scratch WAV path as the trailing positional argument.
func (b *sidecarBackend) buildArgs(wavPath string) []string {
	args := []string{"--tokens=" + b.desc.Tokens}

	switch b.desc.Kind {
	case model.SenseVoice:
		args = append(args,
			"--sense-voice-model="+b.desc.Model,
			"--model-type=sense-voice",
		)
	case model.Transducer:
		args = append(args,
			"--encoder="+b.desc.Encoder,
			"--decoder="+b.desc.Decoder,
			"--joiner="+b.desc.Joiner,
		)
		if b.hotwordsAvailable() {
			args = append(args,
				"--hotwords-file="+b.opts.HotwordsPath,
				fmt.Sprintf("--hotwords-score=%.1f", b.opts.HotwordsScore),
				"--decoding-method=modified_beam_search",
			)
		} else {
			args = append(args, "--decoding-method=greedy_search")
		}
	case model.Whisper:
		args = append(args,
			"--whisper-encoder="+b.desc.Encoder,
			"--whisper-decoder="+b.desc.Decoder,
			"--whisper-language=en",
			"--whisper-task=transcribe",
			"--model-type=whisper",
		)
	}

	args = append(args, fmt.Sprintf("--num-threads=%d", b.opts.Threads))
	args = append(args, wavPath)
	return args
}

func (b *sidecarBackend) hotwordsAvailable() bool {
	if b.opts.HotwordsPath == "" {
		return false
	}
	_, err := os.Stat(b.opts.HotwordsPath)
	return err == nil
}

// binaryPath resolves the sidecar binary with a two-tier search: the
// configured packaged location first, then ./bin under the working
// directory for development trees.
func (b *sidecarBackend) binaryPath() (string, error) {
	name := b.opts.SidecarBinary
	if runtime.GOOS == "windows" {
		name += ".exe"
	}

	var candidates []string
	if b.opts.SidecarBinDir != "" {
		candidates = append(candidates, filepath.Join(b.opts.SidecarBinDir, name))
	}
	if wd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(wd, "bin", name))
	}

	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %s (searched %s)", ErrBinaryNotFound, name, strings.Join(candidates, ", "))
}

// extractStructuredText scans mixed process output line by line for a
// single-line JSON record with a "text" field and returns the first
// match. It is the only place that knows the sidecar's output format;
// a stricter result channel would replace just this function.
func extractStructuredText(output string) (string, bool) {
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "{") {
			continue
		}
		var record struct {
			Text *string `json:"text"`
		}
		if err := json.Unmarshal([]byte(line), &record); err != nil {
			continue
		}
		if record.Text != nil {
			return *record.Text, true
		}
	}
	return "", false
}
