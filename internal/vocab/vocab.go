// Package vocab stores the user's bias vocabulary as a plain
// newline-separated hotwords file. The engine checks the same file per
// transcription to decide between greedy and hotword-biased decoding.
package vocab

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Store reads and writes the hotwords file.
type Store struct {
	path string
}

// NewStore creates a Store backed by the given file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the hotwords file location.
func (s *Store) Path() string {
	return s.path
}

// Words returns the stored bias words. A missing file yields an empty
// list, not an error.
func (s *Store) Words() ([]string, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("vocab: reading %s: %w", s.path, err)
	}

	var words []string
	for _, line := range strings.Split(string(data), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			words = append(words, line)
		}
	}
	return words, nil
}

// Save replaces the stored vocabulary. An empty list removes the file
// so the engine falls back to greedy decoding.
func (s *Store) Save(words []string) error {
	if len(words) == 0 {
		if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("vocab: removing %s: %w", s.path, err)
		}
		return nil
	}

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("vocab: creating %s: %w", dir, err)
		}
	}
	content := strings.Join(words, "\n")
	if err := os.WriteFile(s.path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("vocab: writing %s: %w", s.path, err)
	}
	return nil
}
