// Package history persists finished transcriptions to a JSON file and
// derives dashboard statistics from them.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// Item is one saved transcription record.
type Item struct {
	ID             string  `json:"id"`
	Filename       string  `json:"filename"`
	Transcript     string  `json:"transcript"`
	Timestamp      int64   `json:"timestamp"`
	Title          string  `json:"title"`
	Duration       float64 `json:"duration"`
	AppName        string  `json:"app_name"`
	ProcessingTime float64 `json:"processing_time"`
}

// Stats summarizes usage for the dashboard. SavedTime assumes typing at
// 40 words per minute.
type Stats struct {
	WPM           uint64 `json:"wpm"`
	WordsThisWeek uint64 `json:"wordsThisWeek"`
	AppsUsed      uint64 `json:"appsUsed"`
	SavedTime     string `json:"savedTime"`
}

// Store reads and writes the history file. Records are kept newest
// first. A missing or unparseable file is treated as empty history.
// The mutex serializes the read-modify-write cycle so concurrent saves
// never drop each other's records.
type Store struct {
	path string

	mu sync.Mutex
}

// NewStore creates a Store backed by the given file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Save prepends a new record and writes the file back.
func (s *Store) Save(transcript, filename, title string, duration, processingTime float64) (Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.load()

	item := Item{
		ID:             uuid.NewString(),
		Filename:       filename,
		Transcript:     transcript,
		Timestamp:      time.Now().Unix(),
		Title:          title,
		Duration:       duration,
		AppName:        "Unknown",
		ProcessingTime: processingTime,
	}
	items = append([]Item{item}, items...)

	if err := s.write(items); err != nil {
		return Item{}, err
	}
	return item, nil
}

// List returns all saved records, newest first.
func (s *Store) List() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Delete removes the record with the given id. Deleting an unknown id
// is not an error.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.load()
	kept := items[:0]
	for _, item := range items {
		if item.ID != id {
			kept = append(kept, item)
		}
	}
	if len(kept) == len(items) {
		return nil
	}
	return s.write(kept)
}

// DashboardStats computes usage statistics over the saved history.
func (s *Store) DashboardStats() Stats {
	s.mu.Lock()
	items := s.load()
	s.mu.Unlock()

	weekAgo := time.Now().Add(-7 * 24 * time.Hour).Unix()
	var wordsThisWeek uint64
	apps := make(map[string]struct{})
	for _, item := range items {
		if item.Timestamp < weekAgo {
			continue
		}
		wordsThisWeek += uint64(len(strings.Fields(item.Transcript)))
		if item.AppName != "" {
			apps[item.AppName] = struct{}{}
		}
	}

	var totalWords uint64
	var totalDuration float64
	for _, item := range items {
		totalWords += uint64(len(strings.Fields(item.Transcript)))
		totalDuration += item.Duration
	}

	var wpm uint64
	if minutes := totalDuration / 60; minutes > 0.1 {
		wpm = uint64(float64(totalWords)/minutes + 0.5)
	}

	minutesSaved := uint64(float64(wordsThisWeek)/40 + 0.5)
	plural := "s"
	if minutesSaved == 1 {
		plural = ""
	}

	return Stats{
		WPM:           wpm,
		WordsThisWeek: wordsThisWeek,
		AppsUsed:      uint64(len(apps)),
		SavedTime:     fmt.Sprintf("%d minute%s", minutesSaved, plural),
	}
}

func (s *Store) load() []Item {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil
	}
	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		log.Warn("unparseable history file, starting empty", "path", s.path, "err", err)
		return nil
	}
	return items
}

func (s *Store) write(items []Item) error {
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("history: creating %s: %w", dir, err)
		}
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("history: encoding: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("history: writing %s: %w", s.path, err)
	}
	return nil
}
