package history

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func tempStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "history.json"))
}

func TestSaveAndList(t *testing.T) {
	s := tempStore(t)

	first, err := s.Save("hello world", "rec1.wav", "Greeting", 2.5, 0.8)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if first.ID == "" {
		t.Error("Save() should assign an id")
	}
	if first.Timestamp == 0 {
		t.Error("Save() should assign a timestamp")
	}

	second, err := s.Save("second entry", "rec2.wav", "", 1.0, 0.3)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	items := s.List()
	if len(items) != 2 {
		t.Fatalf("List() returned %d items, want 2", len(items))
	}
	if items[0].ID != second.ID {
		t.Error("List() should return newest first")
	}
	if items[1].Transcript != "hello world" {
		t.Errorf("items[1].Transcript = %q, want %q", items[1].Transcript, "hello world")
	}
}

func TestListMissingFile(t *testing.T) {
	s := tempStore(t)
	if items := s.List(); len(items) != 0 {
		t.Errorf("List() on missing file = %v, want empty", items)
	}
}

func TestListUnparseableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewStore(path)
	if items := s.List(); len(items) != 0 {
		t.Errorf("List() on corrupt file = %v, want empty", items)
	}

	// Saving over a corrupt file starts fresh rather than failing.
	if _, err := s.Save("recovered", "", "", 1, 0.1); err != nil {
		t.Fatalf("Save() over corrupt file error = %v", err)
	}
	if items := s.List(); len(items) != 1 {
		t.Errorf("List() after recovery = %d items, want 1", len(items))
	}
}

func TestDelete(t *testing.T) {
	s := tempStore(t)

	keep, _ := s.Save("keep me", "", "", 1, 0.1)
	remove, _ := s.Save("remove me", "", "", 1, 0.1)

	if err := s.Delete(remove.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	items := s.List()
	if len(items) != 1 {
		t.Fatalf("List() after delete = %d items, want 1", len(items))
	}
	if items[0].ID != keep.ID {
		t.Errorf("wrong item deleted, remaining id = %q", items[0].ID)
	}

	if err := s.Delete("no-such-id"); err != nil {
		t.Errorf("Delete() of unknown id error = %v, want nil", err)
	}
}

func TestDashboardStats(t *testing.T) {
	s := tempStore(t)

	// 6 words over 60 seconds of audio -> 6 WPM.
	if _, err := s.Save("one two three four five six", "", "", 60, 1); err != nil {
		t.Fatal(err)
	}

	stats := s.DashboardStats()
	if stats.WordsThisWeek != 6 {
		t.Errorf("WordsThisWeek = %d, want 6", stats.WordsThisWeek)
	}
	if stats.WPM != 6 {
		t.Errorf("WPM = %d, want 6", stats.WPM)
	}
	if stats.AppsUsed != 1 {
		t.Errorf("AppsUsed = %d, want 1", stats.AppsUsed)
	}
	if stats.SavedTime == "" {
		t.Error("SavedTime should not be empty")
	}
}

func TestConcurrentSavesKeepEveryRecord(t *testing.T) {
	s := tempStore(t)

	const n = 8
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := s.Save(fmt.Sprintf("entry %d", i), "", "", 1, 0.1); err != nil {
				t.Errorf("Save() error = %v", err)
			}
		}(i)
	}
	wg.Wait()

	if items := s.List(); len(items) != n {
		t.Errorf("List() after %d concurrent saves = %d items, want %d", n, len(items), n)
	}
}

func TestDashboardStatsEmpty(t *testing.T) {
	s := tempStore(t)

	stats := s.DashboardStats()
	if stats.WPM != 0 || stats.WordsThisWeek != 0 || stats.AppsUsed != 0 {
		t.Errorf("stats on empty history = %+v, want zeros", stats)
	}
}
