package store

import (
	"os"
	"path/filepath"
	"testing"
)

func TestHistoryAppendAndList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "post_history.json")
	s := NewHistoryStore(path)

	if err := s.Append(HistoryEntry{Text: "first"}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := s.Append(HistoryEntry{Text: "second", MediaRef: "/tmp/pic.jpg"}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	entries := s.List()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Text != "first" || entries[1].Text != "second" {
		t.Errorf("entries out of insertion order: %+v", entries)
	}
	if entries[0].Timestamp.IsZero() {
		t.Error("expected timestamp to be assigned on append")
	}
	if entries[1].MediaRef != "/tmp/pic.jpg" {
		t.Errorf("mediaRef not preserved: %+v", entries[1])
	}
}

func TestHistorySurvivesReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "post_history.json")

	s1 := NewHistoryStore(path)
	if err := s1.Append(HistoryEntry{Text: "durable"}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	s2 := NewHistoryStore(path)
	entries := s2.List()
	if len(entries) != 1 || entries[0].Text != "durable" {
		t.Fatalf("expected reloaded entry, got %+v", entries)
	}
}

func TestHistorySearch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "post_history.json")
	s := NewHistoryStore(path)

	for _, text := range []string{"Go is great", "shipping soon", "go further"} {
		if err := s.Append(HistoryEntry{Text: text}); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	results := s.Search("GO")
	if len(results) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(results))
	}
	if results[0].Text != "Go is great" || results[1].Text != "go further" {
		t.Errorf("search results out of order: %+v", results)
	}

	if got := s.Search("nothing"); len(got) != 0 {
		t.Errorf("expected no matches, got %+v", got)
	}
}

func TestHistoryCorruptFileTreatedAsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "post_history.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewHistoryStore(path)
	if got := s.List(); len(got) != 0 {
		t.Fatalf("expected empty history from corrupt file, got %+v", got)
	}

	// New appends must still work after recovery.
	if err := s.Append(HistoryEntry{Text: "fresh start"}); err != nil {
		t.Fatalf("Append after corruption: %v", err)
	}
	if got := s.List(); len(got) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(got))
	}
}
