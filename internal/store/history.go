package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// HistoryStore is the durable, append-only log of published posts.
// Each mutation opens, writes, and closes the file; no long-lived handle
// is held, so concurrent timer fires cannot interleave partial writes.
type HistoryStore struct {
	path    string
	entries []HistoryEntry
	mu      sync.Mutex
}

// NewHistoryStore creates a store backed by the given file and loads any
// existing entries. An unreadable or malformed file is treated as empty
// history: a damaged log must not block new posting.
func NewHistoryStore(path string) *HistoryStore {
	s := &HistoryStore{path: path}
	s.load()
	return s
}

func (s *HistoryStore) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return
	}
	var entries []HistoryEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return
	}
	s.entries = entries
}

// Append records one published post. Write failures propagate to the
// caller; the in-memory view is rolled back so a failed append leaves no
// phantom entry.
func (s *HistoryStore) Append(entry HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	s.entries = append(s.entries, entry)
	if err := s.flush(); err != nil {
		s.entries = s.entries[:len(s.entries)-1]
		return fmt.Errorf("failed to append history entry: %w", err)
	}
	return nil
}

// List returns all entries in insertion order.
func (s *HistoryStore) List() []HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]HistoryEntry, len(s.entries))
	copy(result, s.entries)
	return result
}

// Search returns entries whose text contains substr, case-insensitive,
// preserving insertion order.
func (s *HistoryStore) Search(substr string) []HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	needle := strings.ToLower(substr)
	var result []HistoryEntry
	for _, e := range s.entries {
		if strings.Contains(strings.ToLower(e.Text), needle) {
			result = append(result, e)
		}
	}
	return result
}

// flush rewrites the history file. Caller must hold s.mu.
func (s *HistoryStore) flush() error {
	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}
	return os.WriteFile(s.path, data, 0o644)
}
