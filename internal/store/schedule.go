package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ScheduleStore is the durable record of scheduled posts. It is
// append-only at the record level: items are never removed, their status
// only moves forward (pending -> fired/failed/cancelled).
type ScheduleStore struct {
	path  string
	posts []ScheduledPost
	mu    sync.Mutex
}

// NewScheduleStore creates a store backed by the given file and loads any
// existing records. A malformed file is treated as empty.
func NewScheduleStore(path string) *ScheduleStore {
	s := &ScheduleStore{path: path}
	s.load()
	return s
}

func (s *ScheduleStore) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return
	}
	var posts []ScheduledPost
	if err := json.Unmarshal(data, &posts); err != nil {
		return
	}
	s.posts = posts
}

// Append persists a new scheduled post. Write failures propagate and
// leave no in-memory record, so a post is never armed without a durable
// pending record behind it.
func (s *ScheduleStore) Append(post ScheduledPost) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.posts = append(s.posts, post)
	if err := s.flush(); err != nil {
		s.posts = s.posts[:len(s.posts)-1]
		return fmt.Errorf("failed to append scheduled post: %w", err)
	}
	return nil
}

// Get returns the post with the given ID.
func (s *ScheduleStore) Get(id string) (ScheduledPost, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.posts {
		if p.ID == id {
			return p, true
		}
	}
	return ScheduledPost{}, false
}

// List returns all records in insertion order.
func (s *ScheduleStore) List() []ScheduledPost {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]ScheduledPost, len(s.posts))
	copy(result, s.posts)
	return result
}

// Pending returns all records still in StatusPending.
func (s *ScheduleStore) Pending() []ScheduledPost {
	s.mu.Lock()
	defer s.mu.Unlock()

	var pending []ScheduledPost
	for _, p := range s.posts {
		if p.Status == StatusPending {
			pending = append(pending, p)
		}
	}
	return pending
}

// Transition atomically moves the item from status `from` to `to`,
// recording detail (an error message) when non-empty. It returns false
// without writing if the item is missing or its status is not `from`.
// This compare-and-set is what makes timer fires idempotent: a second
// fire for the same item finds it no longer pending and becomes a no-op.
func (s *ScheduleStore) Transition(id string, from, to Status, detail string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.posts {
		if s.posts[i].ID != id {
			continue
		}
		if s.posts[i].Status != from {
			return false
		}
		prev := s.posts[i]
		s.posts[i].Status = to
		if detail != "" {
			s.posts[i].Error = detail
		}
		if err := s.flush(); err != nil {
			s.posts[i] = prev
			return false
		}
		return true
	}
	return false
}

// flush rewrites the schedule file. Caller must hold s.mu.
func (s *ScheduleStore) flush() error {
	data, err := json.MarshalIndent(s.posts, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal scheduled posts: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}
	return os.WriteFile(s.path, data, 0o644)
}
