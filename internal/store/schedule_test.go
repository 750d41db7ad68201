package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestSchedule(t *testing.T) *ScheduleStore {
	t.Helper()
	return NewScheduleStore(filepath.Join(t.TempDir(), "scheduled_posts.json"))
}

func TestScheduleAppendAndGet(t *testing.T) {
	s := newTestSchedule(t)

	post := ScheduledPost{
		ID:        "sp_1",
		Text:      "hello",
		FireAt:    time.Now().Add(time.Hour),
		Status:    StatusPending,
		CreatedAt: time.Now(),
	}
	if err := s.Append(post); err != nil {
		t.Fatalf("Append: %v", err)
	}

	got, ok := s.Get("sp_1")
	if !ok {
		t.Fatal("expected to find sp_1")
	}
	if got.Text != "hello" || got.Status != StatusPending {
		t.Errorf("unexpected record %+v", got)
	}

	if _, ok := s.Get("missing"); ok {
		t.Error("expected miss for unknown ID")
	}
}

func TestSchedulePendingFilter(t *testing.T) {
	s := newTestSchedule(t)

	for _, p := range []ScheduledPost{
		{ID: "a", Text: "x", Status: StatusPending},
		{ID: "b", Text: "y", Status: StatusFired},
		{ID: "c", Text: "z", Status: StatusPending},
	} {
		if err := s.Append(p); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	pending := s.Pending()
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending, got %d", len(pending))
	}
	if pending[0].ID != "a" || pending[1].ID != "c" {
		t.Errorf("unexpected pending set %+v", pending)
	}
}

func TestScheduleTransitionCAS(t *testing.T) {
	s := newTestSchedule(t)
	if err := s.Append(ScheduledPost{ID: "sp_1", Text: "x", Status: StatusPending}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	if !s.Transition("sp_1", StatusPending, StatusFired, "") {
		t.Fatal("expected first transition to succeed")
	}
	// Second claim of the same item must fail: the fire is exactly-once.
	if s.Transition("sp_1", StatusPending, StatusFired, "") {
		t.Fatal("expected second transition to fail")
	}
	if s.Transition("sp_1", StatusPending, StatusFailed, "late") {
		t.Fatal("expected transition from wrong status to fail")
	}
	if s.Transition("missing", StatusPending, StatusFired, "") {
		t.Fatal("expected transition of unknown ID to fail")
	}

	got, _ := s.Get("sp_1")
	if got.Status != StatusFired {
		t.Errorf("expected fired, got %s", got.Status)
	}
}

func TestScheduleTransitionRecordsError(t *testing.T) {
	s := newTestSchedule(t)
	if err := s.Append(ScheduledPost{ID: "sp_1", Text: "x", Status: StatusPending}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	if !s.Transition("sp_1", StatusPending, StatusFailed, "upstream unavailable") {
		t.Fatal("expected transition to succeed")
	}
	got, _ := s.Get("sp_1")
	if got.Status != StatusFailed || got.Error != "upstream unavailable" {
		t.Errorf("unexpected record %+v", got)
	}
}

func TestScheduleSurvivesReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scheduled_posts.json")

	s1 := NewScheduleStore(path)
	if err := s1.Append(ScheduledPost{ID: "sp_1", Text: "x", Status: StatusPending}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	s1.Transition("sp_1", StatusPending, StatusCancelled, "")

	s2 := NewScheduleStore(path)
	got, ok := s2.Get("sp_1")
	if !ok || got.Status != StatusCancelled {
		t.Fatalf("expected reloaded cancelled record, got %+v ok=%v", got, ok)
	}
}

func TestScheduleCorruptFileTreatedAsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scheduled_posts.json")
	if err := os.WriteFile(path, []byte("[{broken"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewScheduleStore(path)
	if got := s.List(); len(got) != 0 {
		t.Fatalf("expected empty store from corrupt file, got %+v", got)
	}
}
