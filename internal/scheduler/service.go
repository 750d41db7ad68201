package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/coopco/postpilot/internal/bus"
	"github.com/coopco/postpilot/internal/publisher"
	"github.com/coopco/postpilot/internal/store"
)

// ErrInvalidTime rejects schedule requests whose fire time is not
// strictly in the future.
var ErrInvalidTime = errors.New("fire time must be in the future")

// Service owns scheduled one-shot posts. A timer only ever emits a fire
// event carrying the item's ID onto the bus; the Run coordinator is the
// single owner of all status transitions, so per-item execution is
// serialized without relying on closure-captured state.
type Service struct {
	schedule *store.ScheduleStore
	history  *store.HistoryStore
	errlog   *store.ErrorLog
	pub      publisher.Publisher
	bus      *bus.MessageBus
	timers   map[string]*time.Timer
	mu       sync.Mutex
}

func NewService(schedule *store.ScheduleStore, history *store.HistoryStore, errlog *store.ErrorLog, pub publisher.Publisher, msgBus *bus.MessageBus) *Service {
	return &Service{
		schedule: schedule,
		history:  history,
		errlog:   errlog,
		pub:      pub,
		bus:      msgBus,
		timers:   make(map[string]*time.Timer),
	}
}

// Schedule validates the request, persists the item as pending, and only
// then arms the in-process timer. Durability precedes the scheduling
// commitment: a crash after the write leaves a pending record that
// Recover re-arms on the next start.
func (s *Service) Schedule(text, mediaRef string, fireAt time.Time) (string, error) {
	if !fireAt.After(time.Now()) {
		return "", ErrInvalidTime
	}
	if text == "" {
		return "", publisher.ErrEmptyText
	}
	text, truncated := publisher.Truncate(text)
	if truncated {
		slog.Warn("scheduled post text over platform limit, truncating", "limit", publisher.PlatformLimit)
	}

	post := store.ScheduledPost{
		ID:        "sp_" + uuid.NewString(),
		Text:      text,
		MediaRef:  mediaRef,
		FireAt:    fireAt,
		Status:    store.StatusPending,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.schedule.Append(post); err != nil {
		return "", fmt.Errorf("failed to persist scheduled post: %w", err)
	}

	s.arm(post.ID, fireAt)
	slog.Info("post scheduled", "id", post.ID, "fireAt", fireAt.Format(time.RFC3339))
	return post.ID, nil
}

// Cancel moves a pending item to cancelled and disarms its timer. A
// fired, failed, or already-cancelled item cannot be cancelled.
func (s *Service) Cancel(id string) error {
	if !s.schedule.Transition(id, store.StatusPending, store.StatusCancelled, "") {
		return fmt.Errorf("scheduled post %q is not pending", id)
	}
	s.mu.Lock()
	if t, ok := s.timers[id]; ok {
		t.Stop()
		delete(s.timers, id)
	}
	s.mu.Unlock()
	slog.Info("scheduled post cancelled", "id", id)
	return nil
}

// List returns all scheduled-post records.
func (s *Service) List() []store.ScheduledPost {
	return s.schedule.List()
}

// Recover re-arms timers for every pending item in the durable store.
// Items whose fire time has already passed fire immediately
// (catch-up rather than drop).
func (s *Service) Recover() {
	now := time.Now()
	for _, post := range s.schedule.Pending() {
		if !post.FireAt.After(now) {
			slog.Info("recovering overdue scheduled post", "id", post.ID, "fireAt", post.FireAt)
			s.bus.PublishFire(bus.FireEvent{PostID: post.ID})
			continue
		}
		s.arm(post.ID, post.FireAt)
		slog.Info("re-armed scheduled post", "id", post.ID, "fireAt", post.FireAt)
	}
}

// Run consumes fire events until ctx is cancelled. It is the only
// goroutine that transitions scheduled posts out of pending.
func (s *Service) Run(ctx context.Context) {
	for {
		ev, err := s.bus.ConsumeFire(ctx)
		if err != nil {
			return
		}
		s.fire(ctx, ev.PostID)
	}
}

// Stop disarms all in-process timers. Pending records stay durable and
// are re-armed by Recover on the next start.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
}

// arm starts the timer for id. The callback emits the fire event and
// nothing else.
func (s *Service) arm(id string, fireAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timers[id] = time.AfterFunc(time.Until(fireAt), func() {
		s.bus.PublishFire(bus.FireEvent{PostID: id})
	})
}

// fire executes one fire event. A fire for an item that is no longer
// pending is a no-op, which makes duplicate events (restart re-arm
// races, stale timers) harmless. Publish failure is terminal for the
// item: the gateway has already exhausted its transient retries.
func (s *Service) fire(ctx context.Context, id string) {
	s.mu.Lock()
	delete(s.timers, id)
	s.mu.Unlock()

	post, ok := s.schedule.Get(id)
	if !ok {
		slog.Warn("fire event for unknown scheduled post", "id", id)
		return
	}
	if post.Status != store.StatusPending {
		slog.Debug("fire event for non-pending post, skipping", "id", id, "status", post.Status)
		return
	}

	result, err := s.pub.Publish(ctx, post.Text, post.MediaRef)
	if err != nil {
		s.schedule.Transition(id, store.StatusPending, store.StatusFailed, err.Error())
		s.errlog.Append("scheduled publish", err)
		slog.Error("scheduled post failed", "id", id, "error", err)
		s.bus.PublishNotice(bus.Notice{Kind: "failed", Text: fmt.Sprintf("[Scheduled] Failed to post: %v", err)})
		return
	}

	// The transition can lose the claim if the item was cancelled while
	// publishing; in that case the history entry is skipped so no
	// duplicate record appears.
	if !s.schedule.Transition(id, store.StatusPending, store.StatusFired, "") {
		slog.Warn("scheduled post published but claim lost", "id", id)
		return
	}

	if err := s.history.Append(store.HistoryEntry{Text: result.Text, MediaRef: post.MediaRef}); err != nil {
		s.errlog.Append("history append", err)
		slog.Error("failed to record scheduled post in history", "id", id, "error", err)
	}
	slog.Info("scheduled post published", "id", id)
	s.bus.PublishNotice(bus.Notice{Kind: "posted", Text: fmt.Sprintf("[Scheduled] Posted: %s", result.Text)})
}
