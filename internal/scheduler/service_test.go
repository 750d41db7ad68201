package scheduler

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/coopco/postpilot/internal/bus"
	"github.com/coopco/postpilot/internal/publisher"
	"github.com/coopco/postpilot/internal/store"
)

type fakePub struct {
	mu        sync.Mutex
	err       error
	calls     int
	texts     []string
	published chan string
}

func newFakePub() *fakePub {
	return &fakePub{published: make(chan string, 16)}
}

func (f *fakePub) Publish(ctx context.Context, text, mediaRef string) (*publisher.Result, error) {
	f.mu.Lock()
	f.calls++
	f.texts = append(f.texts, text)
	err := f.err
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	f.published <- text
	return &publisher.Result{Text: text, MediaAttached: mediaRef != ""}, nil
}

func (f *fakePub) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fixture struct {
	svc      *Service
	schedule *store.ScheduleStore
	history  *store.HistoryStore
	pub      *fakePub
	bus      *bus.MessageBus
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	schedule := store.NewScheduleStore(filepath.Join(dir, "scheduled_posts.json"))
	history := store.NewHistoryStore(filepath.Join(dir, "post_history.json"))
	errlog := store.NewErrorLog(filepath.Join(dir, "error_log.txt"))
	pub := newFakePub()
	msgBus := bus.NewMessageBus(16)
	return &fixture{
		svc:      NewService(schedule, history, errlog, pub, msgBus),
		schedule: schedule,
		history:  history,
		pub:      pub,
		bus:      msgBus,
	}
}

func (f *fixture) run(t *testing.T) context.CancelFunc {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	go f.svc.Run(ctx)
	return cancel
}

func waitPublished(t *testing.T, pub *fakePub) string {
	t.Helper()
	select {
	case text := <-pub.published:
		return text
	case <-time.After(3 * time.Second):
		t.Fatal("no publish within timeout")
		return ""
	}
}

func TestSchedulePastTimeRejected(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Schedule("Hello", "", time.Now().Add(-10*time.Second))
	if !errors.Is(err, ErrInvalidTime) {
		t.Fatalf("expected ErrInvalidTime, got %v", err)
	}
	// Nothing may be persisted for a rejected request.
	if got := f.schedule.List(); len(got) != 0 {
		t.Errorf("expected empty store, got %+v", got)
	}
}

func TestScheduleEmptyTextRejected(t *testing.T) {
	f := newFixture(t)
	if _, err := f.svc.Schedule("", "", time.Now().Add(time.Hour)); err == nil {
		t.Fatal("expected error for empty text")
	}
}

func TestSchedulePersistsPendingBeforeFire(t *testing.T) {
	f := newFixture(t)
	defer f.svc.Stop()

	id, err := f.svc.Schedule("later", "", time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}

	post, ok := f.schedule.Get(id)
	if !ok {
		t.Fatal("scheduled post not persisted")
	}
	if post.Status != store.StatusPending {
		t.Errorf("expected pending, got %s", post.Status)
	}
	if f.pub.callCount() != 0 {
		t.Errorf("publish must not happen before fire time, got %d calls", f.pub.callCount())
	}
}

func TestScheduledPostFires(t *testing.T) {
	f := newFixture(t)
	defer f.svc.Stop()
	cancel := f.run(t)
	defer cancel()

	id, err := f.svc.Schedule("Hello", "", time.Now().Add(50*time.Millisecond))
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}

	if text := waitPublished(t, f.pub); text != "Hello" {
		t.Errorf("published %q, want Hello", text)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		post, _ := f.schedule.Get(id)
		if post.Status == store.StatusFired {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("post never transitioned to fired, status %s", post.Status)
		}
		time.Sleep(10 * time.Millisecond)
	}

	entries := f.history.List()
	if len(entries) != 1 || entries[0].Text != "Hello" {
		t.Fatalf("expected one history entry with text Hello, got %+v", entries)
	}
}

func TestFireIdempotentForNonPending(t *testing.T) {
	f := newFixture(t)

	if err := f.schedule.Append(store.ScheduledPost{
		ID: "sp_dup", Text: "once", Status: store.StatusPending, FireAt: time.Now(),
	}); err != nil {
		t.Fatal(err)
	}

	// Duplicate fire events, as a restart re-arm race would produce.
	f.bus.PublishFire(bus.FireEvent{PostID: "sp_dup"})
	f.bus.PublishFire(bus.FireEvent{PostID: "sp_dup"})

	cancel := f.run(t)
	defer cancel()

	waitPublished(t, f.pub)
	time.Sleep(100 * time.Millisecond) // let the second event drain

	if got := f.pub.callCount(); got != 1 {
		t.Errorf("expected exactly one publish, got %d", got)
	}
	if entries := f.history.List(); len(entries) != 1 {
		t.Errorf("expected exactly one history entry, got %d", len(entries))
	}
}

func TestRecoverOverdueFiresImmediately(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scheduled_posts.json")

	// A previous process persisted a pending post whose fire time has
	// already passed.
	prev := store.NewScheduleStore(path)
	if err := prev.Append(store.ScheduledPost{
		ID: "sp_old", Text: "overdue", Status: store.StatusPending,
		FireAt: time.Now().Add(-time.Minute),
	}); err != nil {
		t.Fatal(err)
	}

	schedule := store.NewScheduleStore(path)
	history := store.NewHistoryStore(filepath.Join(dir, "post_history.json"))
	errlog := store.NewErrorLog(filepath.Join(dir, "error_log.txt"))
	pub := newFakePub()
	msgBus := bus.NewMessageBus(16)
	svc := NewService(schedule, history, errlog, pub, msgBus)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go svc.Run(ctx)

	svc.Recover()

	if text := waitPublished(t, pub); text != "overdue" {
		t.Errorf("published %q, want overdue", text)
	}
	time.Sleep(100 * time.Millisecond)
	if got := pub.callCount(); got != 1 {
		t.Errorf("expected exactly one fire attempt, got %d", got)
	}
}

func TestRecoverRearmsFuturePosts(t *testing.T) {
	f := newFixture(t)
	defer f.svc.Stop()

	if err := f.schedule.Append(store.ScheduledPost{
		ID: "sp_future", Text: "soon", Status: store.StatusPending,
		FireAt: time.Now().Add(80 * time.Millisecond),
	}); err != nil {
		t.Fatal(err)
	}

	cancel := f.run(t)
	defer cancel()

	f.svc.Recover()

	if text := waitPublished(t, f.pub); text != "soon" {
		t.Errorf("published %q, want soon", text)
	}
}

func TestPublishFailureIsTerminal(t *testing.T) {
	f := newFixture(t)
	f.pub.err = errors.New("upstream rejected request")
	defer f.svc.Stop()
	cancel := f.run(t)
	defer cancel()

	id, err := f.svc.Schedule("doomed", "", time.Now().Add(30*time.Millisecond))
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		post, _ := f.schedule.Get(id)
		if post.Status == store.StatusFailed {
			if post.Error == "" {
				t.Error("expected failure reason to be recorded")
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("post never transitioned to failed, status %s", post.Status)
		}
		time.Sleep(10 * time.Millisecond)
	}

	if entries := f.history.List(); len(entries) != 0 {
		t.Errorf("failed fire must not append history, got %+v", entries)
	}
	// No scheduler-level retry.
	time.Sleep(100 * time.Millisecond)
	if got := f.pub.callCount(); got != 1 {
		t.Errorf("expected exactly one attempt, got %d", got)
	}
}

func TestCancelPreventsFire(t *testing.T) {
	f := newFixture(t)
	defer f.svc.Stop()
	cancel := f.run(t)
	defer cancel()

	id, err := f.svc.Schedule("nope", "", time.Now().Add(60*time.Millisecond))
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if err := f.svc.Cancel(id); err != nil {
		t.Fatalf("Cancel: %v", err)
	}

	time.Sleep(150 * time.Millisecond)

	if got := f.pub.callCount(); got != 0 {
		t.Errorf("cancelled post must not publish, got %d calls", got)
	}
	post, _ := f.schedule.Get(id)
	if post.Status != store.StatusCancelled {
		t.Errorf("expected cancelled, got %s", post.Status)
	}

	if err := f.svc.Cancel(id); err == nil {
		t.Error("expected error cancelling a non-pending post")
	}
}

func TestScheduleTruncatesLongText(t *testing.T) {
	f := newFixture(t)
	defer f.svc.Stop()

	long := make([]byte, 300)
	for i := range long {
		long[i] = 'x'
	}
	id, err := f.svc.Schedule(string(long), "", time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	post, _ := f.schedule.Get(id)
	if n := len([]rune(post.Text)); n != publisher.PlatformLimit {
		t.Errorf("expected %d chars persisted, got %d", publisher.PlatformLimit, n)
	}
}
