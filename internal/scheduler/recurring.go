package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	robfigcron "github.com/robfig/cron/v3"

	"github.com/coopco/postpilot/internal/bus"
	"github.com/coopco/postpilot/internal/publisher"
	"github.com/coopco/postpilot/internal/store"
)

// RecurringPost is a post template published on a cron schedule.
type RecurringPost struct {
	ID        string    `json:"id"`
	Schedule  string    `json:"schedule"` // cron expression
	Text      string    `json:"text"`
	MediaRef  string    `json:"mediaRef,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type recurringStore struct {
	Posts []RecurringPost `json:"posts"`
}

// Recurring publishes post templates on cron schedules, persisting them
// so they survive restarts.
type Recurring struct {
	scheduler *robfigcron.Cron
	pub       publisher.Publisher
	history   *store.HistoryStore
	errlog    *store.ErrorLog
	bus       *bus.MessageBus
	storePath string
	entries   map[string]robfigcron.EntryID
	defs      map[string]RecurringPost
	mu        sync.Mutex
	counter   int
}

func NewRecurring(storePath string, pub publisher.Publisher, history *store.HistoryStore, errlog *store.ErrorLog, msgBus *bus.MessageBus) *Recurring {
	return &Recurring{
		scheduler: robfigcron.New(),
		pub:       pub,
		history:   history,
		errlog:    errlog,
		bus:       msgBus,
		storePath: storePath,
		entries:   make(map[string]robfigcron.EntryID),
		defs:      make(map[string]RecurringPost),
	}
}

// Start begins the cron scheduler.
func (r *Recurring) Start() {
	r.scheduler.Start()
}

// Stop stops the cron scheduler.
func (r *Recurring) Stop() {
	r.scheduler.Stop()
}

// Add registers a new recurring post. Returns the job ID.
func (r *Recurring) Add(schedule, text, mediaRef string) (string, error) {
	if text == "" {
		return "", publisher.ErrEmptyText
	}
	text, _ = publisher.Truncate(text)

	r.mu.Lock()
	defer r.mu.Unlock()

	id := fmt.Sprintf("rp_%d", r.counter)
	r.counter++

	entryID, err := r.scheduler.AddFunc(schedule, func() {
		r.publish(id)
	})
	if err != nil {
		return "", fmt.Errorf("invalid schedule %q: %w", schedule, err)
	}

	r.entries[id] = entryID
	r.defs[id] = RecurringPost{
		ID:        id,
		Schedule:  schedule,
		Text:      text,
		MediaRef:  mediaRef,
		CreatedAt: time.Now().UTC(),
	}

	if err := r.saveToDisk(); err != nil {
		slog.Warn("failed to persist recurring posts", "error", err)
	}
	return id, nil
}

// Remove deletes a recurring post by ID.
func (r *Recurring) Remove(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entryID, ok := r.entries[id]
	if !ok {
		return fmt.Errorf("recurring post %q not found", id)
	}

	r.scheduler.Remove(entryID)
	delete(r.entries, id)
	delete(r.defs, id)

	if err := r.saveToDisk(); err != nil {
		slog.Warn("failed to persist recurring posts after removal", "error", err)
	}
	return nil
}

// List returns all registered recurring posts.
func (r *Recurring) List() []RecurringPost {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]RecurringPost, 0, len(r.defs))
	for _, p := range r.defs {
		result = append(result, p)
	}
	return result
}

// LoadFromDisk loads persisted recurring posts and re-registers them.
func (r *Recurring) LoadFromDisk() error {
	data, err := os.ReadFile(r.storePath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read recurring store: %w", err)
	}

	var rs recurringStore
	if err := json.Unmarshal(data, &rs); err != nil {
		return fmt.Errorf("failed to parse recurring store: %w", err)
	}

	for _, p := range rs.Posts {
		if _, err := r.Add(p.Schedule, p.Text, p.MediaRef); err != nil {
			slog.Warn("failed to restore recurring post", "id", p.ID, "error", err)
		}
	}
	return nil
}

// publish runs one recurring tick. Failures are terminal for the tick;
// the next cron fire tries again with a fresh publish.
func (r *Recurring) publish(id string) {
	r.mu.Lock()
	def, ok := r.defs[id]
	r.mu.Unlock()
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	result, err := r.pub.Publish(ctx, def.Text, def.MediaRef)
	if err != nil {
		r.errlog.Append("recurring publish", err)
		slog.Error("recurring post failed", "id", id, "error", err)
		r.bus.PublishNotice(bus.Notice{Kind: "failed", Text: fmt.Sprintf("[Recurring] Failed to post: %v", err)})
		return
	}

	if err := r.history.Append(store.HistoryEntry{Text: result.Text, MediaRef: def.MediaRef}); err != nil {
		r.errlog.Append("history append", err)
	}
	r.bus.PublishNotice(bus.Notice{Kind: "posted", Text: fmt.Sprintf("[Recurring] Posted: %s", result.Text)})
}

// saveToDisk persists current definitions. Caller must hold r.mu.
func (r *Recurring) saveToDisk() error {
	posts := make([]RecurringPost, 0, len(r.defs))
	for _, p := range r.defs {
		posts = append(posts, p)
	}

	data, err := json.MarshalIndent(recurringStore{Posts: posts}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal recurring store: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(r.storePath), 0o755); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}
	return os.WriteFile(r.storePath, data, 0o644)
}
