package store

import "time"

// Status is the lifecycle state of a scheduled post.
type Status string

const (
	StatusPending   Status = "pending"
	StatusFired     Status = "fired"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// ScheduledPost is one durable scheduled-post record. Records are never
// deleted, only status-transitioned.
type ScheduledPost struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	MediaRef  string    `json:"mediaRef,omitempty"`
	FireAt    time.Time `json:"fireAt"`
	Status    Status    `json:"status"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// HistoryEntry is one published post in the durable history log.
type HistoryEntry struct {
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	MediaRef  string    `json:"mediaRef,omitempty"`
}
