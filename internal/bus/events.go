package bus

// FireEvent signals that the timer for a scheduled post has elapsed.
// It carries only the item's ID; the coordinator that consumes it owns
// all state lookups and status transitions.
type FireEvent struct {
	PostID string
}

// Notice is a user-facing notification (e.g. the result of a scheduled
// post firing in the background) delivered to subscribers.
type Notice struct {
	Kind string // "posted", "failed", "info"
	Text string
}
