package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
)

// SSETransport is one client's server-sent-events stream. Writes are
// serialized; the HTTP handler owns the response writer for the life of
// the connection.
type SSETransport struct {
	sessionID string
	w         http.ResponseWriter
	flusher   http.Flusher
	mu        sync.Mutex
}

func NewSSETransport(sessionID string, w http.ResponseWriter) (*SSETransport, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("response writer does not support streaming")
	}
	return &SSETransport{sessionID: sessionID, w: w, flusher: flusher}, nil
}

func (t *SSETransport) SessionID() string { return t.sessionID }

// SendEvent writes one SSE event with a raw string payload.
func (t *SSETransport) SendEvent(event, data string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, err := fmt.Fprintf(t.w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	t.flusher.Flush()
	return nil
}

// SendMessage JSON-encodes v and writes it as a "message" event.
func (t *SSETransport) SendMessage(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal SSE message: %w", err)
	}
	return t.SendEvent("message", string(data))
}

// SessionRegistry maps session IDs to live SSE transports with an
// explicit insert-on-connect / remove-on-disconnect lifecycle.
type SessionRegistry struct {
	transports map[string]*SSETransport
	mu         sync.RWMutex
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{transports: make(map[string]*SSETransport)}
}

func (r *SessionRegistry) Add(t *SSETransport) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transports[t.SessionID()] = t
}

func (r *SessionRegistry) Remove(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.transports, sessionID)
}

func (r *SessionRegistry) Get(sessionID string) (*SSETransport, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.transports[sessionID]
	return t, ok
}

func (r *SessionRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.transports)
}
