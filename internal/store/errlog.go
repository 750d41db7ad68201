package store

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// ErrorLog appends terminal errors to a durable log file. Logging an
// error must never fail the operation that produced it, so Append
// reports its own failures to slog and returns nothing.
type ErrorLog struct {
	path string
	mu   sync.Mutex
}

func NewErrorLog(path string) *ErrorLog {
	return &ErrorLog{path: path}
}

// Append writes one timestamped line describing err in the given context.
func (l *ErrorLog) Append(context string, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	line := fmt.Sprintf("[%s] ERROR: %s: %v\n", time.Now().UTC().Format(time.RFC3339), context, err)

	if mkErr := os.MkdirAll(filepath.Dir(l.path), 0o755); mkErr != nil {
		slog.Warn("failed to create error log directory", "error", mkErr)
		return
	}
	f, openErr := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if openErr != nil {
		slog.Warn("failed to open error log", "error", openErr)
		return
	}
	defer f.Close()
	if _, wErr := f.WriteString(line); wErr != nil {
		slog.Warn("failed to write error log", "error", wErr)
	}
}
