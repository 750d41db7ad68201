package store

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestErrorLogAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "error_log.txt")
	l := NewErrorLog(path)

	l.Append("publish", errors.New("service overloaded"))
	l.Append("schedule", errors.New("disk full"))

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read error log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "publish: service overloaded") {
		t.Errorf("unexpected first line %q", lines[0])
	}
	if !strings.Contains(lines[1], "ERROR: schedule") {
		t.Errorf("unexpected second line %q", lines[1])
	}
}
