package session

import (
	"testing"
)

func TestGetOrCreateNewSession(t *testing.T) {
	m := NewManager(t.TempDir())

	s := m.GetOrCreate("chat:default")
	if s.Meta.Key != "chat:default" {
		t.Errorf("unexpected key %q", s.Meta.Key)
	}
	if len(s.AllMessages()) != 0 {
		t.Error("new session must start empty")
	}

	if again := m.GetOrCreate("chat:default"); again != s {
		t.Error("expected cached session on second call")
	}
}

func TestAppendAndPersist(t *testing.T) {
	dir := t.TempDir()
	m1 := NewManager(dir)

	s := m1.GetOrCreate("chat:default")
	s.AppendMessage(Message{Role: "user", Content: "hi"})
	s.AppendMessage(Message{Role: "assistant", Content: "hello"})
	if err := m1.Save(s); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// New manager, fresh cache: must load from disk.
	m2 := NewManager(dir)
	loaded := m2.GetOrCreate("chat:default")
	msgs := loaded.AllMessages()
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Role != "user" || msgs[1].Content != "hello" {
		t.Errorf("unexpected messages %+v", msgs)
	}
	if msgs[0].Timestamp == "" {
		t.Error("expected timestamps to be assigned")
	}
}

func TestKeyToFilename(t *testing.T) {
	if got := keyToFilename("chat:a/b"); got != "chat_a_b.jsonl" {
		t.Errorf("unexpected filename %q", got)
	}
}
