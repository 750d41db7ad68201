package bus

import (
	"context"
	"testing"
	"time"
)

func TestPublishConsumeFire(t *testing.T) {
	b := NewMessageBus(10)
	b.PublishFire(FireEvent{PostID: "sp_1"})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	ev, err := b.ConsumeFire(ctx)
	if err != nil {
		t.Fatalf("ConsumeFire: %v", err)
	}
	if ev.PostID != "sp_1" {
		t.Errorf("expected PostID sp_1, got %q", ev.PostID)
	}
}

func TestConsumeFireCancellation(t *testing.T) {
	b := NewMessageBus(10)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := b.ConsumeFire(ctx); err == nil {
		t.Fatal("expected error on cancelled context")
	}
}

func TestPublishAfterCloseIsDropped(t *testing.T) {
	b := NewMessageBus(10)
	b.Close()

	// Must not panic.
	b.PublishFire(FireEvent{PostID: "sp_1"})
	b.PublishNotice(Notice{Kind: "posted", Text: "late"})
	b.Close()
}

func TestNoticeDispatch(t *testing.T) {
	b := NewMessageBus(10)

	got := make(chan Notice, 1)
	b.Subscribe(func(n Notice) { got <- n })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go b.DispatchNotices(ctx)

	b.PublishNotice(Notice{Kind: "posted", Text: "done"})

	select {
	case n := <-got:
		if n.Kind != "posted" || n.Text != "done" {
			t.Errorf("unexpected notice %+v", n)
		}
	case <-time.After(time.Second):
		t.Fatal("notice not delivered")
	}
}
