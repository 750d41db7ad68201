package bus

import (
	"context"
	"sync"
)

// MessageBus connects scheduled-post timers to the coordinator that
// executes fires, and background work to the interactive console.
type MessageBus struct {
	fires   chan FireEvent
	notices chan Notice
	subs    []func(Notice)
	mu      sync.RWMutex
	closed  bool
	bufSize int
}

// NewMessageBus creates a new MessageBus with the given buffer size.
// If bufSize is 0, defaults to 100.
func NewMessageBus(bufSize int) *MessageBus {
	if bufSize <= 0 {
		bufSize = 100
	}
	return &MessageBus{
		fires:   make(chan FireEvent, bufSize),
		notices: make(chan Notice, bufSize),
		bufSize: bufSize,
	}
}

// PublishFire sends a fire event onto the bus. A publish after Close is
// dropped: stray timer callbacks during shutdown must not panic.
func (b *MessageBus) PublishFire(ev FireEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	b.fires <- ev
}

// PublishNotice sends a notice onto the bus. Dropped after Close.
func (b *MessageBus) PublishNotice(n Notice) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	b.notices <- n
}

// ConsumeFire blocks until a fire event is available or ctx is cancelled.
func (b *MessageBus) ConsumeFire(ctx context.Context) (FireEvent, error) {
	select {
	case ev, ok := <-b.fires:
		if !ok {
			return FireEvent{}, context.Canceled
		}
		return ev, nil
	case <-ctx.Done():
		return FireEvent{}, ctx.Err()
	}
}

// Subscribe registers fn to receive notices.
func (b *MessageBus) Subscribe(fn func(Notice)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = append(b.subs, fn)
}

// DispatchNotices runs in a goroutine, reading notices and delivering
// them to subscribers. Returns when ctx is cancelled or the notice
// channel is closed.
func (b *MessageBus) DispatchNotices(ctx context.Context) {
	for {
		select {
		case n, ok := <-b.notices:
			if !ok {
				return
			}
			b.dispatch(n)
		case <-ctx.Done():
			return
		}
	}
}

func (b *MessageBus) dispatch(n Notice) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, fn := range b.subs {
		fn(n)
	}
}

// Close closes both the fire and notice channels. Publishes issued
// after Close are silently dropped.
func (b *MessageBus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	close(b.fires)
	close(b.notices)
}
