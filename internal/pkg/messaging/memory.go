package messaging

import (
	"context"
	"errors"
	"sync"
)

// MemoryBus delivers messages synchronously to the handlers subscribed to a
// topic. Handler errors are returned to the publisher, which keeps the message
// for another attempt. It backs local runs and tests.
type MemoryBus struct {
	mu       sync.RWMutex
	nextID   int
	handlers map[string]map[int]Handler
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{handlers: make(map[string]map[int]Handler)}
}

var _ Bus = (*MemoryBus)(nil)

func (b *MemoryBus) Publish(ctx context.Context, msg Message) error {
	b.mu.RLock()
	hs := make([]Handler, 0, len(b.handlers[msg.Topic]))
	for _, h := range b.handlers[msg.Topic] {
		hs = append(hs, h)
	}
	b.mu.RUnlock()

	var errs []error
	for _, h := range hs {
		if err := h(ctx, msg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Subscribe registers h and blocks until ctx is done.
func (b *MemoryBus) Subscribe(ctx context.Context, topic string, h Handler) error {
	cancel := b.Register(topic, h)
	defer cancel()
	<-ctx.Done()
	return nil
}

// Register adds h to topic without blocking and returns a func removing it.
func (b *MemoryBus) Register(topic string, h Handler) (cancel func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.handlers[topic] == nil {
		b.handlers[topic] = make(map[int]Handler)
	}
	id := b.nextID
	b.nextID++
	b.handlers[topic][id] = h
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.handlers[topic], id)
	}
}

func (b *MemoryBus) Close() error { return nil }
