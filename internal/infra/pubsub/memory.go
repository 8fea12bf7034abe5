package pubsub

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"restaurant-orders/internal/notify"
)

var ErrSubscriberLagging = errors.New("subscriber buffer full, message dropped")

// MemoryBus delivers messages to subscribers of the same process. Publish
// never blocks; a subscriber whose buffer is full misses the message.
type MemoryBus struct {
	mu     sync.RWMutex
	subs   map[string]map[chan []byte]struct{}
	buffer int
}

var _ notify.Bus = (*MemoryBus)(nil)

func NewMemoryBus(buffer int) *MemoryBus {
	if buffer <= 0 {
		buffer = 16
	}
	return &MemoryBus{subs: map[string]map[chan []byte]struct{}{}, buffer: buffer}
}

func (b *MemoryBus) Publish(ctx context.Context, topic string, payload []byte) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	dropped := 0
	for ch := range b.subs[topic] {
		select {
		case ch <- payload:
		default:
			dropped++
		}
	}
	if dropped > 0 {
		return fmt.Errorf("%s: %d: %w", topic, dropped, ErrSubscriberLagging)
	}
	return nil
}

func (b *MemoryBus) Subscribe(ctx context.Context, topic string) (<-chan []byte, error) {
	ch := make(chan []byte, b.buffer)

	b.mu.Lock()
	if b.subs[topic] == nil {
		b.subs[topic] = map[chan []byte]struct{}{}
	}
	b.subs[topic][ch] = struct{}{}
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs[topic], ch)
		if len(b.subs[topic]) == 0 {
			delete(b.subs, topic)
		}
		b.mu.Unlock()
		close(ch)
	}()
	return ch, nil
}

// Subscribers reports the live subscriptions on topic.
func (b *MemoryBus) Subscribers(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[topic])
}
