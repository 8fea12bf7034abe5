package redis

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"

	"restaurant-orders/internal/notify"
)

// Bus relays topics over Redis PUBLISH/SUBSCRIBE so every instance sees
// every change.
type Bus struct {
	client *redis.Client
	buffer int
}

var _ notify.Bus = (*Bus)(nil)

func NewBus(client *redis.Client, buffer int) *Bus {
	if buffer <= 0 {
		buffer = 16
	}
	return &Bus{client: client, buffer: buffer}
}

func (b *Bus) Publish(ctx context.Context, topic string, payload []byte) error {
	if err := b.client.Publish(ctx, topic, payload).Err(); err != nil {
		return fmt.Errorf("redis publish %s: %w", topic, err)
	}
	return nil
}

func (b *Bus) Subscribe(ctx context.Context, topic string) (<-chan []byte, error) {
	ps := b.client.Subscribe(ctx, topic)
	// wait for the subscription confirmation so no publish is missed
	if _, err := ps.Receive(ctx); err != nil {
		ps.Close()
		return nil, fmt.Errorf("redis subscribe %s: %w", topic, err)
	}

	out := make(chan []byte, b.buffer)
	go func() {
		defer close(out)
		defer ps.Close()
		msgs := ps.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-msgs:
				if !ok {
					return
				}
				select {
				case out <- []byte(m.Payload):
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
