package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"restaurant-orders/internal/domain"
	"restaurant-orders/internal/logger"
)

const topicPrefix = "ORDERS_CHANGED_"

func Topic(ct domain.ChangeType) string {
	return topicPrefix + string(ct)
}

// Bus is a thin publish/subscribe-by-topic facade. Subscriptions end when
// ctx is cancelled, after which the channel is closed.
type Bus interface {
	Publish(ctx context.Context, topic string, payload []byte) error
	Subscribe(ctx context.Context, topic string) (<-chan []byte, error)
}

// Publisher fans order changes out to the per-kind topic and to ALL.
type Publisher struct {
	bus Bus
	log *logger.Logger
}

var _ Hook = (*Publisher)(nil)

func NewPublisher(bus Bus, log *logger.Logger) *Publisher {
	return &Publisher{bus: bus, log: log}
}

func (p *Publisher) Name() string { return "subscriptions" }

func (p *Publisher) OrderChanged(ctx context.Context, ct domain.ChangeType, order *domain.Order) error {
	specific, err := json.Marshal(domain.OrderPublished{Order: *order})
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", ct, err)
	}
	kind := ct
	all, err := json.Marshal(domain.OrderPublished{Order: *order, ChangeType: &kind})
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", domain.ChangeAll, err)
	}

	return errors.Join(
		p.bus.Publish(ctx, Topic(ct), specific),
		p.bus.Publish(ctx, Topic(domain.ChangeAll), all),
	)
}

// Subscribe streams changes of kind ct; ALL receives every kind together
// with its change type.
func (p *Publisher) Subscribe(ctx context.Context, ct domain.ChangeType) (<-chan domain.OrderPublished, error) {
	if !ct.Valid() {
		return nil, fmt.Errorf("%w: change type %q", domain.ErrInvalidInput, ct)
	}
	raw, err := p.bus.Subscribe(ctx, Topic(ct))
	if err != nil {
		return nil, err
	}

	out := make(chan domain.OrderPublished)
	go func() {
		defer close(out)
		for payload := range raw {
			var msg domain.OrderPublished
			if err := json.Unmarshal(payload, &msg); err != nil {
				p.log.Warn("SUBSCRIPTION", fmt.Sprintf("dropping undecodable %s message: %v", Topic(ct), err))
				continue
			}
			select {
			case out <- msg:
			case <-ctx.Done():
				// drain so the bus can close raw
				for range raw {
				}
				return
			}
		}
	}()
	return out, nil
}
