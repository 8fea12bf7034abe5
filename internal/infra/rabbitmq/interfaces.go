package rabbitmq

import "context"

// PublisherInterface is the part of the broker the change hook needs.
type PublisherInterface interface {
	Publish(ctx context.Context, routingKey string, data any) error
}

var _ PublisherInterface = (*Publisher)(nil)
