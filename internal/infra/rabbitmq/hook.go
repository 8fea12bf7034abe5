package rabbitmq

import (
	"context"
	"strings"
	"time"

	"restaurant-orders/internal/domain"
	"restaurant-orders/internal/notify"
)

// ChangeHook forwards committed order changes to the broker.
type ChangeHook struct {
	pub PublisherInterface
	now func() time.Time
}

var _ notify.Hook = (*ChangeHook)(nil)

func NewChangeHook(pub PublisherInterface) *ChangeHook {
	return &ChangeHook{pub: pub, now: func() time.Time { return time.Now().UTC() }}
}

// RoutingKey is "order.created", "order.updated" or "order.deleted".
func RoutingKey(ct domain.ChangeType) string {
	return "order." + strings.ToLower(string(ct))
}

func (h *ChangeHook) Name() string { return "rabbitmq" }

func (h *ChangeHook) OrderChanged(ctx context.Context, ct domain.ChangeType, order *domain.Order) error {
	return h.pub.Publish(ctx, RoutingKey(ct), domain.NewOrderChangedEvent(ct, order, h.now()))
}
