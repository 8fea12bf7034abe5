package domain

import "time"

// OrderPublished is what subscribers receive. ChangeType is only set on the
// catch-all topic.
type OrderPublished struct {
	Order      Order       `json:"order"`
	ChangeType *ChangeType `json:"changeType,omitempty"`
}

// OrderChangedEvent is the broker message sent to downstream consumers.
type OrderChangedEvent struct {
	OrderID    string     `json:"orderId"`
	Table      string     `json:"table"`
	Closed     bool       `json:"closed"`
	ChangeType ChangeType `json:"changeType"`
	InfoCount  int        `json:"infoCount"`
	OccurredAt time.Time  `json:"occurredAt"`
}

func NewOrderChangedEvent(ct ChangeType, o *Order, at time.Time) OrderChangedEvent {
	return OrderChangedEvent{
		OrderID:    o.ID,
		Table:      o.Table,
		Closed:     o.Closed,
		ChangeType: ct,
		InfoCount:  len(o.OrderInfoList),
		OccurredAt: at,
	}
}
