package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"

	"restaurant-orders/internal/domain"
	"restaurant-orders/internal/notify"
)

const (
	orderKeyPrefix = "orders:"

	// Markers share the entry key so a read-through SetNX can never land
	// on top of them.
	tombstone   = "!deleted"
	dirtyMarker = "!dirty"

	defaultDirtyTTL = 2 * time.Second
)

// Cmdable is the subset of *redis.Client the cache uses.
type Cmdable interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// OrderCache keeps read-through copies of single orders. After a committed
// update the entry holds a short-lived dirty marker, after a delete a
// tombstone, so a reader that loaded the row before the commit cannot put
// the stale copy back.
type OrderCache struct {
	client   Cmdable
	ttl      time.Duration
	dirtyTTL time.Duration
}

var _ notify.Hook = (*OrderCache)(nil)

func NewOrderCache(client Cmdable, ttl time.Duration) *OrderCache {
	dirty := defaultDirtyTTL
	if ttl > 0 && ttl < dirty {
		dirty = ttl
	}
	return &OrderCache{client: client, ttl: ttl, dirtyTTL: dirty}
}

func OrderKey(id string) string { return orderKeyPrefix + id }

// Get reports a miss as (nil, false, nil) and a deleted order as
// domain.ErrOrderNotFound.
func (c *OrderCache) Get(ctx context.Context, id string) (*domain.Order, bool, error) {
	data, err := c.client.Get(ctx, OrderKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	switch string(data) {
	case tombstone:
		return nil, false, domain.ErrOrderNotFound
	case dirtyMarker:
		return nil, false, nil
	}

	var order domain.Order
	if err := json.Unmarshal(data, &order); err != nil {
		return nil, false, err
	}
	return &order, true, nil
}

// Set stores order unless the entry is already taken by a newer copy or a
// marker.
func (c *OrderCache) Set(ctx context.Context, order *domain.Order) error {
	data, err := json.Marshal(order)
	if err != nil {
		return err
	}
	return c.client.SetNX(ctx, OrderKey(order.ID), data, c.ttl).Err()
}

func (c *OrderCache) Name() string { return "order-cache" }

func (c *OrderCache) OrderChanged(ctx context.Context, ct domain.ChangeType, order *domain.Order) error {
	if ct == domain.ChangeDeleted {
		ttl := c.ttl
		if ttl <= 0 {
			ttl = time.Hour
		}
		return c.client.Set(ctx, OrderKey(order.ID), tombstone, ttl).Err()
	}
	return c.client.Set(ctx, OrderKey(order.ID), dirtyMarker, c.dirtyTTL).Err()
}
