package notify

import (
	"context"
	"errors"
	"fmt"

	"restaurant-orders/internal/domain"
	"restaurant-orders/internal/logger"
)

// Hook runs after an order mutation has committed.
type Hook interface {
	Name() string
	OrderChanged(ctx context.Context, ct domain.ChangeType, order *domain.Order) error
}

type HookFunc struct {
	HookName string
	Fn       func(ctx context.Context, ct domain.ChangeType, order *domain.Order) error
}

func (h HookFunc) Name() string { return h.HookName }

func (h HookFunc) OrderChanged(ctx context.Context, ct domain.ChangeType, order *domain.Order) error {
	return h.Fn(ctx, ct, order)
}

// Dispatcher runs its hooks in order. A failing or panicking hook never
// stops the others.
type Dispatcher struct {
	hooks []Hook
	log   *logger.Logger
}

func NewDispatcher(log *logger.Logger, hooks ...Hook) *Dispatcher {
	return &Dispatcher{hooks: hooks, log: log}
}

func (d *Dispatcher) Register(h Hook) {
	d.hooks = append(d.hooks, h)
}

// Dispatch returns the joined hook failures wrapped in
// domain.ErrNotificationDeliveryFailed; the mutation stays committed.
func (d *Dispatcher) Dispatch(ctx context.Context, ct domain.ChangeType, order *domain.Order) error {
	var errs []error
	for _, h := range d.hooks {
		if err := d.run(ctx, h, ct, order); err != nil {
			d.log.Warn("NOTIFY", fmt.Sprintf("hook %s failed for order %s (%s): %v", h.Name(), order.ID, ct, err))
			errs = append(errs, fmt.Errorf("%s: %w", h.Name(), err))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", domain.ErrNotificationDeliveryFailed, errors.Join(errs...))
}

func (d *Dispatcher) run(ctx context.Context, h Hook, ct domain.ChangeType, order *domain.Order) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return h.OrderChanged(ctx, ct, order)
}
