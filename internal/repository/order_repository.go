package repository

import (
	"context"
	"errors"
	"fmt"

	"restaurant-orders/internal/domain"
)

type OrderRepository interface {
	// RequireAvailableTable fails with domain.ErrTableOccupied when a live,
	// open order already sits at table.
	RequireAvailableTable(ctx context.Context, table string) error
	GetRequiredOrder(ctx context.Context, id string) (*domain.Order, error)
	CreateOrder(ctx context.Context, table string, info *domain.OrderInfo) (*domain.Order, error)
	UpdateOrder(ctx context.Context, in domain.UpdateOrderInput) (*domain.Order, error)
	AddOrderInfo(ctx context.Context, orderID string, info *domain.OrderInfo) (*domain.Order, error)
	// DeleteOrder returns the order as it was before deletion.
	DeleteOrder(ctx context.Context, id string) (*domain.Order, error)
	ListOrders(ctx context.Context, f domain.OrderFilter) ([]domain.Order, error)
}

// OrphanOrderError reports an order row written without its first order
// info. Order creation is two independent writes.
type OrphanOrderError struct {
	OrderID string
	Err     error
}

func (e *OrphanOrderError) Error() string {
	return fmt.Sprintf("order %s created without order info: %v", e.OrderID, e.Err)
}

func (e *OrphanOrderError) Unwrap() error { return e.Err }

type orderRepo struct {
	store Store
}

// NewOrderRepository builds the aggregate on store, which is expected to be
// wrapped by softdelete.
func NewOrderRepository(store Store) OrderRepository {
	return &orderRepo{store: store}
}

func orderInfoPreload() Preload {
	return Preload{
		Field:   "OrderInfoList",
		Model:   &domain.OrderInfo{},
		OrderBy: []Sort{{Column: "created_at"}},
	}
}

func (r *orderRepo) RequireAvailableTable(ctx context.Context, table string) error {
	var active domain.Order
	err := r.store.FindFirst(ctx, &active, Query{
		Model: &domain.Order{},
		Where: Where{"table_code": table, "closed": false},
	})
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return nil
	case err != nil:
		return err
	}
	return domain.ErrTableOccupied
}

func (r *orderRepo) GetRequiredOrder(ctx context.Context, id string) (*domain.Order, error) {
	var o domain.Order
	err := r.store.FindUnique(ctx, &o, Query{
		Model:   &domain.Order{},
		Where:   Where{"id": id},
		Preload: []Preload{orderInfoPreload()},
	})
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	if o.OrderInfoList == nil {
		o.OrderInfoList = []domain.OrderInfo{}
	}
	return &o, nil
}

func (r *orderRepo) CreateOrder(ctx context.Context, table string, info *domain.OrderInfo) (*domain.Order, error) {
	if err := r.RequireAvailableTable(ctx, table); err != nil {
		return nil, err
	}

	active := table
	order := &domain.Order{Table: table, ActiveTable: &active}
	if err := r.store.Create(ctx, order); err != nil {
		if errors.Is(err, ErrDuplicateKey) {
			return nil, domain.ErrTableOccupied
		}
		return nil, err
	}

	info.OrderID = order.ID
	if err := r.store.Create(ctx, info); err != nil {
		return nil, &OrphanOrderError{OrderID: order.ID, Err: err}
	}

	return r.GetRequiredOrder(ctx, order.ID)
}

func (r *orderRepo) UpdateOrder(ctx context.Context, in domain.UpdateOrderInput) (*domain.Order, error) {
	current, err := r.GetRequiredOrder(ctx, in.ID)
	if err != nil {
		return nil, err
	}

	set := map[string]any{}
	if in.Table != nil && *in.Table != current.Table {
		set["table_code"] = *in.Table
		if !current.Closed {
			set["active_table"] = *in.Table
		}
	}
	if in.Closed != nil && *in.Closed != current.Closed {
		if !*in.Closed {
			return nil, domain.ErrOrderReopen
		}
		set["closed"] = true
		set["active_table"] = nil
	}

	if len(set) > 0 {
		err := r.store.Update(ctx, Query{
			Model: &domain.Order{},
			Where: Where{"id": in.ID},
			Set:   set,
		})
		if errors.Is(err, ErrDuplicateKey) {
			return nil, domain.ErrTableOccupied
		}
		if err != nil {
			return nil, err
		}
	}

	return r.GetRequiredOrder(ctx, in.ID)
}

func (r *orderRepo) AddOrderInfo(ctx context.Context, orderID string, info *domain.OrderInfo) (*domain.Order, error) {
	if _, err := r.GetRequiredOrder(ctx, orderID); err != nil {
		return nil, err
	}

	info.OrderID = orderID
	if err := r.store.Create(ctx, info); err != nil {
		return nil, err
	}

	return r.GetRequiredOrder(ctx, orderID)
}

func (r *orderRepo) DeleteOrder(ctx context.Context, id string) (*domain.Order, error) {
	order, err := r.GetRequiredOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	err = r.store.Transaction(ctx, func(tx Store) error {
		if _, err := tx.DeleteMany(ctx, Query{
			Model: &domain.OrderInfo{},
			Where: Where{"order_id": id},
		}); err != nil {
			return err
		}
		return tx.Delete(ctx, Query{
			Model: &domain.Order{},
			Where: Where{"id": id},
			Set:   map[string]any{"active_table": nil},
		})
	})
	switch {
	case err == nil:
		return order, nil
	case errors.Is(err, domain.ErrNotFound):
		// deleted concurrently, the transaction rolled back
		return nil, domain.ErrOrderNotFound
	case errors.Is(err, domain.ErrStorageUnavailable):
		return nil, err
	}
	return nil, fmt.Errorf("%w: delete order %s: %v", domain.ErrStorageUnavailable, id, err)
}

func (r *orderRepo) ListOrders(ctx context.Context, f domain.OrderFilter) ([]domain.Order, error) {
	where := Where{}
	if f.Table != nil {
		where["table_code"] = *f.Table
	}
	if f.Closed != nil {
		where["closed"] = *f.Closed
	}

	var sorts []Sort
	if f.OrderByCreated != nil {
		sorts = append(sorts, Sort{Column: "created_at", Desc: *f.OrderByCreated == domain.OrderingDesc})
	}
	if f.OrderByUpdated != nil {
		sorts = append(sorts, Sort{Column: "updated_at", Desc: *f.OrderByUpdated == domain.OrderingDesc})
	}

	var orders []domain.Order
	err := r.store.FindMany(ctx, &orders, Query{
		Model:   &domain.Order{},
		Where:   where,
		OrderBy: sorts,
		Preload: []Preload{orderInfoPreload()},
	})
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	for i := range orders {
		if orders[i].OrderInfoList == nil {
			orders[i].OrderInfoList = []domain.OrderInfo{}
		}
	}
	return orders, nil
}
