package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"restaurant-orders/internal/domain"
	"restaurant-orders/internal/images"
	"restaurant-orders/internal/infra"
	"restaurant-orders/internal/logger"
	"restaurant-orders/internal/repository"
)

var validate = validator.New()

type ImageResolver interface {
	Resolve(ctx context.Context, sources []images.Source) ([]string, error)
}

// Notifier runs the post-commit hooks of a mutation.
type Notifier interface {
	Dispatch(ctx context.Context, ct domain.ChangeType, order *domain.Order) error
}

type Subscriber interface {
	Subscribe(ctx context.Context, ct domain.ChangeType) (<-chan domain.OrderPublished, error)
}

type OrderCache interface {
	Get(ctx context.Context, id string) (*domain.Order, bool, error)
	Set(ctx context.Context, order *domain.Order) error
}

// OrderInfoInput is one ticket submission. Images must hold at least one
// source.
type OrderInfoInput struct {
	AdditionalInfo *string
	Completed      *bool
	Images         []images.Source
}

type OrderService struct {
	repo          repository.OrderRepository
	images        ImageResolver
	notifier      Notifier
	subscriber    Subscriber
	printer       infra.PrintClientInterface
	cache         OrderCache
	allowReassign bool
	log           *logger.Logger
}

func NewOrderService(
	r repository.OrderRepository,
	img ImageResolver,
	n Notifier,
	sub Subscriber,
	p infra.PrintClientInterface,
	log *logger.Logger,
) *OrderService {
	return &OrderService{
		repo:       r,
		images:     img,
		notifier:   n,
		subscriber: sub,
		printer:    p,
		log:        log,
	}
}

func (s *OrderService) SetOrderCache(c OrderCache) {
	s.cache = c
}

// AllowTableReassignment lets UpdateOrder change an order's table.
func (s *OrderService) AllowTableReassignment(allow bool) {
	s.allowReassign = allow
}

func (s *OrderService) CreateOrder(ctx context.Context, table string, in OrderInfoInput) (*domain.Order, error) {
	table = strings.TrimSpace(table)
	if table == "" {
		return nil, fmt.Errorf("%w: table is required", domain.ErrInvalidInput)
	}

	if err := s.repo.RequireAvailableTable(ctx, table); err != nil {
		return nil, err
	}

	info, err := s.newOrderInfo(ctx, in)
	if err != nil {
		return nil, err
	}

	order, err := s.repo.CreateOrder(ctx, table, info)
	if err != nil {
		var orphan *repository.OrphanOrderError
		if errors.As(err, &orphan) {
			s.log.Error("ORDER", fmt.Sprintf("orphan order %s on table %s: %v", orphan.OrderID, table, orphan.Err))
		}
		return nil, err
	}

	s.log.Info("ORDER", fmt.Sprintf("created order %s on table %s", order.ID, order.Table))
	s.afterCommit(ctx, domain.ChangeCreated, order)
	return order, nil
}

func (s *OrderService) UpdateOrder(ctx context.Context, in domain.UpdateOrderInput) (*domain.Order, error) {
	if in.Table != nil && !s.allowReassign {
		return nil, domain.ErrTableReassignment
	}
	if in.Table != nil && strings.TrimSpace(*in.Table) == "" {
		return nil, fmt.Errorf("%w: table cannot be empty", domain.ErrInvalidInput)
	}

	order, err := s.repo.UpdateOrder(ctx, in)
	if err != nil {
		return nil, err
	}

	s.afterCommit(ctx, domain.ChangeUpdated, order)
	return order, nil
}

func (s *OrderService) AddOrderInfo(ctx context.Context, orderID string, in OrderInfoInput) (*domain.Order, error) {
	if _, err := s.repo.GetRequiredOrder(ctx, orderID); err != nil {
		return nil, err
	}

	info, err := s.newOrderInfo(ctx, in)
	if err != nil {
		return nil, err
	}

	order, err := s.repo.AddOrderInfo(ctx, orderID, info)
	if err != nil {
		return nil, err
	}

	s.afterCommit(ctx, domain.ChangeUpdated, order)
	return order, nil
}

// DeleteOrder returns the order as it was before deletion.
func (s *OrderService) DeleteOrder(ctx context.Context, id string) (*domain.Order, error) {
	order, err := s.repo.DeleteOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	s.log.Info("ORDER", fmt.Sprintf("deleted order %s on table %s", order.ID, order.Table))
	s.afterCommit(ctx, domain.ChangeDeleted, order)
	return order, nil
}

func (s *OrderService) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, id)
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		if err != nil {
			s.log.Debug("CACHE", fmt.Sprintf("get order %s: %v", id, err))
		}
		if ok {
			return cached, nil
		}
	}

	order, err := s.repo.GetRequiredOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, order); err != nil {
			s.log.Warn("CACHE", fmt.Sprintf("set order %s: %v", id, err))
		}
	}
	return order, nil
}

func (s *OrderService) ListOrders(ctx context.Context, f domain.OrderFilter) ([]domain.Order, error) {
	return s.repo.ListOrders(ctx, f)
}

// OrdersChanged streams order changes until ctx is done. An empty change
// type subscribes to every change.
func (s *OrderService) OrdersChanged(ctx context.Context, ct domain.ChangeType) (<-chan domain.OrderPublished, error) {
	if ct == "" {
		ct = domain.ChangeAll
	}
	if s.subscriber == nil {
		return nil, errors.New("subscriptions are not available")
	}
	return s.subscriber.Subscribe(ctx, ct)
}

// PrintOrder forwards the products to the print API and echoes them back.
func (s *OrderService) PrintOrder(ctx context.Context, products []infra.Product) ([]infra.Product, error) {
	if s.printer == nil {
		return nil, domain.ErrPrinterNotConfigured
	}
	for i := range products {
		if err := validate.Struct(&products[i]); err != nil {
			return nil, fmt.Errorf("%w: product %d: %v", domain.ErrInvalidInput, i, err)
		}
	}
	if products == nil {
		products = []infra.Product{}
	}

	if err := s.printer.NewOrder(ctx, products); err != nil {
		s.log.Error("PRINT", fmt.Sprintf("forward %d products: %v", len(products), err))
		return nil, fmt.Errorf("print order: %w", err)
	}
	return products, nil
}

func (s *OrderService) newOrderInfo(ctx context.Context, in OrderInfoInput) (*domain.OrderInfo, error) {
	urls, err := s.images.Resolve(ctx, in.Images)
	if err != nil {
		return nil, err
	}

	info := &domain.OrderInfo{
		AdditionalInfo: in.AdditionalInfo,
		ImageURLs:      urls,
	}
	if in.Completed != nil {
		info.Completed = *in.Completed
	}
	return info, nil
}

// afterCommit never fails the mutation; the write is already durable.
func (s *OrderService) afterCommit(ctx context.Context, ct domain.ChangeType, order *domain.Order) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Dispatch(context.WithoutCancel(ctx), ct, order); err != nil {
		s.log.Warn("NOTIFY", fmt.Sprintf("order %s %s committed, delivery incomplete: %v", order.ID, ct, err))
	}
}
