package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"restaurant-orders/internal/domain"
	"restaurant-orders/internal/images"
	"restaurant-orders/internal/infra"
	"restaurant-orders/internal/repository"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) Create(ctx context.Context, value any) error {
	args := m.Called(ctx, value)
	return args.Error(0)
}

func (m *MockStore) FindUnique(ctx context.Context, dest any, q repository.Query) error {
	args := m.Called(ctx, dest, q)
	return args.Error(0)
}

func (m *MockStore) FindFirst(ctx context.Context, dest any, q repository.Query) error {
	args := m.Called(ctx, dest, q)
	return args.Error(0)
}

func (m *MockStore) FindMany(ctx context.Context, dest any, q repository.Query) error {
	args := m.Called(ctx, dest, q)
	return args.Error(0)
}

func (m *MockStore) Update(ctx context.Context, q repository.Query) error {
	args := m.Called(ctx, q)
	return args.Error(0)
}

func (m *MockStore) UpdateMany(ctx context.Context, q repository.Query) (int64, error) {
	args := m.Called(ctx, q)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStore) Delete(ctx context.Context, q repository.Query) error {
	args := m.Called(ctx, q)
	return args.Error(0)
}

func (m *MockStore) DeleteMany(ctx context.Context, q repository.Query) (int64, error) {
	args := m.Called(ctx, q)
	return args.Get(0).(int64), args.Error(1)
}

// Transaction runs fn against the mock itself.
func (m *MockStore) Transaction(ctx context.Context, fn func(tx repository.Store) error) error {
	args := m.Called(ctx, fn)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(m)
}

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) RequireAvailableTable(ctx context.Context, table string) error {
	args := m.Called(ctx, table)
	return args.Error(0)
}

func (m *MockOrderRepository) GetRequiredOrder(ctx context.Context, id string) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepository) CreateOrder(ctx context.Context, table string, info *domain.OrderInfo) (*domain.Order, error) {
	args := m.Called(ctx, table, info)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepository) UpdateOrder(ctx context.Context, in domain.UpdateOrderInput) (*domain.Order, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepository) AddOrderInfo(ctx context.Context, orderID string, info *domain.OrderInfo) (*domain.Order, error) {
	args := m.Called(ctx, orderID, info)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepository) DeleteOrder(ctx context.Context, id string) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepository) ListOrders(ctx context.Context, f domain.OrderFilter) ([]domain.Order, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

type MockImageResolver struct {
	mock.Mock
}

func (m *MockImageResolver) Resolve(ctx context.Context, sources []images.Source) ([]string, error) {
	args := m.Called(ctx, sources)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Dispatch(ctx context.Context, ct domain.ChangeType, order *domain.Order) error {
	args := m.Called(ctx, ct, order)
	return args.Error(0)
}

type MockSubscriber struct {
	mock.Mock
}

func (m *MockSubscriber) Subscribe(ctx context.Context, ct domain.ChangeType) (<-chan domain.OrderPublished, error) {
	args := m.Called(ctx, ct)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(<-chan domain.OrderPublished), args.Error(1)
}

type MockOrderCache struct {
	mock.Mock
}

func (m *MockOrderCache) Get(ctx context.Context, id string) (*domain.Order, bool, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*domain.Order), args.Bool(1), args.Error(2)
}

func (m *MockOrderCache) Set(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

type MockPrintClient struct {
	mock.Mock
}

var _ infra.PrintClientInterface = (*MockPrintClient)(nil)

func (m *MockPrintClient) NewOrder(ctx context.Context, products []infra.Product) error {
	args := m.Called(ctx, products)
	return args.Error(0)
}

type MockBus struct {
	mock.Mock
}

func (m *MockBus) Publish(ctx context.Context, topic string, payload []byte) error {
	args := m.Called(ctx, topic, payload)
	return args.Error(0)
}

func (m *MockBus) Subscribe(ctx context.Context, topic string) (<-chan []byte, error) {
	args := m.Called(ctx, topic)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(<-chan []byte), args.Error(1)
}

type MockHook struct {
	mock.Mock
}

func (m *MockHook) Name() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockHook) OrderChanged(ctx context.Context, ct domain.ChangeType, order *domain.Order) error {
	args := m.Called(ctx, ct, order)
	return args.Error(0)
}
