package softdelete

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"restaurant-orders/internal/domain"
	"restaurant-orders/internal/mocks"
	"restaurant-orders/internal/repository"
)

type plainRow struct{}

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newStore(inner *mocks.MockStore) *Store {
	return New(inner).WithClock(func() time.Time { return fixedNow })
}

func TestStore_Reads(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		call       func(s *Store) error
		setupMocks func(m *mocks.MockStore)
	}{
		{
			name: "find unique becomes find first on live rows",
			call: func(s *Store) error {
				return s.FindUnique(ctx, &domain.Order{}, repository.Query{
					Model: &domain.Order{},
					Where: repository.Where{"id": "o-1"},
				})
			},
			setupMocks: func(m *mocks.MockStore) {
				m.On("FindFirst", ctx, mock.Anything, repository.Query{
					Model: &domain.Order{},
					Where: repository.Where{"id": "o-1", "deleted": nil},
				}).Return(nil)
			},
		},
		{
			name: "find first hides deleted rows",
			call: func(s *Store) error {
				return s.FindFirst(ctx, &domain.Order{}, repository.Query{
					Model: &domain.Order{},
					Where: repository.Where{"table_code": "T1"},
				})
			},
			setupMocks: func(m *mocks.MockStore) {
				m.On("FindFirst", ctx, mock.Anything, repository.Query{
					Model: &domain.Order{},
					Where: repository.Where{"table_code": "T1", "deleted": nil},
				}).Return(nil)
			},
		},
		{
			name: "find many keeps an explicit deleted filter",
			call: func(s *Store) error {
				return s.FindMany(ctx, &[]domain.Order{}, repository.Query{
					Model: &domain.Order{},
					Where: repository.Where{"deleted": repository.NotNull},
				})
			},
			setupMocks: func(m *mocks.MockStore) {
				m.On("FindMany", ctx, mock.Anything, repository.Query{
					Model: &domain.Order{},
					Where: repository.Where{"deleted": repository.NotNull},
				}).Return(nil)
			},
		},
		{
			name: "preloads of soft-deletable models are filtered",
			call: func(s *Store) error {
				return s.FindMany(ctx, &[]domain.Order{}, repository.Query{
					Model:   &domain.Order{},
					Preload: []repository.Preload{{Field: "OrderInfoList", Model: &domain.OrderInfo{}}},
				})
			},
			setupMocks: func(m *mocks.MockStore) {
				m.On("FindMany", ctx, mock.Anything, repository.Query{
					Model: &domain.Order{},
					Where: repository.Where{"deleted": nil},
					Preload: []repository.Preload{{
						Field: "OrderInfoList",
						Model: &domain.OrderInfo{},
						Where: repository.Where{"deleted": nil},
					}},
				}).Return(nil)
			},
		},
		{
			name: "plain models pass through",
			call: func(s *Store) error {
				return s.FindUnique(ctx, &plainRow{}, repository.Query{
					Model: &plainRow{},
					Where: repository.Where{"id": 1},
				})
			},
			setupMocks: func(m *mocks.MockStore) {
				m.On("FindUnique", ctx, mock.Anything, repository.Query{
					Model: &plainRow{},
					Where: repository.Where{"id": 1},
				}).Return(nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inner := new(mocks.MockStore)
			tt.setupMocks(inner)

			require.NoError(t, tt.call(newStore(inner)))
			inner.AssertExpectations(t)
		})
	}
}

func TestStore_Writes(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		call       func(s *Store) error
		setupMocks func(m *mocks.MockStore)
		wantErr    error
	}{
		{
			name: "update targets live rows only",
			call: func(s *Store) error {
				return s.Update(ctx, repository.Query{
					Model: &domain.Order{},
					Where: repository.Where{"id": "o-1"},
					Set:   map[string]any{"closed": true},
				})
			},
			setupMocks: func(m *mocks.MockStore) {
				m.On("UpdateMany", ctx, repository.Query{
					Model: &domain.Order{},
					Where: repository.Where{"id": "o-1", "deleted": nil},
					Set:   map[string]any{"closed": true},
				}).Return(int64(1), nil)
			},
		},
		{
			name: "delete stamps the live row",
			call: func(s *Store) error {
				return s.Delete(ctx, repository.Query{
					Model: &domain.Order{},
					Where: repository.Where{"id": "o-1"},
					Set:   map[string]any{"active_table": nil},
				})
			},
			setupMocks: func(m *mocks.MockStore) {
				m.On("Update", ctx, repository.Query{
					Model: &domain.Order{},
					Where: repository.Where{"id": "o-1", "deleted": nil},
					Set:   map[string]any{"active_table": nil, "deleted": fixedNow},
				}).Return(nil)
			},
		},
		{
			name: "delete of an already deleted row is not found",
			call: func(s *Store) error {
				return s.Delete(ctx, repository.Query{
					Model: &domain.Order{},
					Where: repository.Where{"id": "gone"},
				})
			},
			setupMocks: func(m *mocks.MockStore) {
				m.On("Update", ctx, mock.Anything).Return(domain.ErrNotFound)
			},
			wantErr: domain.ErrNotFound,
		},
		{
			name: "delete many stamps every live match",
			call: func(s *Store) error {
				_, err := s.DeleteMany(ctx, repository.Query{
					Model: &domain.OrderInfo{},
					Where: repository.Where{"order_id": "o-1"},
				})
				return err
			},
			setupMocks: func(m *mocks.MockStore) {
				m.On("UpdateMany", ctx, repository.Query{
					Model: &domain.OrderInfo{},
					Where: repository.Where{"order_id": "o-1", "deleted": nil},
					Set:   map[string]any{"deleted": fixedNow},
				}).Return(int64(2), nil)
			},
		},
		{
			name: "plain delete is physical",
			call: func(s *Store) error {
				return s.Delete(ctx, repository.Query{Model: &plainRow{}})
			},
			setupMocks: func(m *mocks.MockStore) {
				m.On("Delete", ctx, repository.Query{Model: &plainRow{}}).Return(nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inner := new(mocks.MockStore)
			tt.setupMocks(inner)

			err := tt.call(newStore(inner))

			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr))
			} else {
				require.NoError(t, err)
			}
			inner.AssertExpectations(t)
		})
	}
}

func TestStore_DoesNotMutateCallerQuery(t *testing.T) {
	ctx := context.Background()
	inner := new(mocks.MockStore)
	inner.On("UpdateMany", ctx, mock.Anything).Return(int64(0), nil)

	where := repository.Where{"order_id": "o-1"}
	set := map[string]any{"completed": true}
	_, err := newStore(inner).DeleteMany(ctx, repository.Query{Model: &domain.OrderInfo{}, Where: where, Set: set})

	require.NoError(t, err)
	assert.Equal(t, repository.Where{"order_id": "o-1"}, where)
	assert.Equal(t, map[string]any{"completed": true}, set)
}

func TestStore_TransactionWrapsTx(t *testing.T) {
	ctx := context.Background()
	inner := new(mocks.MockStore)
	inner.On("Transaction", ctx, mock.Anything).Return(nil)
	inner.On("UpdateMany", ctx, repository.Query{
		Model: &domain.OrderInfo{},
		Where: repository.Where{"order_id": "o-1", "deleted": nil},
		Set:   map[string]any{"deleted": fixedNow},
	}).Return(int64(1), nil)

	err := newStore(inner).Transaction(ctx, func(tx repository.Store) error {
		_, err := tx.DeleteMany(ctx, repository.Query{
			Model: &domain.OrderInfo{},
			Where: repository.Where{"order_id": "o-1"},
		})
		return err
	})

	require.NoError(t, err)
	inner.AssertExpectations(t)
}
