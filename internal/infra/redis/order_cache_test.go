package redis

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"restaurant-orders/internal/domain"
	"restaurant-orders/internal/mocks"
)

type mockCmdable struct {
	mock.Mock
}

func (m *mockCmdable) Get(ctx context.Context, key string) *redis.StringCmd {
	args := m.Called(ctx, key)
	return args.Get(0).(*redis.StringCmd)
}

func (m *mockCmdable) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	args := m.Called(ctx, key, value, expiration)
	return args.Get(0).(*redis.StatusCmd)
}

func (m *mockCmdable) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd {
	args := m.Called(ctx, key, value, expiration)
	return args.Get(0).(*redis.BoolCmd)
}

func (m *mockCmdable) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	args := m.Called(ctx, keys)
	return args.Get(0).(*redis.IntCmd)
}

func TestOrderCache_Get(t *testing.T) {
	ctx := context.Background()
	cached, _ := json.Marshal(domain.Order{ID: "o-1", Table: "T1", OrderInfoList: []domain.OrderInfo{}})

	tests := []struct {
		name       string
		setupMocks func(m *mockCmdable)
		wantHit    bool
		wantErr    bool
		wantErrIs  error
	}{
		{
			name: "hit",
			setupMocks: func(m *mockCmdable) {
				m.On("Get", ctx, "orders:o-1").Return(redis.NewStringResult(string(cached), nil))
			},
			wantHit: true,
		},
		{
			name: "miss",
			setupMocks: func(m *mockCmdable) {
				m.On("Get", ctx, "orders:o-1").Return(redis.NewStringResult("", redis.Nil))
			},
		},
		{
			name: "dirty marker reads as a miss",
			setupMocks: func(m *mockCmdable) {
				m.On("Get", ctx, "orders:o-1").Return(redis.NewStringResult(dirtyMarker, nil))
			},
		},
		{
			name: "tombstone reads as not found",
			setupMocks: func(m *mockCmdable) {
				m.On("Get", ctx, "orders:o-1").Return(redis.NewStringResult(tombstone, nil))
			},
			wantErr:   true,
			wantErrIs: domain.ErrNotFound,
		},
		{
			name: "redis down",
			setupMocks: func(m *mockCmdable) {
				m.On("Get", ctx, "orders:o-1").Return(redis.NewStringResult("", errors.New("dial tcp: refused")))
			},
			wantErr: true,
		},
		{
			name: "garbage entry",
			setupMocks: func(m *mockCmdable) {
				m.On("Get", ctx, "orders:o-1").Return(redis.NewStringResult("{not json", nil))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := new(mockCmdable)
			tt.setupMocks(m)
			cache := NewOrderCache(m, time.Minute)

			order, hit, err := cache.Get(ctx, "o-1")

			if tt.wantErr {
				assert.Error(t, err)
				if tt.wantErrIs != nil {
					assert.ErrorIs(t, err, tt.wantErrIs)
				}
				assert.False(t, hit)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantHit, hit)
			if tt.wantHit {
				assert.Equal(t, "T1", order.Table)
			} else {
				assert.Nil(t, order)
			}
			m.AssertExpectations(t)
		})
	}
}

func TestOrderCache_SetUsesTTL(t *testing.T) {
	ctx := context.Background()
	m := new(mockCmdable)
	m.On("SetNX", ctx, "orders:o-2", mock.AnythingOfType("[]uint8"), 30*time.Second).
		Return(redis.NewBoolResult(true, nil))

	err := NewOrderCache(m, 30*time.Second).Set(ctx, &domain.Order{ID: "o-2", Table: "T2"})

	require.NoError(t, err)
	m.AssertExpectations(t)
}

func TestOrderCache_OrderChanged(t *testing.T) {
	ctx := context.Background()
	stale := &domain.Order{ID: "o-3", Table: "T3", OrderInfoList: []domain.OrderInfo{}}

	tests := []struct {
		name      string
		ct        domain.ChangeType
		wantValue string
		wantTTL   time.Duration
		wantErrIs error
	}{
		{name: "update leaves a dirty marker", ct: domain.ChangeUpdated, wantValue: dirtyMarker, wantTTL: defaultDirtyTTL},
		{name: "create leaves a dirty marker", ct: domain.ChangeCreated, wantValue: dirtyMarker, wantTTL: defaultDirtyTTL},
		{name: "delete leaves a tombstone", ct: domain.ChangeDeleted, wantValue: tombstone, wantTTL: time.Minute, wantErrIs: domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := mocks.NewMemoryRedis()
			cache := NewOrderCache(store, time.Minute)
			require.NoError(t, cache.Set(ctx, stale))

			require.NoError(t, cache.OrderChanged(ctx, tt.ct, stale))

			v, ok := store.Value("orders:o-3")
			require.True(t, ok)
			assert.Equal(t, tt.wantValue, v)
			assert.Equal(t, tt.wantTTL, store.TTLs["orders:o-3"])

			// a reader that loaded the row before the commit
			require.NoError(t, cache.Set(ctx, stale))
			v, _ = store.Value("orders:o-3")
			assert.Equal(t, tt.wantValue, v)

			order, hit, err := cache.Get(ctx, "o-3")
			assert.Nil(t, order)
			assert.False(t, hit)
			if tt.wantErrIs != nil {
				assert.ErrorIs(t, err, tt.wantErrIs)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, "order-cache", cache.Name())
		})
	}
}

func TestNewOrderCache_DirtyTTLNeverExceedsEntryTTL(t *testing.T) {
	assert.Equal(t, 500*time.Millisecond, NewOrderCache(mocks.NewMemoryRedis(), 500*time.Millisecond).dirtyTTL)
	assert.Equal(t, defaultDirtyTTL, NewOrderCache(mocks.NewMemoryRedis(), time.Minute).dirtyTTL)
}
