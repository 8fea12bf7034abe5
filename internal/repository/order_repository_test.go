package repository_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"restaurant-orders/internal/domain"
	mmysql "restaurant-orders/internal/infra/mysql"
	"restaurant-orders/internal/repository"
	mysqlrepo "restaurant-orders/internal/repository/mysql"
	"restaurant-orders/internal/repository/softdelete"
)

type fixture struct {
	db    *gorm.DB
	store repository.Store
	repo  repository.OrderRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), mmysql.GormConfig(false))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, mmysql.Migrate(db))

	store := softdelete.New(mysqlrepo.NewStore(db))
	return &fixture{db: db, store: store, repo: repository.NewOrderRepository(store)}
}

func info(note string, urls ...string) *domain.OrderInfo {
	if urls == nil {
		urls = []string{}
	}
	return &domain.OrderInfo{AdditionalInfo: &note, ImageURLs: urls}
}

func ptr[T any](v T) *T { return &v }

func TestOrderRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	created, err := f.repo.CreateOrder(ctx, "T1", info("no onions", "http://h/public/a.svg", "http://h/public/b.png"))
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "T1", created.Table)
	assert.False(t, created.Closed)
	require.Len(t, created.OrderInfoList, 1)
	assert.Equal(t, []string{"http://h/public/a.svg", "http://h/public/b.png"}, []string(created.OrderInfoList[0].ImageURLs))
	assert.Equal(t, "no onions", *created.OrderInfoList[0].AdditionalInfo)

	got, err := f.repo.GetRequiredOrder(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
}

func TestOrderRepository_OneOpenOrderPerTable(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	first, err := f.repo.CreateOrder(ctx, "T1", info("first"))
	require.NoError(t, err)

	_, err = f.repo.CreateOrder(ctx, "T1", info("second"))
	assert.ErrorIs(t, err, domain.ErrTableOccupied)
	assert.ErrorIs(t, f.repo.RequireAvailableTable(ctx, "T1"), domain.ErrTableOccupied)
	assert.NoError(t, f.repo.RequireAvailableTable(ctx, "T2"))

	_, err = f.repo.UpdateOrder(ctx, domain.UpdateOrderInput{ID: first.ID, Closed: ptr(true)})
	require.NoError(t, err)

	again, err := f.repo.CreateOrder(ctx, "T1", info("after close"))
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, again.ID)
}

func TestOrderRepository_ConcurrentCreateSameTable(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	const n = 8
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok       int
		occupied int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.repo.CreateOrder(ctx, "T9", info(fmt.Sprintf("try %d", i)))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, domain.ErrTableOccupied):
				occupied++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, occupied)

	orders, err := f.repo.ListOrders(ctx, domain.OrderFilter{Table: ptr("T9")})
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}

func TestOrderRepository_DeleteIsSoft(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	order, err := f.repo.CreateOrder(ctx, "T1", info("first"))
	require.NoError(t, err)
	_, err = f.repo.AddOrderInfo(ctx, order.ID, info("second"))
	require.NoError(t, err)

	snapshot, err := f.repo.DeleteOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, snapshot.ID)
	assert.Len(t, snapshot.OrderInfoList, 2)

	_, err = f.repo.GetRequiredOrder(ctx, order.ID)
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	listed, err := f.repo.ListOrders(ctx, domain.OrderFilter{})
	require.NoError(t, err)
	assert.Empty(t, listed)

	// rows are still there, stamped
	var orders []domain.Order
	require.NoError(t, f.store.FindMany(ctx, &orders, repository.Query{
		Model: &domain.Order{},
		Where: repository.Where{"deleted": repository.NotNull},
	}))
	require.Len(t, orders, 1)
	assert.NotNil(t, orders[0].Deleted)
	assert.Nil(t, orders[0].ActiveTable)

	var infos []domain.OrderInfo
	require.NoError(t, f.store.FindMany(ctx, &infos, repository.Query{
		Model: &domain.OrderInfo{},
		Where: repository.Where{"order_id": order.ID, "deleted": repository.NotNull},
	}))
	assert.Len(t, infos, 2)

	_, err = f.repo.DeleteOrder(ctx, order.ID)
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)

	_, err = f.repo.CreateOrder(ctx, "T1", info("table is free again"))
	assert.NoError(t, err)
}

func TestOrderRepository_DeletedOrderIsNotWritable(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	order, err := f.repo.CreateOrder(ctx, "T1", info("x"))
	require.NoError(t, err)
	_, err = f.repo.DeleteOrder(ctx, order.ID)
	require.NoError(t, err)

	_, err = f.repo.AddOrderInfo(ctx, order.ID, info("late"))
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)

	_, err = f.repo.UpdateOrder(ctx, domain.UpdateOrderInput{ID: order.ID, Closed: ptr(true)})
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestOrderRepository_UpdateOrder(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		setup   func(f *fixture) string
		input   func(id string) domain.UpdateOrderInput
		wantErr error
		check   func(t *testing.T, o *domain.Order)
	}{
		{
			name:  "close",
			setup: func(f *fixture) string { return mustCreate(t, f, "T1") },
			input: func(id string) domain.UpdateOrderInput {
				return domain.UpdateOrderInput{ID: id, Closed: ptr(true)}
			},
			check: func(t *testing.T, o *domain.Order) {
				assert.True(t, o.Closed)
				assert.Nil(t, o.ActiveTable)
			},
		},
		{
			name:  "closing twice is a no-op",
			setup: func(f *fixture) string { return mustClose(t, f, mustCreate(t, f, "T1")) },
			input: func(id string) domain.UpdateOrderInput {
				return domain.UpdateOrderInput{ID: id, Closed: ptr(true)}
			},
			check: func(t *testing.T, o *domain.Order) { assert.True(t, o.Closed) },
		},
		{
			name:  "reopen is rejected",
			setup: func(f *fixture) string { return mustClose(t, f, mustCreate(t, f, "T1")) },
			input: func(id string) domain.UpdateOrderInput {
				return domain.UpdateOrderInput{ID: id, Closed: ptr(false)}
			},
			wantErr: domain.ErrOrderReopen,
		},
		{
			name:  "move to a free table",
			setup: func(f *fixture) string { return mustCreate(t, f, "T1") },
			input: func(id string) domain.UpdateOrderInput {
				return domain.UpdateOrderInput{ID: id, Table: ptr("T2")}
			},
			check: func(t *testing.T, o *domain.Order) {
				assert.Equal(t, "T2", o.Table)
				require.NotNil(t, o.ActiveTable)
				assert.Equal(t, "T2", *o.ActiveTable)
			},
		},
		{
			name: "move onto an occupied table",
			setup: func(f *fixture) string {
				mustCreate(t, f, "T2")
				return mustCreate(t, f, "T1")
			},
			input: func(id string) domain.UpdateOrderInput {
				return domain.UpdateOrderInput{ID: id, Table: ptr("T2")}
			},
			wantErr: domain.ErrTableOccupied,
		},
		{
			name:  "missing order",
			setup: func(f *fixture) string { return "does-not-exist" },
			input: func(id string) domain.UpdateOrderInput {
				return domain.UpdateOrderInput{ID: id, Closed: ptr(true)}
			},
			wantErr: domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			id := tt.setup(f)

			got, err := f.repo.UpdateOrder(ctx, tt.input(id))

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			tt.check(t, got)
		})
	}
}

func TestOrderRepository_AddOrderInfo(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.repo.AddOrderInfo(ctx, "nope", info("x"))
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)

	id := mustCreate(t, f, "T1")
	got, err := f.repo.AddOrderInfo(ctx, id, info("dessert", "http://h/public/c.png"))
	require.NoError(t, err)

	require.Len(t, got.OrderInfoList, 2)
	assert.Equal(t, "dessert", *got.OrderInfoList[1].AdditionalInfo)
}

func TestOrderRepository_ListOrders(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	base := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	a := mustCreate(t, f, "A")
	b := mustCreate(t, f, "B")
	c := mustClose(t, f, mustCreate(t, f, "C"))
	setTimes(t, f, a, base.Add(2*time.Hour), base.Add(2*time.Hour))
	setTimes(t, f, b, base, base.Add(3*time.Hour))
	setTimes(t, f, c, base.Add(time.Hour), base.Add(time.Hour))

	asc, desc := domain.OrderingAsc, domain.OrderingDesc

	tests := []struct {
		name   string
		filter domain.OrderFilter
		want   []string
	}{
		{"default lists open orders", domain.DefaultOrderFilter(), nil},
		{"closed only", domain.OrderFilter{Closed: ptr(true)}, []string{c}},
		{"by table", domain.OrderFilter{Table: ptr("B")}, []string{b}},
		{"created ascending", domain.OrderFilter{OrderByCreated: &asc}, []string{b, c, a}},
		{"created descending", domain.OrderFilter{OrderByCreated: &desc}, []string{a, c, b}},
		{"updated descending, open", domain.OrderFilter{Closed: ptr(false), OrderByUpdated: &desc}, []string{b, a}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orders, err := f.repo.ListOrders(ctx, tt.filter)
			require.NoError(t, err)

			ids := make([]string, 0, len(orders))
			for _, o := range orders {
				ids = append(ids, o.ID)
				assert.NotNil(t, o.OrderInfoList)
			}
			if tt.want == nil {
				assert.ElementsMatch(t, []string{a, b}, ids)
				return
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func mustCreate(t *testing.T, f *fixture, table string) string {
	t.Helper()
	o, err := f.repo.CreateOrder(context.Background(), table, info("seed"))
	require.NoError(t, err)
	return o.ID
}

func mustClose(t *testing.T, f *fixture, id string) string {
	t.Helper()
	_, err := f.repo.UpdateOrder(context.Background(), domain.UpdateOrderInput{ID: id, Closed: ptr(true)})
	require.NoError(t, err)
	return id
}

func setTimes(t *testing.T, f *fixture, id string, created, updated time.Time) {
	t.Helper()
	require.NoError(t, f.db.Model(&domain.Order{}).Where("id = ?", id).
		UpdateColumns(map[string]any{"created_at": created, "updated_at": updated}).Error)
}
