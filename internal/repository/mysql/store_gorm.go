package mysql

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"sort"

	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"restaurant-orders/internal/domain"
	"restaurant-orders/internal/repository"
)

type gormStore struct {
	db *gorm.DB
}

// NewStore implements repository.Store on gorm. The *gorm.DB must be opened
// with TranslateError so unique violations surface as gorm.ErrDuplicatedKey.
func NewStore(db *gorm.DB) repository.Store {
	return &gormStore{db: db}
}

func (s *gormStore) Create(ctx context.Context, value any) error {
	return translate(s.db.WithContext(ctx).Create(value).Error)
}

func (s *gormStore) FindUnique(ctx context.Context, dest any, q repository.Query) error {
	return translate(s.scoped(ctx, q).Take(dest).Error)
}

func (s *gormStore) FindFirst(ctx context.Context, dest any, q repository.Query) error {
	return translate(s.scoped(ctx, q).First(dest).Error)
}

func (s *gormStore) FindMany(ctx context.Context, dest any, q repository.Query) error {
	return translate(s.scoped(ctx, q).Find(dest).Error)
}

func (s *gormStore) Update(ctx context.Context, q repository.Query) error {
	res := s.scoped(ctx, q).Updates(q.Set)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *gormStore) UpdateMany(ctx context.Context, q repository.Query) (int64, error) {
	res := s.scoped(ctx, q).Updates(q.Set)
	return res.RowsAffected, translate(res.Error)
}

func (s *gormStore) Delete(ctx context.Context, q repository.Query) error {
	res := s.scoped(ctx, q).Delete(q.Model)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *gormStore) DeleteMany(ctx context.Context, q repository.Query) (int64, error) {
	res := s.scoped(ctx, q).Delete(q.Model)
	return res.RowsAffected, translate(res.Error)
}

func (s *gormStore) Transaction(ctx context.Context, fn func(tx repository.Store) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
	return translate(err)
}

func (s *gormStore) scoped(ctx context.Context, q repository.Query) *gorm.DB {
	tx := s.db.WithContext(ctx)
	if q.Model != nil {
		tx = tx.Model(q.Model)
	}
	tx = orderBy(applyWhere(tx, q.Where), q.OrderBy)
	for _, p := range q.Preload {
		p := p
		tx = tx.Preload(p.Field, func(db *gorm.DB) *gorm.DB {
			return orderBy(applyWhere(db, p.Where), p.OrderBy)
		})
	}
	return tx
}

func applyWhere(tx *gorm.DB, w repository.Where) *gorm.DB {
	cols := make([]string, 0, len(w))
	for col := range w {
		cols = append(cols, col)
	}
	sort.Strings(cols)

	for _, col := range cols {
		c := clause.Column{Name: col}
		switch v := w[col]; {
		case v == nil:
			tx = tx.Where(clause.Eq{Column: c, Value: nil})
		case repository.IsNotNull(v):
			tx = tx.Where(clause.Neq{Column: c, Value: nil})
		default:
			tx = tx.Where(clause.Eq{Column: c, Value: v})
		}
	}
	return tx
}

func orderBy(tx *gorm.DB, sorts []repository.Sort) *gorm.DB {
	for _, o := range sorts {
		tx = tx.Order(clause.OrderByColumn{Column: clause.Column{Name: o.Column}, Desc: o.Desc})
	}
	return tx
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrStorageUnavailable),
		errors.Is(err, repository.ErrDuplicateKey):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", repository.ErrDuplicateKey, err)
	case unavailable(err):
		return fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	return err
}

func unavailable(err error) bool {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, mysqldriver.ErrInvalidConn) ||
		errors.Is(err, sql.ErrConnDone) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
