// Package softdelete hides deleted rows from every read and turns deletes
// into timestamp updates, for models implementing repository.SoftDeletable.
//
// Rewrite rules:
//
//	FindUnique  -> FindFirst,  key AND deleted IS NULL
//	FindFirst   -> deleted IS NULL unless the filter names the column
//	FindMany    -> deleted IS NULL unless the filter names the column
//	Update      -> UpdateMany, key AND deleted IS NULL
//	UpdateMany  -> deleted IS NULL unless the filter names the column
//	Delete      -> Update      setting deleted = now on a live row
//	DeleteMany  -> UpdateMany  setting deleted = now, other Set fields kept
//
// Preloaded soft-deletable associations follow the FindMany rule.
package softdelete

import (
	"context"
	"time"

	"restaurant-orders/internal/repository"
)

type Store struct {
	inner repository.Store
	now   func() time.Time
}

var _ repository.Store = (*Store)(nil)

func New(inner repository.Store) *Store {
	return &Store{inner: inner, now: time.Now}
}

// WithClock replaces the deletion timestamp source.
func (s *Store) WithClock(now func() time.Time) *Store {
	return &Store{inner: s.inner, now: now}
}

func (s *Store) Create(ctx context.Context, value any) error {
	return s.inner.Create(ctx, value)
}

func (s *Store) FindUnique(ctx context.Context, dest any, q repository.Query) error {
	q = withVisiblePreloads(q)
	col, ok := deletedColumn(q.Model)
	if !ok {
		return s.inner.FindUnique(ctx, dest, q)
	}
	q.Where = with(q.Where, col, nil)
	return s.inner.FindFirst(ctx, dest, q)
}

func (s *Store) FindFirst(ctx context.Context, dest any, q repository.Query) error {
	return s.inner.FindFirst(ctx, dest, visible(withVisiblePreloads(q)))
}

func (s *Store) FindMany(ctx context.Context, dest any, q repository.Query) error {
	return s.inner.FindMany(ctx, dest, visible(withVisiblePreloads(q)))
}

func (s *Store) Update(ctx context.Context, q repository.Query) error {
	col, ok := deletedColumn(q.Model)
	if !ok {
		return s.inner.Update(ctx, q)
	}
	q.Where = with(q.Where, col, nil)
	_, err := s.inner.UpdateMany(ctx, q)
	return err
}

func (s *Store) UpdateMany(ctx context.Context, q repository.Query) (int64, error) {
	return s.inner.UpdateMany(ctx, visible(q))
}

func (s *Store) Delete(ctx context.Context, q repository.Query) error {
	col, ok := deletedColumn(q.Model)
	if !ok {
		return s.inner.Delete(ctx, q)
	}
	q = visible(q)
	q.Set = stamp(q.Set, col, s.now())
	return s.inner.Update(ctx, q)
}

func (s *Store) DeleteMany(ctx context.Context, q repository.Query) (int64, error) {
	col, ok := deletedColumn(q.Model)
	if !ok {
		return s.inner.DeleteMany(ctx, q)
	}
	q = visible(q)
	q.Set = stamp(q.Set, col, s.now())
	return s.inner.UpdateMany(ctx, q)
}

func (s *Store) Transaction(ctx context.Context, fn func(tx repository.Store) error) error {
	return s.inner.Transaction(ctx, func(tx repository.Store) error {
		return fn(&Store{inner: tx, now: s.now})
	})
}

func deletedColumn(model any) (string, bool) {
	sd, ok := model.(repository.SoftDeletable)
	if !ok {
		return "", false
	}
	return sd.SoftDeleteColumn(), true
}

// visible hides deleted rows unless the caller filtered on the column.
func visible(q repository.Query) repository.Query {
	col, ok := deletedColumn(q.Model)
	if !ok {
		return q
	}
	if _, explicit := q.Where[col]; explicit {
		return q
	}
	q.Where = with(q.Where, col, nil)
	return q
}

func withVisiblePreloads(q repository.Query) repository.Query {
	if len(q.Preload) == 0 {
		return q
	}
	preloads := make([]repository.Preload, len(q.Preload))
	for i, p := range q.Preload {
		if col, ok := deletedColumn(p.Model); ok {
			if _, explicit := p.Where[col]; !explicit {
				p.Where = with(p.Where, col, nil)
			}
		}
		preloads[i] = p
	}
	q.Preload = preloads
	return q
}

func with(w repository.Where, col string, v any) repository.Where {
	out := make(repository.Where, len(w)+1)
	for k, val := range w {
		out[k] = val
	}
	out[col] = v
	return out
}

func stamp(set map[string]any, col string, at time.Time) map[string]any {
	out := make(map[string]any, len(set)+1)
	for k, v := range set {
		out[k] = v
	}
	out[col] = at
	return out
}
