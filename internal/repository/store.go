package repository

import (
	"context"
	"errors"
)

var ErrDuplicateKey = errors.New("duplicate key")

// Where maps column names to values. A nil value matches NULL and NotNull
// matches any non-NULL value.
type Where map[string]any

type notNull struct{}

var NotNull any = notNull{}

func IsNotNull(v any) bool {
	_, ok := v.(notNull)
	return ok
}

type Sort struct {
	Column string
	Desc   bool
}

// Preload eager-loads an association of the queried model.
type Preload struct {
	Field   string
	Model   any
	Where   Where
	OrderBy []Sort
}

// Query addresses rows of Model. Set is the write payload for updates.
type Query struct {
	Model   any
	Where   Where
	OrderBy []Sort
	Preload []Preload
	Set     map[string]any
}

// SoftDeletable models are hidden by stamping a column instead of being
// removed.
type SoftDeletable interface {
	SoftDeleteColumn() string
}

// Store is the narrow record-storage port the order aggregate is written
// against. FindUnique, FindFirst and Update return domain.ErrNotFound when
// nothing matches.
type Store interface {
	Create(ctx context.Context, value any) error
	FindUnique(ctx context.Context, dest any, q Query) error
	FindFirst(ctx context.Context, dest any, q Query) error
	FindMany(ctx context.Context, dest any, q Query) error
	Update(ctx context.Context, q Query) error
	UpdateMany(ctx context.Context, q Query) (int64, error)
	Delete(ctx context.Context, q Query) error
	DeleteMany(ctx context.Context, q Query) (int64, error)
	Transaction(ctx context.Context, fn func(tx Store) error) error
}
