package gql

import (
	"restaurant-orders/internal/domain"
)

// kindError exposes the error taxonomy as extensions.kind.
type kindError struct {
	err error
}

func (e kindError) Error() string { return e.err.Error() }

func (e kindError) Unwrap() error { return e.err }

func (e kindError) Extensions() map[string]interface{} {
	return map[string]interface{}{"kind": string(domain.KindOf(e.err))}
}

func wrapErr(err error) error {
	if err == nil {
		return nil
	}
	return kindError{err: err}
}
