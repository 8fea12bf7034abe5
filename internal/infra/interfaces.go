package infra

import "context"

type PrintClientInterface interface {
	NewOrder(ctx context.Context, products []Product) error
}

var _ PrintClientInterface = (*PrintClient)(nil)
