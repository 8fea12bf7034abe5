package gql

import (
	"context"

	"github.com/graph-gophers/graphql-go"

	"restaurant-orders/internal/domain"
	"restaurant-orders/internal/images"
	"restaurant-orders/internal/infra"
	"restaurant-orders/internal/logger"
	"restaurant-orders/internal/services"
)

type OrderService interface {
	CreateOrder(ctx context.Context, table string, in services.OrderInfoInput) (*domain.Order, error)
	UpdateOrder(ctx context.Context, in domain.UpdateOrderInput) (*domain.Order, error)
	AddOrderInfo(ctx context.Context, orderID string, in services.OrderInfoInput) (*domain.Order, error)
	DeleteOrder(ctx context.Context, id string) (*domain.Order, error)
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	ListOrders(ctx context.Context, f domain.OrderFilter) ([]domain.Order, error)
	OrdersChanged(ctx context.Context, ct domain.ChangeType) (<-chan domain.OrderPublished, error)
	PrintOrder(ctx context.Context, products []infra.Product) ([]infra.Product, error)
}

var _ OrderService = (*services.OrderService)(nil)

// Resolver is the root of Query, Mutation and Subscription.
type Resolver struct {
	svc OrderService
	log *logger.Logger
}

func NewResolver(svc OrderService, log *logger.Logger) *Resolver {
	return &Resolver{svc: svc, log: log}
}

type orderInfoInput struct {
	AdditionalInfo  *string
	Completed       *bool
	SvgList         *[]string
	B64list         *[]string
	UploadImageList *[]*Upload
}

// toService merges the input's image lists, vectors first, then base64,
// then the input's uploads followed by the top-level ones.
func (in orderInfoInput) toService(extra *[]*Upload) services.OrderInfoInput {
	return services.OrderInfoInput{
		AdditionalInfo: in.AdditionalInfo,
		Completed:      in.Completed,
		Images:         images.Collect(deref(in.SvgList), deref(in.B64list), uploadsOf(in.UploadImageList, extra)),
	}
}

type createOrderInput struct {
	Table     string
	OrderInfo orderInfoInput
}

type updateOrderInput struct {
	ID     graphql.ID
	Table  *string
	Closed *bool
}

type productInput struct {
	Name     string
	Price    float64
	Quantity int32
}

type newPrintOrderInput struct {
	Products []productInput
}

func (r *Resolver) Orders(ctx context.Context, args struct {
	Table          *string
	Closed         bool
	OrderByCreated *string
	OrderByUpdated *string
}) ([]*orderResolver, error) {
	orders, err := r.svc.ListOrders(ctx, domain.OrderFilter{
		Table:          args.Table,
		Closed:         &args.Closed,
		OrderByCreated: ordering(args.OrderByCreated),
		OrderByUpdated: ordering(args.OrderByUpdated),
	})
	if err != nil {
		return nil, wrapErr(err)
	}
	out := make([]*orderResolver, len(orders))
	for i := range orders {
		out[i] = &orderResolver{o: &orders[i]}
	}
	return out, nil
}

func (r *Resolver) Order(ctx context.Context, args struct{ ID graphql.ID }) (*orderResolver, error) {
	return r.wrap(r.svc.GetOrder(ctx, string(args.ID)))
}

func (r *Resolver) NewPrintOrder(ctx context.Context, args struct{ PrintOrder newPrintOrderInput }) ([]*productResolver, error) {
	products := make([]infra.Product, len(args.PrintOrder.Products))
	for i, p := range args.PrintOrder.Products {
		products[i] = infra.Product{Name: p.Name, Price: p.Price, Quantity: int(p.Quantity)}
	}
	printed, err := r.svc.PrintOrder(ctx, products)
	if err != nil {
		return nil, wrapErr(err)
	}
	out := make([]*productResolver, len(printed))
	for i := range printed {
		out[i] = &productResolver{p: printed[i]}
	}
	return out, nil
}

func (r *Resolver) CreateOrder(ctx context.Context, args struct {
	Input           createOrderInput
	UploadImageList *[]*Upload
}) (*orderResolver, error) {
	return r.wrap(r.svc.CreateOrder(ctx, args.Input.Table, args.Input.OrderInfo.toService(args.UploadImageList)))
}

func (r *Resolver) UpdateOrder(ctx context.Context, args struct{ Input updateOrderInput }) (*orderResolver, error) {
	return r.wrap(r.svc.UpdateOrder(ctx, domain.UpdateOrderInput{
		ID:     string(args.Input.ID),
		Table:  args.Input.Table,
		Closed: args.Input.Closed,
	}))
}

func (r *Resolver) AddOrderInfo(ctx context.Context, args struct {
	ID              graphql.ID
	OrderInfoInput  orderInfoInput
	UploadImageList *[]*Upload
}) (*orderResolver, error) {
	return r.wrap(r.svc.AddOrderInfo(ctx, string(args.ID), args.OrderInfoInput.toService(args.UploadImageList)))
}

func (r *Resolver) DeleteOrder(ctx context.Context, args struct{ ID graphql.ID }) (*orderResolver, error) {
	return r.wrap(r.svc.DeleteOrder(ctx, string(args.ID)))
}

func (r *Resolver) OrdersChanged(ctx context.Context, args struct{ ChangeType string }) (<-chan *orderPublishedResolver, error) {
	ct := domain.ChangeType(args.ChangeType)
	changes, err := r.svc.OrdersChanged(ctx, ct)
	if err != nil {
		return nil, wrapErr(err)
	}

	r.log.Debug("SUBSCRIPTION", "ordersChanged("+string(ct)+") started")
	out := make(chan *orderPublishedResolver)
	go func() {
		defer close(out)
		for msg := range changes {
			select {
			case out <- &orderPublishedResolver{p: msg}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func (r *Resolver) wrap(o *domain.Order, err error) (*orderResolver, error) {
	if err != nil {
		return nil, wrapErr(err)
	}
	return &orderResolver{o: o}, nil
}

func ordering(s *string) *domain.Ordering {
	if s == nil {
		return nil
	}
	o := domain.Ordering(*s)
	return &o
}

func deref(l *[]string) []string {
	if l == nil {
		return nil
	}
	return *l
}
