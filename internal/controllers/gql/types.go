package gql

import (
	"time"

	"github.com/graph-gophers/graphql-go"

	"restaurant-orders/internal/domain"
	"restaurant-orders/internal/infra"
)

type orderResolver struct {
	o *domain.Order
}

func (r *orderResolver) ID() graphql.ID { return graphql.ID(r.o.ID) }

func (r *orderResolver) Table() string { return r.o.Table }

func (r *orderResolver) Closed() bool { return r.o.Closed }

func (r *orderResolver) OrderInfoList() []*orderInfoResolver {
	out := make([]*orderInfoResolver, len(r.o.OrderInfoList))
	for i := range r.o.OrderInfoList {
		out[i] = &orderInfoResolver{i: &r.o.OrderInfoList[i]}
	}
	return out
}

func (r *orderResolver) CreatedAt() *graphql.Time { return timeOf(r.o.CreatedAt) }

func (r *orderResolver) UpdatedAt() *graphql.Time { return timeOf(r.o.UpdatedAt) }

type orderInfoResolver struct {
	i *domain.OrderInfo
}

func (r *orderInfoResolver) ID() graphql.ID { return graphql.ID(r.i.ID) }

func (r *orderInfoResolver) AdditionalInfo() *string { return r.i.AdditionalInfo }

func (r *orderInfoResolver) Completed() bool { return r.i.Completed }

func (r *orderInfoResolver) ImageUrls() []string {
	if r.i.ImageURLs == nil {
		return []string{}
	}
	return r.i.ImageURLs
}

func (r *orderInfoResolver) CreatedAt() *graphql.Time { return timeOf(r.i.CreatedAt) }

func (r *orderInfoResolver) UpdatedAt() *graphql.Time { return timeOf(r.i.UpdatedAt) }

type orderPublishedResolver struct {
	p domain.OrderPublished
}

func (r *orderPublishedResolver) Order() *orderResolver { return &orderResolver{o: &r.p.Order} }

func (r *orderPublishedResolver) ChangeType() *string {
	if r.p.ChangeType == nil {
		return nil
	}
	ct := string(*r.p.ChangeType)
	return &ct
}

type productResolver struct {
	p infra.Product
}

func (r *productResolver) Name() string { return r.p.Name }

func (r *productResolver) Price() float64 { return r.p.Price }

func (r *productResolver) Quantity() int32 { return int32(r.p.Quantity) }

func timeOf(t time.Time) *graphql.Time {
	if t.IsZero() {
		return nil
	}
	return &graphql.Time{Time: t}
}
