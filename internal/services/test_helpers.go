package services

import (
	"time"

	"restaurant-orders/internal/domain"
	"restaurant-orders/internal/images"
)

func CreateMockOrder(id, table string, closed bool, infos ...domain.OrderInfo) *domain.Order {
	if infos == nil {
		infos = []domain.OrderInfo{}
	}
	now := time.Now().UTC()
	return &domain.Order{
		ID:            id,
		Table:         table,
		Closed:        closed,
		OrderInfoList: infos,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func CreateMockOrderInfo(id, orderID string, completed bool, urls ...string) domain.OrderInfo {
	return domain.OrderInfo{
		ID:        id,
		OrderID:   orderID,
		Completed: completed,
		ImageURLs: urls,
	}
}

func CreateSVGInput(svgs ...string) OrderInfoInput {
	return OrderInfoInput{Images: images.Collect(svgs, nil, nil)}
}

const (
	TestOrderID  = "order-1"
	TestTable    = "5"
	TestImageURL = "http://localhost:3001/public/a1b2c3.svg"
	TestSVG      = "<svg/>"
)
