package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderCreatedEvent struct {
	OrderID   uint64          `json:"orderId"`
	OrderCode string          `json:"orderCode"`
	UserID    uint64          `json:"userId"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"itemCount"`
	CreatedAt time.Time       `json:"createdAt"`
}

type OrderStatusChangedEvent struct {
	OrderID       uint64        `json:"orderId"`
	OrderCode     string        `json:"orderCode"`
	OrderStatus   OrderStatus   `json:"orderStatus"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
	ChangedAt     time.Time     `json:"changedAt"`
}

func NewOrderCreatedEvent(o *Order) OrderCreatedEvent {
	return OrderCreatedEvent{
		OrderID:   o.ID,
		OrderCode: o.OrderCode,
		UserID:    o.UserID,
		Total:     o.Total,
		ItemCount: len(o.Items),
		CreatedAt: o.CreatedAt,
	}
}

func NewOrderStatusChangedEvent(o *Order, now time.Time) OrderStatusChangedEvent {
	return OrderStatusChangedEvent{
		OrderID:       o.ID,
		OrderCode:     o.OrderCode,
		OrderStatus:   o.OrderStatus,
		PaymentStatus: o.PaymentStatus,
		ChangedAt:     now,
	}
}
