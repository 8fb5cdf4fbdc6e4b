package http

import "shop-service/internal/services"

type AddCartRequest struct {
	UserID    uint64  `json:"userId" binding:"required"`
	ProductID uint64  `json:"productId" binding:"required"`
	ColorID   *uint64 `json:"colorId"`
	Quantity  int     `json:"quantity" binding:"required,min=1"`
}

// UpdateCartRequest takes a pointer so zero is distinguishable from absent;
// zero (or negative) quantity deletes the line.
type UpdateCartRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

type SyncCartRequest struct {
	UserID uint64              `json:"userId" binding:"required"`
	Items  []services.SyncItem `json:"items"`
}

type CreateOrderRequest struct {
	UserID         uint64 `json:"userId" binding:"required"`
	AddressID      uint64 `json:"addressId" binding:"required"`
	VoucherCode    string `json:"voucherCode"`
	PaymentMethod  string `json:"paymentMethod" binding:"required"`
	DeliveryMethod string `json:"deliveryMethod" binding:"required"`
	Notes          string `json:"notes"`
}

type RepurchaseRequest struct {
	UserID uint64 `json:"userId" binding:"required"`
}
