package services

import (
	"time"

	"shop-service/internal/domain"

	"github.com/shopspring/decimal"
)

func NewTestProduct(id uint64, name string, price int64, qty int) *domain.Product {
	return &domain.Product{
		ID:       id,
		Name:     name,
		Slug:     name,
		Price:    decimal.NewFromInt(price),
		Quantity: qty,
		Status:   domain.ProductActive,
	}
}

func NewTestCartLine(id, userID uint64, product *domain.Product, qty int) domain.CartItem {
	return domain.CartItem{
		ID:        id,
		UserID:    userID,
		ProductID: product.ID,
		Quantity:  qty,
		Product:   *product,
	}
}

// NewTestVoucher is valid for an hour around now with the given redemption
// capacity.
func NewTestVoucher(id uint64, code string, dtype domain.DiscountType, value int64, quantity, used int) *domain.Voucher {
	now := time.Now()
	return &domain.Voucher{
		ID:            id,
		Code:          code,
		DiscountType:  dtype,
		DiscountValue: decimal.NewFromInt(value),
		Quantity:      quantity,
		UsedCount:     used,
		StartDate:     now.Add(-time.Hour),
		EndDate:       now.Add(time.Hour),
		Status:        domain.VoucherActive,
	}
}

const (
	TestUserID    = uint64(1)
	TestAddressID = uint64(10)
	TestProductID = uint64(100)
)
