package repository

import (
	"context"
	"time"

	"shop-service/internal/domain"
)

// Repositories return (nil, nil) when an entity does not exist; callers
// decide whether absence is an error.

type UserRepository interface {
	FindByID(ctx context.Context, id uint64) (*domain.User, error)
}

type AddressRepository interface {
	FindByID(ctx context.Context, id uint64) (*domain.Address, error)
	FindByUser(ctx context.Context, userID uint64) ([]domain.Address, error)
}

type ProductRepository interface {
	FindByID(ctx context.Context, id uint64) (*domain.Product, error)
	// DecrementStock atomically subtracts qty when enough stock remains and
	// flips the product to OUT_OF_STOCK at zero. Returns false when the
	// conditional update matched no row.
	DecrementStock(ctx context.Context, id uint64, qty int) (bool, error)
}

type ColorRepository interface {
	FindByID(ctx context.Context, id uint64) (*domain.Color, error)
}

type CartRepository interface {
	FindByID(ctx context.Context, id uint64) (*domain.CartItem, error)
	FindByUser(ctx context.Context, userID uint64) ([]domain.CartItem, error)
	FindLine(ctx context.Context, userID, productID uint64, colorID *uint64) (*domain.CartItem, error)
	Save(ctx context.Context, item *domain.CartItem) error
	Delete(ctx context.Context, id uint64) error
	DeleteByUser(ctx context.Context, userID uint64) error
	CountByUser(ctx context.Context, userID uint64) (int64, error)
}

type VoucherRepository interface {
	FindByCode(ctx context.Context, code string) (*domain.Voucher, error)
	// Redeem increments used_count only while redemptions remain; returns
	// false when the voucher is already exhausted.
	Redeem(ctx context.Context, id uint64) (bool, error)
	FindAvailable(ctx context.Context, now time.Time) ([]domain.Voucher, error)
}

type Page struct {
	Number int
	Size   int
}

func (p Page) Offset() int {
	if p.Number < 0 {
		return 0
	}
	return p.Number * p.Size
}

type OrderSearchFilter struct {
	Keyword        string
	OrderStatus    *domain.OrderStatus
	PaymentStatus  *domain.PaymentStatus
	DeliveryMethod *domain.DeliveryMethod
	From           *time.Time
	To             *time.Time
}

type OrderPage struct {
	Orders []domain.Order `json:"orders"`
	Total  int64          `json:"total"`
	Page   int            `json:"page"`
	Size   int            `json:"size"`
}

type OrderRepository interface {
	// Create persists the order header together with its items.
	Create(ctx context.Context, order *domain.Order) error
	Save(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, id uint64) (*domain.Order, error)
	FindByCode(ctx context.Context, code string) (*domain.Order, error)
	FindByUser(ctx context.Context, userID uint64, page Page) (*OrderPage, error)
	Search(ctx context.Context, filter OrderSearchFilter, page Page) (*OrderPage, error)
	CountByStatus(ctx context.Context, status *domain.OrderStatus) (int64, error)
	FindCreatedBetween(ctx context.Context, from, to time.Time) ([]domain.Order, error)
}

type Repositories struct {
	Users     UserRepository
	Addresses AddressRepository
	Products  ProductRepository
	Colors    ColorRepository
	Carts     CartRepository
	Vouchers  VoucherRepository
	Orders    OrderRepository
}

// TxManager runs fn against transaction-bound repositories; fn returning an
// error rolls everything back.
type TxManager interface {
	Do(ctx context.Context, fn func(r *Repositories) error) error
}
