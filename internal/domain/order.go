package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPending    OrderStatus = "PENDING"
	OrderConfirmed  OrderStatus = "CONFIRMED"
	OrderProcessing OrderStatus = "PROCESSING"
	OrderShipping   OrderStatus = "SHIPPING"
	OrderDelivered  OrderStatus = "DELIVERED"
	OrderCancelled  OrderStatus = "CANCELLED"
	OrderReturned   OrderStatus = "RETURNED"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "PENDING"
	PaymentPaid     PaymentStatus = "PAID"
	PaymentFailed   PaymentStatus = "FAILED"
	PaymentRefunded PaymentStatus = "REFUNDED"
)

type DeliveryMethod string

const (
	DeliveryStandard DeliveryMethod = "STANDARD"
	DeliveryFast     DeliveryMethod = "FAST"
)

// orderTransitions is the allowed forward graph. CANCELLED and RETURNED are
// alternate terminals; DELIVERED may still become RETURNED.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:    {OrderConfirmed, OrderCancelled},
	OrderConfirmed:  {OrderProcessing, OrderCancelled},
	OrderProcessing: {OrderShipping, OrderCancelled},
	OrderShipping:   {OrderDelivered, OrderReturned},
	OrderDelivered:  {OrderReturned},
	OrderCancelled:  {},
	OrderReturned:   {},
}

var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentPending:  {PaymentPaid, PaymentFailed},
	PaymentPaid:     {PaymentRefunded},
	PaymentFailed:   {PaymentPending},
	PaymentRefunded: {},
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, t := range orderTransitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	for _, t := range paymentTransitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch v := OrderStatus(strings.ToUpper(s)); v {
	case OrderPending, OrderConfirmed, OrderProcessing, OrderShipping,
		OrderDelivered, OrderCancelled, OrderReturned:
		return v, true
	}
	return "", false
}

func ParsePaymentStatus(s string) (PaymentStatus, bool) {
	switch v := PaymentStatus(strings.ToUpper(s)); v {
	case PaymentPending, PaymentPaid, PaymentFailed, PaymentRefunded:
		return v, true
	}
	return "", false
}

func ParseDeliveryMethod(s string) (DeliveryMethod, bool) {
	switch v := DeliveryMethod(strings.ToUpper(s)); v {
	case DeliveryStandard, DeliveryFast:
		return v, true
	}
	return "", false
}

// Order is an immutable purchase snapshot: monetary fields and items never
// change after creation, only the status fields do.
type Order struct {
	ID                 uint64          `json:"id" gorm:"primaryKey;autoIncrement"`
	OrderCode          string          `json:"orderCode" gorm:"not null;uniqueIndex;size:50"`
	UserID             uint64          `json:"userId" gorm:"not null;index"`
	AddressID          uint64          `json:"addressId" gorm:"not null"`
	VoucherID          *uint64         `json:"voucherId,omitempty"`
	Subtotal           decimal.Decimal `json:"subtotal" gorm:"not null;type:decimal(18,2)"`
	Discount           decimal.Decimal `json:"discount" gorm:"not null;type:decimal(18,2)"`
	ShippingFee        decimal.Decimal `json:"shippingFee" gorm:"not null;type:decimal(18,2)"`
	Total              decimal.Decimal `json:"total" gorm:"not null;type:decimal(18,2)"`
	PaymentMethod      string          `json:"paymentMethod" gorm:"not null;size:50"`
	PaymentStatus      PaymentStatus   `json:"paymentStatus" gorm:"not null;size:20;default:'PENDING'"`
	OrderStatus        OrderStatus     `json:"orderStatus" gorm:"not null;size:20;default:'PENDING'"`
	DeliveryMethod     DeliveryMethod  `json:"deliveryMethod" gorm:"not null;size:20;default:'STANDARD'"`
	FastDeliveryStatus string          `json:"fastDeliveryStatus,omitempty" gorm:"size:50"`
	TrackingNumber     string          `json:"trackingNumber,omitempty" gorm:"size:100"`
	Notes              string          `json:"notes,omitempty" gorm:"size:1000"`
	CreatedAt          time.Time       `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt          time.Time       `json:"updatedAt" gorm:"autoUpdateTime"`

	Items []OrderItem `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// OrderItem snapshots name, image, color and unit price at purchase time and
// never follows later product changes.
type OrderItem struct {
	ID           uint64          `json:"id" gorm:"primaryKey;autoIncrement"`
	OrderID      uint64          `json:"orderId" gorm:"not null;index"`
	ProductID    uint64          `json:"productId" gorm:"not null"`
	ColorID      *uint64         `json:"colorId,omitempty"`
	ProductName  string          `json:"productName" gorm:"not null;size:255"`
	ProductImage string          `json:"productImage" gorm:"size:500"`
	ColorName    string          `json:"colorName,omitempty" gorm:"size:100"`
	Price        decimal.Decimal `json:"price" gorm:"not null;type:decimal(18,2)"`
	Quantity     int             `json:"quantity" gorm:"not null"`
	Subtotal     decimal.Decimal `json:"subtotal" gorm:"not null;type:decimal(18,2)"`
}

// SetQuantity resets the quantity and recomputes the line subtotal.
func (i *OrderItem) SetQuantity(qty int) {
	i.Quantity = qty
	i.Subtotal = i.Price.Mul(decimal.NewFromInt(int64(qty)))
}

// NewOrderCode derives a globally unique, time-ordered order code.
func NewOrderCode(now time.Time) string {
	return fmt.Sprintf("OD%d-%s", now.UnixMilli(), uuid.NewString()[:8])
}
