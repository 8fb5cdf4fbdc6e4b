package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type DiscountType string

const (
	DiscountPercentage DiscountType = "PERCENTAGE"
	DiscountFixed      DiscountType = "FIXED"
)

type VoucherStatus string

const (
	VoucherActive   VoucherStatus = "ACTIVE"
	VoucherInactive VoucherStatus = "INACTIVE"
	VoucherExpired  VoucherStatus = "EXPIRED"
)

// Voucher grants a discount while it is inside its validity window and still
// has redemptions left. MinOrderAmount and MaxDiscountAmount are optional;
// zero means no constraint.
type Voucher struct {
	ID                uint64          `json:"id" gorm:"primaryKey;autoIncrement"`
	Code              string          `json:"code" gorm:"not null;uniqueIndex;size:50"`
	Description       string          `json:"description" gorm:"size:500"`
	DiscountType      DiscountType    `json:"discountType" gorm:"not null;type:enum('PERCENTAGE','FIXED')"`
	DiscountValue     decimal.Decimal `json:"discountValue" gorm:"not null;type:decimal(18,2)"`
	MinOrderAmount    decimal.Decimal `json:"minOrderAmount" gorm:"type:decimal(18,2)"`
	MaxDiscountAmount decimal.Decimal `json:"maxDiscountAmount" gorm:"type:decimal(18,2)"`
	Quantity          int             `json:"quantity" gorm:"not null;default:0"`
	UsedCount         int             `json:"usedCount" gorm:"not null;default:0"`
	StartDate         time.Time       `json:"startDate" gorm:"not null"`
	EndDate           time.Time       `json:"endDate" gorm:"not null"`
	Status            VoucherStatus   `json:"status" gorm:"type:enum('ACTIVE','INACTIVE','EXPIRED');default:'ACTIVE'"`
	CreatedAt         time.Time       `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt         time.Time       `json:"updatedAt" gorm:"autoUpdateTime"`
}

func (v *Voucher) IsValid(now time.Time) bool {
	return v.Status == VoucherActive &&
		now.After(v.StartDate) &&
		now.Before(v.EndDate) &&
		v.UsedCount < v.Quantity
}

// CalculateDiscount returns the discount this voucher yields for the given
// subtotal, or zero when the voucher does not apply. The result never exceeds
// the subtotal.
func (v *Voucher) CalculateDiscount(subtotal decimal.Decimal, now time.Time) decimal.Decimal {
	if !v.IsValid(now) {
		return decimal.Zero
	}
	if v.MinOrderAmount.IsPositive() && subtotal.LessThan(v.MinOrderAmount) {
		return decimal.Zero
	}

	var discount decimal.Decimal
	if v.DiscountType == DiscountPercentage {
		discount = subtotal.Mul(v.DiscountValue).Div(decimal.NewFromInt(100))
		if v.MaxDiscountAmount.IsPositive() && discount.GreaterThan(v.MaxDiscountAmount) {
			discount = v.MaxDiscountAmount
		}
	} else {
		discount = v.DiscountValue
	}

	if discount.GreaterThan(subtotal) {
		return subtotal
	}
	return discount
}
