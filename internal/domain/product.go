package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type ProductStatus string

const (
	ProductActive     ProductStatus = "ACTIVE"
	ProductInactive   ProductStatus = "INACTIVE"
	ProductOutOfStock ProductStatus = "OUT_OF_STOCK"
)

type Product struct {
	ID            uint64          `json:"id" gorm:"primaryKey;autoIncrement"`
	Name          string          `json:"name" gorm:"not null;size:255"`
	Slug          string          `json:"slug" gorm:"not null;uniqueIndex;size:255"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price" gorm:"not null;type:decimal(18,2)"`
	DiscountPrice decimal.Decimal `json:"discountPrice" gorm:"type:decimal(18,2)"`
	Quantity      int             `json:"quantity" gorm:"not null;default:0"`
	Image         string          `json:"image" gorm:"size:500"`
	Status        ProductStatus   `json:"status" gorm:"type:enum('ACTIVE','INACTIVE','OUT_OF_STOCK');default:'ACTIVE'"`
	CreatedAt     time.Time       `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt     time.Time       `json:"updatedAt" gorm:"autoUpdateTime"`
}

// FinalPrice is the discount price when one is set, the base price otherwise.
func (p *Product) FinalPrice() decimal.Decimal {
	if p.DiscountPrice.IsPositive() {
		return p.DiscountPrice
	}
	return p.Price
}

func (p *Product) InStock() bool {
	return p.Quantity > 0 && p.Status == ProductActive
}

type Color struct {
	ID   uint64 `json:"id" gorm:"primaryKey;autoIncrement"`
	Name string `json:"name" gorm:"not null;size:100"`
}
