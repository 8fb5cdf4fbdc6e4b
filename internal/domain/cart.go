package domain

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CartItem is one (user, product, color) line. At most one line exists per
// tuple; a line without a color is its own variant. The unique index keys on
// ColorKey rather than the nullable ColorID because MySQL admits duplicate
// NULLs in unique indexes, which would let concurrent adds of a colorless
// line slip past the constraint.
type CartItem struct {
	ID        uint64    `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID    uint64    `json:"userId" gorm:"not null;uniqueIndex:idx_cart_line,priority:1"`
	ProductID uint64    `json:"productId" gorm:"not null;uniqueIndex:idx_cart_line,priority:2"`
	ColorID   *uint64   `json:"colorId"`
	ColorKey  uint64    `json:"-" gorm:"not null;default:0;uniqueIndex:idx_cart_line,priority:3"`
	Quantity  int       `json:"quantity" gorm:"not null;default:1"`
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime"`

	Product Product `json:"product" gorm:"foreignKey:ProductID"`
	Color   *Color  `json:"color,omitempty" gorm:"foreignKey:ColorID"`
}

// BeforeSave mirrors ColorID into ColorKey, with zero standing in for "no
// color".
func (c *CartItem) BeforeSave(*gorm.DB) error {
	if c.ColorID != nil {
		c.ColorKey = *c.ColorID
	} else {
		c.ColorKey = 0
	}
	return nil
}

func (c *CartItem) SameVariant(productID uint64, colorID *uint64) bool {
	if c.ProductID != productID {
		return false
	}
	if c.ColorID == nil || colorID == nil {
		return c.ColorID == nil && colorID == nil
	}
	return *c.ColorID == *colorID
}

func (c *CartItem) LineSubtotal() decimal.Decimal {
	return c.Product.FinalPrice().Mul(decimal.NewFromInt(int64(c.Quantity)))
}

// CartSubtotal sums line subtotals at current final prices.
func CartSubtotal(items []CartItem) decimal.Decimal {
	subtotal := decimal.Zero
	for i := range items {
		subtotal = subtotal.Add(items[i].LineSubtotal())
	}
	return subtotal
}
