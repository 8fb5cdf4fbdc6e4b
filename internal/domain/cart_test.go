package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCartSubtotalUsesFinalPrices(t *testing.T) {
	discounted := Product{
		Price:         decimal.NewFromInt(1000),
		DiscountPrice: decimal.NewFromInt(800),
		Quantity:      10,
		Status:        ProductActive,
	}
	fullPrice := Product{
		Price:    decimal.NewFromInt(500),
		Quantity: 10,
		Status:   ProductActive,
	}

	items := []CartItem{
		{Product: discounted, Quantity: 2},
		{Product: fullPrice, Quantity: 3},
	}

	// 2*800 + 3*500
	assert.True(t, CartSubtotal(items).Equal(decimal.NewFromInt(3100)))
	assert.True(t, CartSubtotal(nil).Equal(decimal.Zero))
}

func TestCartItemSameVariant(t *testing.T) {
	red := uint64(7)
	blue := uint64(8)

	plain := CartItem{ProductID: 1}
	assert.True(t, plain.SameVariant(1, nil))
	assert.False(t, plain.SameVariant(1, &red))
	assert.False(t, plain.SameVariant(2, nil))

	colored := CartItem{ProductID: 1, ColorID: &red}
	assert.True(t, colored.SameVariant(1, &red))
	assert.False(t, colored.SameVariant(1, &blue))
	assert.False(t, colored.SameVariant(1, nil))
}

func TestCartItemBeforeSaveDerivesColorKey(t *testing.T) {
	red := uint64(7)

	colored := CartItem{ProductID: 1, ColorID: &red}
	assert.NoError(t, colored.BeforeSave(nil))
	assert.Equal(t, red, colored.ColorKey)

	// clearing the color must reset the key, or two colorless lines could
	// coexist under the unique index
	colored.ColorID = nil
	assert.NoError(t, colored.BeforeSave(nil))
	assert.Equal(t, uint64(0), colored.ColorKey)
}

func TestProductFinalPriceAndStock(t *testing.T) {
	p := Product{Price: decimal.NewFromInt(100), Quantity: 5, Status: ProductActive}
	assert.True(t, p.FinalPrice().Equal(decimal.NewFromInt(100)))
	assert.True(t, p.InStock())

	p.DiscountPrice = decimal.NewFromInt(90)
	assert.True(t, p.FinalPrice().Equal(decimal.NewFromInt(90)))

	p.Quantity = 0
	assert.False(t, p.InStock())

	p.Quantity = 5
	p.Status = ProductOutOfStock
	assert.False(t, p.InStock())
}
