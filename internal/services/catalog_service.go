package services

import (
	"context"
	"fmt"

	"shop-service/internal/domain"
	"shop-service/internal/repository"

	"github.com/shopspring/decimal"
)

var ErrProductNotFound = domain.E(domain.KindNotFound, "product not found")

// CatalogService resolves products to their current price and availability.
// Read only; inventory mutation happens inside the order transaction.
type CatalogService struct {
	products repository.ProductRepository
}

func NewCatalogService(products repository.ProductRepository) *CatalogService {
	return &CatalogService{products: products}
}

func (s *CatalogService) GetProduct(ctx context.Context, productID uint64) (*domain.Product, error) {
	p, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProductNotFound
	}
	return p, nil
}

func (s *CatalogService) GetFinalPrice(ctx context.Context, productID uint64) (decimal.Decimal, error) {
	p, err := s.GetProduct(ctx, productID)
	if err != nil {
		return decimal.Zero, err
	}
	return p.FinalPrice(), nil
}

func (s *CatalogService) CheckAvailability(ctx context.Context, productID uint64, qty int) error {
	p, err := s.GetProduct(ctx, productID)
	if err != nil {
		return err
	}
	if !p.InStock() {
		return domain.E(domain.KindOutOfStock, "product is currently unavailable")
	}
	if qty > p.Quantity {
		return domain.E(domain.KindOutOfStock,
			fmt.Sprintf("insufficient stock: only %d left", p.Quantity))
	}
	return nil
}
