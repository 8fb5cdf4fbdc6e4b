package services

import (
	"context"
	"fmt"

	"shop-service/internal/domain"
	"shop-service/internal/repository"
)

var (
	ErrUserNotFound = domain.E(domain.KindNotFound, "user not found")
	ErrCartNotFound = domain.E(domain.KindNotFound, "cart item not found")
)

// SyncItem is one line uploaded from a device-local cart.
type SyncItem struct {
	ProductID uint64  `json:"productId"`
	ColorID   *uint64 `json:"colorId,omitempty"`
	Quantity  int     `json:"quantity"`
}

type CartService struct {
	carts   repository.CartRepository
	catalog *CatalogService
	colors  repository.ColorRepository
	users   repository.UserRepository
}

func NewCartService(carts repository.CartRepository, catalog *CatalogService,
	colors repository.ColorRepository, users repository.UserRepository) *CartService {
	return &CartService{carts: carts, catalog: catalog, colors: colors, users: users}
}

// AddItem merges into the existing (user, product, color) line when one
// exists, otherwise creates a new line. The merged quantity must not exceed
// on-hand stock.
func (s *CartService) AddItem(ctx context.Context, userID, productID uint64, colorID *uint64, qty int) (*domain.CartItem, error) {
	if qty <= 0 {
		return nil, domain.E(domain.KindValidation, "quantity must be positive")
	}

	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.InStock() {
		return nil, domain.E(domain.KindOutOfStock, "product is currently unavailable")
	}
	if qty > product.Quantity {
		return nil, domain.E(domain.KindOutOfStock,
			fmt.Sprintf("insufficient stock: only %d left", product.Quantity))
	}

	var color *domain.Color
	if colorID != nil {
		color, err = s.colors.FindByID(ctx, *colorID)
		if err != nil {
			return nil, err
		}
		if color == nil {
			return nil, domain.E(domain.KindNotFound, "color not found")
		}
	}

	line, err := s.carts.FindLine(ctx, userID, productID, colorID)
	if err != nil {
		return nil, err
	}

	if line != nil {
		merged := line.Quantity + qty
		if merged > product.Quantity {
			return nil, domain.E(domain.KindOutOfStock,
				fmt.Sprintf("cart quantity cannot exceed stock: only %d left", product.Quantity))
		}
		line.Quantity = merged
	} else {
		user, err := s.users.FindByID(ctx, userID)
		if err != nil {
			return nil, err
		}
		if user == nil {
			return nil, ErrUserNotFound
		}
		line = &domain.CartItem{
			UserID:    userID,
			ProductID: productID,
			ColorID:   colorID,
			Quantity:  qty,
		}
	}

	if err := s.carts.Save(ctx, line); err != nil {
		return nil, err
	}
	line.Product = *product
	line.Color = color
	return line, nil
}

// UpdateQuantity sets a new quantity; zero or negative deletes the line
// (documented behavior, not an error).
func (s *CartService) UpdateQuantity(ctx context.Context, cartID uint64, qty int) (*domain.CartItem, error) {
	line, err := s.carts.FindByID(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if line == nil {
		return nil, ErrCartNotFound
	}

	if qty <= 0 {
		if err := s.carts.Delete(ctx, cartID); err != nil {
			return nil, err
		}
		return line, nil
	}

	if qty > line.Product.Quantity {
		return nil, domain.E(domain.KindOutOfStock,
			fmt.Sprintf("insufficient stock: only %d left", line.Product.Quantity))
	}

	line.Quantity = qty
	if err := s.carts.Save(ctx, line); err != nil {
		return nil, err
	}
	return line, nil
}

func (s *CartService) RemoveItem(ctx context.Context, cartID uint64) error {
	return s.carts.Delete(ctx, cartID)
}

func (s *CartService) Clear(ctx context.Context, userID uint64) error {
	return s.carts.DeleteByUser(ctx, userID)
}

// List returns the user's cart, newest lines first.
func (s *CartService) List(ctx context.Context, userID uint64) ([]domain.CartItem, error) {
	return s.carts.FindByUser(ctx, userID)
}

func (s *CartService) Count(ctx context.Context, userID uint64) (int64, error) {
	return s.carts.CountByUser(ctx, userID)
}

// Sync merges a device-local cart into the server cart. Invalid or
// unavailable items are skipped silently; the refreshed cart is returned.
func (s *CartService) Sync(ctx context.Context, userID uint64, items []SyncItem) ([]domain.CartItem, error) {
	for _, item := range items {
		if item.Quantity <= 0 {
			continue
		}
		if _, err := s.AddItem(ctx, userID, item.ProductID, item.ColorID, item.Quantity); err != nil {
			continue
		}
	}
	return s.carts.FindByUser(ctx, userID)
}
