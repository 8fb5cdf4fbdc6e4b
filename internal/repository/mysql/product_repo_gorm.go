package mysql

import (
	"context"
	"errors"

	"shop-service/internal/domain"
	"shop-service/internal/repository"

	"gorm.io/gorm"
)

type productRepo struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) repository.ProductRepository {
	return &productRepo{db: db}
}

func (r *productRepo) FindByID(ctx context.Context, id uint64) (*domain.Product, error) {
	var p domain.Product
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// DecrementStock is the guard against overselling: the WHERE clause only
// matches while enough stock remains, so concurrent checkouts serialize on
// the row instead of racing the read-modify-write. MySQL applies UPDATE
// assignments left to right against already-updated values, so the status
// CASE reads the decremented quantity and must not subtract again.
func (r *productRepo) DecrementStock(ctx context.Context, id uint64, qty int) (bool, error) {
	res := r.db.WithContext(ctx).Exec(
		`UPDATE products
		 SET quantity = quantity - ?,
		     status = CASE WHEN quantity <= 0 THEN 'OUT_OF_STOCK' ELSE status END
		 WHERE id = ? AND quantity >= ? AND status = 'ACTIVE'`,
		qty, id, qty,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

type colorRepo struct {
	db *gorm.DB
}

func NewColorRepository(db *gorm.DB) repository.ColorRepository {
	return &colorRepo{db: db}
}

func (r *colorRepo) FindByID(ctx context.Context, id uint64) (*domain.Color, error) {
	var c domain.Color
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}
