package mysql

import (
	"context"
	"errors"

	"shop-service/internal/domain"
	"shop-service/internal/repository"

	"gorm.io/gorm"
)

type cartRepo struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) repository.CartRepository {
	return &cartRepo{db: db}
}

func (r *cartRepo) FindByID(ctx context.Context, id uint64) (*domain.CartItem, error) {
	var item domain.CartItem
	err := r.db.WithContext(ctx).
		Preload("Product").Preload("Color").
		First(&item, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *cartRepo) FindByUser(ctx context.Context, userID uint64) ([]domain.CartItem, error) {
	var out []domain.CartItem
	err := r.db.WithContext(ctx).
		Preload("Product").Preload("Color").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

func (r *cartRepo) FindLine(ctx context.Context, userID, productID uint64, colorID *uint64) (*domain.CartItem, error) {
	q := r.db.WithContext(ctx).
		Preload("Product").Preload("Color").
		Where("user_id = ? AND product_id = ?", userID, productID)
	if colorID != nil {
		q = q.Where("color_id = ?", *colorID)
	} else {
		q = q.Where("color_id IS NULL")
	}

	var item domain.CartItem
	if err := q.First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *cartRepo) Save(ctx context.Context, item *domain.CartItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *cartRepo) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Delete(&domain.CartItem{}, id).Error
}

func (r *cartRepo) DeleteByUser(ctx context.Context, userID uint64) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&domain.CartItem{}).Error
}

func (r *cartRepo) CountByUser(ctx context.Context, userID uint64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&domain.CartItem{}).
		Where("user_id = ?", userID).
		Count(&n).Error
	return n, err
}
