package mysql

import (
	"context"
	"errors"
	"time"

	"shop-service/internal/domain"
	"shop-service/internal/repository"

	"gorm.io/gorm"
)

type orderRepo struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) repository.OrderRepository {
	return &orderRepo{db: db}
}

// Create inserts the order header and its items in one go; gorm cascades the
// Items association.
func (r *orderRepo) Create(ctx context.Context, order *domain.Order) error {
	result := r.db.WithContext(ctx).Create(order)
	if result.Error != nil {
		return result.Error
	}
	if order.ID == 0 {
		return errors.New("failed to assign order ID")
	}
	return nil
}

func (r *orderRepo) Save(ctx context.Context, order *domain.Order) error {
	return r.db.WithContext(ctx).Omit("Items").Save(order).Error
}

func (r *orderRepo) FindByID(ctx context.Context, id uint64) (*domain.Order, error) {
	var o domain.Order
	if err := r.db.WithContext(ctx).Preload("Items").First(&o, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) FindByCode(ctx context.Context, code string) (*domain.Order, error) {
	var o domain.Order
	err := r.db.WithContext(ctx).Preload("Items").Where("order_code = ?", code).First(&o).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) FindByUser(ctx context.Context, userID uint64, page repository.Page) (*repository.OrderPage, error) {
	q := r.db.WithContext(ctx).Model(&domain.Order{}).Where("user_id = ?", userID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, err
	}

	var orders []domain.Order
	err := q.Preload("Items").
		Order("created_at DESC").
		Offset(page.Offset()).Limit(page.Size).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}

	return &repository.OrderPage{Orders: orders, Total: total, Page: page.Number, Size: page.Size}, nil
}

func (r *orderRepo) Search(ctx context.Context, filter repository.OrderSearchFilter, page repository.Page) (*repository.OrderPage, error) {
	q := r.db.WithContext(ctx).Model(&domain.Order{})

	if filter.Keyword != "" {
		kw := "%" + filter.Keyword + "%"
		q = q.Where(
			"order_code LIKE ? OR user_id IN (SELECT id FROM users WHERE email LIKE ?)",
			kw, kw,
		)
	}
	if filter.OrderStatus != nil {
		q = q.Where("order_status = ?", *filter.OrderStatus)
	}
	if filter.PaymentStatus != nil {
		q = q.Where("payment_status = ?", *filter.PaymentStatus)
	}
	if filter.DeliveryMethod != nil {
		q = q.Where("delivery_method = ?", *filter.DeliveryMethod)
	}
	if filter.From != nil {
		q = q.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("created_at <= ?", *filter.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, err
	}

	var orders []domain.Order
	err := q.Preload("Items").
		Order("created_at DESC").
		Offset(page.Offset()).Limit(page.Size).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}

	return &repository.OrderPage{Orders: orders, Total: total, Page: page.Number, Size: page.Size}, nil
}

func (r *orderRepo) CountByStatus(ctx context.Context, status *domain.OrderStatus) (int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.Order{})
	if status != nil {
		q = q.Where("order_status = ?", *status)
	}
	var n int64
	err := q.Count(&n).Error
	return n, err
}

func (r *orderRepo) FindCreatedBetween(ctx context.Context, from, to time.Time) ([]domain.Order, error) {
	var out []domain.Order
	err := r.db.WithContext(ctx).
		Where("created_at BETWEEN ? AND ?", from, to).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}
