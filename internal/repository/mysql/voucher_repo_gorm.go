package mysql

import (
	"context"
	"errors"
	"time"

	"shop-service/internal/domain"
	"shop-service/internal/repository"

	"gorm.io/gorm"
)

type voucherRepo struct {
	db *gorm.DB
}

func NewVoucherRepository(db *gorm.DB) repository.VoucherRepository {
	return &voucherRepo{db: db}
}

func (r *voucherRepo) FindByCode(ctx context.Context, code string) (*domain.Voucher, error) {
	var v domain.Voucher
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&v).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &v, nil
}

// Redeem guards used_count the same way stock is guarded: the increment only
// lands while redemptions remain, so two concurrent orders cannot both take
// the last slot.
func (r *voucherRepo) Redeem(ctx context.Context, id uint64) (bool, error) {
	res := r.db.WithContext(ctx).Exec(
		`UPDATE vouchers SET used_count = used_count + 1
		 WHERE id = ? AND used_count < quantity AND status = 'ACTIVE'`,
		id,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *voucherRepo) FindAvailable(ctx context.Context, now time.Time) ([]domain.Voucher, error) {
	var out []domain.Voucher
	err := r.db.WithContext(ctx).
		Where("status = ? AND start_date < ? AND end_date > ? AND used_count < quantity",
			domain.VoucherActive, now, now).
		Order("end_date ASC").
		Find(&out).Error
	return out, err
}
