package mysql

import (
	"context"

	"shop-service/internal/repository"

	"gorm.io/gorm"
)

// NewRepositories binds every repository to the given gorm handle, which may
// be the root connection or a transaction.
func NewRepositories(db *gorm.DB) *repository.Repositories {
	return &repository.Repositories{
		Users:     NewUserRepository(db),
		Addresses: NewAddressRepository(db),
		Products:  NewProductRepository(db),
		Colors:    NewColorRepository(db),
		Carts:     NewCartRepository(db),
		Vouchers:  NewVoucherRepository(db),
		Orders:    NewOrderRepository(db),
	}
}

type txManager struct {
	db *gorm.DB
}

func NewTxManager(db *gorm.DB) repository.TxManager {
	return &txManager{db: db}
}

func (m *txManager) Do(ctx context.Context, fn func(r *repository.Repositories) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}
