package mysql

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(gormmysql.New(gormmysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	return db, mock
}

// decrementStockSQL pins the exact statement: one subtraction in the quantity
// assignment, and a status CASE that reads the already-decremented quantity.
// MySQL applies UPDATE assignments left to right against updated values, so a
// second `- ?` in the CASE would flip products OUT_OF_STOCK with stock left.
const decrementStockSQL = `UPDATE products\s+` +
	`SET quantity = quantity - \?,\s+` +
	`status = CASE WHEN quantity <= 0 THEN 'OUT_OF_STOCK' ELSE status END\s+` +
	`WHERE id = \? AND quantity >= \? AND status = 'ACTIVE'`

func TestProductRepoDecrementStock(t *testing.T) {
	t.Run("enough stock decrements the row", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(decrementStockSQL).
			WithArgs(2, 100, 2).
			WillReturnResult(sqlmock.NewResult(0, 1))

		ok, err := NewProductRepository(db).DecrementStock(context.Background(), 100, 2)

		assert.NoError(t, err)
		assert.True(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("insufficient stock matches no row", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(decrementStockSQL).
			WithArgs(5, 100, 5).
			WillReturnResult(sqlmock.NewResult(0, 0))

		ok, err := NewProductRepository(db).DecrementStock(context.Background(), 100, 5)

		assert.NoError(t, err)
		assert.False(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("driver error propagates", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(decrementStockSQL).
			WithArgs(1, 100, 1).
			WillReturnError(errors.New("deadlock found"))

		ok, err := NewProductRepository(db).DecrementStock(context.Background(), 100, 1)

		assert.Error(t, err)
		assert.False(t, ok)
	})
}

func TestVoucherRepoRedeem(t *testing.T) {
	redeemSQL := `UPDATE vouchers SET used_count = used_count \+ 1\s+` +
		`WHERE id = \? AND used_count < quantity AND status = 'ACTIVE'`

	t.Run("slot remaining increments used count", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(redeemSQL).
			WithArgs(5).
			WillReturnResult(sqlmock.NewResult(0, 1))

		ok, err := NewVoucherRepository(db).Redeem(context.Background(), 5)

		assert.NoError(t, err)
		assert.True(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("exhausted voucher matches no row", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(redeemSQL).
			WithArgs(5).
			WillReturnResult(sqlmock.NewResult(0, 0))

		ok, err := NewVoucherRepository(db).Redeem(context.Background(), 5)

		assert.NoError(t, err)
		assert.False(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
