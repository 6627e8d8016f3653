package product

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReserveStock(t *testing.T) {
	ctx := context.Background()

	t.Run("DecrementsWhenEnoughStock", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`UPDATE products SET stock_quantity = stock_quantity - \$1, updated_at = NOW\(\) WHERE id = \$2 AND stock_quantity >= \$1`).
			WithArgs(3, int64(10)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, ReserveStock(ctx, db, 10, 3))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("GuardRejectsOverdraw", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`UPDATE products SET stock_quantity = stock_quantity - \$1`).
			WithArgs(99, int64(10)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err = ReserveStock(ctx, db, 10, 99)
		assert.ErrorIs(t, err, ErrInsufficientStock)
	})
}

func TestRestoreStock(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`UPDATE products SET stock_quantity = stock_quantity \+ \$1, updated_at = NOW\(\) WHERE id = \$2`).
		WithArgs(3, int64(10)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, RestoreStock(context.Background(), db, 10, 3))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProduct_IsPurchasable(t *testing.T) {
	cases := []struct {
		name    string
		product Product
		want    bool
	}{
		{"ActiveWithStock", Product{Status: StatusActive, StockQuantity: 5}, true},
		{"ActiveNoStock", Product{Status: StatusActive, StockQuantity: 0}, false},
		{"Inactive", Product{Status: StatusInactive, StockQuantity: 5}, false},
		{"OutOfStockFlag", Product{Status: StatusOutOfStock, StockQuantity: 5}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.product.IsPurchasable())
		})
	}
}
