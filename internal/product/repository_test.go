package product

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func productRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "seller_id", "category_id", "name", "description",
		"price", "stock_quantity", "status", "image_url", "created_at", "updated_at",
	})
}

func TestRepository_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		mock.ExpectQuery(`SELECT .* FROM products WHERE id = \$1`).
			WithArgs(int64(10)).
			WillReturnRows(productRows().
				AddRow(10, 100, nil, "Dog Food 5kg", "Dry food", 5000, 12, "active", nil, time.Now(), time.Now()))

		p, err := repo.GetByID(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, "Dog Food 5kg", p.Name)
		assert.True(t, p.IsPurchasable())
	})

	t.Run("NotFound", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		mock.ExpectQuery(`SELECT .* FROM products WHERE id = \$1`).
			WithArgs(int64(404)).
			WillReturnRows(productRows())

		_, err = repo.GetByID(ctx, 404)
		assert.ErrorIs(t, err, ErrProductNotFound)
	})
}

func TestRepository_List_Filters(t *testing.T) {
	ctx := context.Background()

	t.Run("StatusAndSearch", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		status := StatusActive
		search := "dog"
		filter := ListFilter{Status: &status, Search: &search, Limit: 10}

		mock.ExpectQuery(`SELECT .* FROM products WHERE 1=1 AND status = \$1 AND \(name ILIKE \$2 OR description ILIKE \$2\) ORDER BY created_at DESC LIMIT \$3 OFFSET \$4`).
			WithArgs(status, "%dog%", int32(10), int32(0)).
			WillReturnRows(productRows().
				AddRow(10, 100, nil, "Dog Food 5kg", "", 5000, 12, "active", nil, time.Now(), time.Now()))

		products, err := repo.List(ctx, filter)
		require.NoError(t, err)
		assert.Len(t, products, 1)
	})

	t.Run("SellerScoped", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		sellerID := int64(100)
		mock.ExpectQuery(`SELECT .* FROM products WHERE 1=1 AND seller_id = \$1 ORDER BY created_at DESC LIMIT \$2 OFFSET \$3`).
			WithArgs(sellerID, int32(20), int32(0)).
			WillReturnRows(productRows())

		products, err := repo.List(ctx, ListFilter{SellerID: &sellerID})
		assert.NoError(t, err)
		assert.Empty(t, products)
	})

	t.Run("DBError", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		mock.ExpectQuery(`SELECT .* FROM products`).
			WillReturnError(errors.New("db error"))

		_, err = repo.List(ctx, ListFilter{})
		assert.Error(t, err)
	})
}

func TestRepository_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("PatchesOnlyGivenFields", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		price := int64(6000)
		mock.ExpectExec(`UPDATE products SET price = \$1, updated_at = NOW\(\) WHERE id = \$2`).
			WithArgs(price, int64(10)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Update(ctx, 10, UpdateParams{Price: &price}))
	})

	t.Run("NoFields", func(t *testing.T) {
		db, _, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		assert.ErrorIs(t, repo.Update(ctx, 10, UpdateParams{}), ErrNoUpdateFields)
	})

	t.Run("MissingProduct", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		name := "Renamed"
		mock.ExpectExec(`UPDATE products SET name = \$1`).
			WithArgs(name, int64(404)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.Update(ctx, 404, UpdateParams{Name: &name}), ErrProductNotFound)
	})
}

func TestRepository_Count(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewRepository(db)

	status := StatusActive
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM products WHERE 1=1 AND status = \$1`).
		WithArgs(status).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	count, err := repo.Count(context.Background(), ListFilter{Status: &status})
	assert.NoError(t, err)
	assert.Equal(t, int64(7), count)
}
