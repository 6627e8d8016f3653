package cart

import (
	"context"
	"database/sql"
	"errors"

	"pawmart-be/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	GetUserCart(ctx context.Context, userID int64) ([]*CartLine, error)
	GetItem(ctx context.Context, userID, productID int64) (*CartLine, error)
	CreateItem(ctx context.Context, params AddItemParams, priceAtAdd int64) (*CartLine, error)
	UpdateQuantity(ctx context.Context, userID, productID int64, quantity int) error
	RemoveItem(ctx context.Context, userID, productID int64) error
	Clear(ctx context.Context, userID int64) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

// GetUserCart returns every line of the user's cart with seller and
// product data joined in, ordered by creation time so the per-seller
// checkout partitioning is deterministic.
func (r *repository) GetUserCart(ctx context.Context, userID int64) ([]*CartLine, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "GetUserCart"),
		zap.Int64("user_id", userID),
	)

	rows, err := r.db.QueryContext(ctx, `
		SELECT
			c.id, c.user_id, c.product_id, c.quantity, c.price_at_add,
			c.created_at, c.updated_at,
			p.seller_id, p.name, p.image_url
		FROM cart c
		JOIN products p ON p.id = c.product_id
		WHERE c.user_id = $1
		ORDER BY c.created_at ASC, c.id ASC
	`, userID)
	if err != nil {
		log.Error("failed to query cart", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var lines []*CartLine
	for rows.Next() {
		var l CartLine
		if err := rows.Scan(
			&l.ID, &l.UserID, &l.ProductID, &l.Quantity, &l.PriceAtAdd,
			&l.CreatedAt, &l.UpdatedAt,
			&l.SellerID, &l.ProductName, &l.ImageURL,
		); err != nil {
			log.Error("failed to scan cart row", zap.Error(err))
			return nil, err
		}
		lines = append(lines, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return lines, nil
}

func (r *repository) GetItem(ctx context.Context, userID, productID int64) (*CartLine, error) {
	var l CartLine
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, product_id, quantity, price_at_add, created_at, updated_at
		FROM cart
		WHERE user_id = $1 AND product_id = $2
	`, userID, productID).Scan(
		&l.ID, &l.UserID, &l.ProductID, &l.Quantity, &l.PriceAtAdd,
		&l.CreatedAt, &l.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &l, nil
}

func (r *repository) CreateItem(ctx context.Context, params AddItemParams, priceAtAdd int64) (*CartLine, error) {
	var l CartLine
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO cart (user_id, product_id, quantity, price_at_add)
		VALUES ($1, $2, $3, $4)
		RETURNING id, user_id, product_id, quantity, price_at_add, created_at, updated_at
	`, params.UserID, params.ProductID, params.Quantity, priceAtAdd).Scan(
		&l.ID, &l.UserID, &l.ProductID, &l.Quantity, &l.PriceAtAdd,
		&l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &l, nil
}

func (r *repository) UpdateQuantity(ctx context.Context, userID, productID int64, quantity int) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE cart
		SET quantity = $1, updated_at = NOW()
		WHERE user_id = $2 AND product_id = $3
	`, quantity, userID, productID)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrCartItemNotFound
	}

	return nil
}

func (r *repository) RemoveItem(ctx context.Context, userID, productID int64) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM cart
		WHERE user_id = $1 AND product_id = $2
	`, userID, productID)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrCartItemNotFound
	}

	return nil
}

func (r *repository) Clear(ctx context.Context, userID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM cart WHERE user_id = $1`, userID)
	return err
}

// ClearTx deletes a user's cart inside an enclosing transaction. The
// checkout transaction calls this after its orders are persisted, so a
// rollback never loses cart lines.
func ClearTx(ctx context.Context, tx *sql.Tx, userID int64) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM cart WHERE user_id = $1`, userID)
	return err
}
