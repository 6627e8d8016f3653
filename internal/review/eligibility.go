// Package review exposes the review-eligibility read the review
// collaborator consumes: a buyer may review exactly the products of
// their delivered orders. Review CRUD itself lives outside this
// service.
package review

import (
	"context"
	"database/sql"
	"errors"
)

var ErrNotEligible = errors.New("order is not eligible for review")

type EligibleProduct struct {
	ProductID   int64
	ProductName string
	Quantity    int
}

type Repository interface {
	EligibleProducts(ctx context.Context, userID, orderID int64) ([]*EligibleProduct, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

// EligibleProducts returns the order's products when the order belongs
// to the user and has been delivered; anything else is not eligible.
func (r *repository) EligibleProducts(ctx context.Context, userID, orderID int64) ([]*EligibleProduct, error) {
	var status string
	err := r.db.QueryRowContext(ctx, `
		SELECT status FROM orders WHERE id = $1 AND user_id = $2
	`, orderID, userID).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotEligible
	}
	if err != nil {
		return nil, err
	}
	if status != "delivered" {
		return nil, ErrNotEligible
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT oi.product_id, p.name, oi.quantity
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = $1
		ORDER BY oi.id ASC
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*EligibleProduct
	for rows.Next() {
		var ep EligibleProduct
		if err := rows.Scan(&ep.ProductID, &ep.ProductName, &ep.Quantity); err != nil {
			return nil, err
		}
		products = append(products, &ep)
	}
	return products, rows.Err()
}
