package product

import (
	"context"
	"database/sql"
	"fmt"
)

// Execer is satisfied by both *sql.DB and *sql.Tx so the ledger
// statements can join an enclosing checkout or cancel transaction.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// ReserveStock atomically decrements stock_quantity if enough stock is
// available. The WHERE guard makes the check-and-decrement a single
// statement, so concurrent reservations can never drive stock negative.
func ReserveStock(ctx context.Context, ex Execer, productID int64, quantity int) error {
	res, err := ex.ExecContext(ctx, `
		UPDATE products
		SET stock_quantity = stock_quantity - $1, updated_at = NOW()
		WHERE id = $2 AND stock_quantity >= $1
	`, quantity, productID)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("product %d: %w", productID, ErrInsufficientStock)
	}

	return nil
}

// RestoreStock increments stock_quantity unconditionally. Calling it
// twice for the same cancellation double-credits stock; the order
// service guarantees exactly-once invocation via its cancel guard.
func RestoreStock(ctx context.Context, ex Execer, productID int64, quantity int) error {
	_, err := ex.ExecContext(ctx, `
		UPDATE products
		SET stock_quantity = stock_quantity + $1, updated_at = NOW()
		WHERE id = $2
	`, quantity, productID)
	return err
}
