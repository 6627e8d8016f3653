package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"pawmart-be/internal/cart"
	"pawmart-be/internal/logger"
	"pawmart-be/internal/product"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Repository interface {
	CreateFromCart(ctx context.Context, userID int64, params CheckoutParams) ([]*Order, error)
	GetByID(ctx context.Context, orderID int64) (*Order, error)
	ListForUser(ctx context.Context, userID int64, filter ListFilter) ([]*Order, error)
	ListForSeller(ctx context.Context, sellerID int64, filter ListFilter) ([]*Order, error)
	UpdateStatus(ctx context.Context, orderID int64, from []Status, to Status) error
	UpdatePaymentStatus(ctx context.Context, orderID int64, status PaymentStatus) error
	ConfirmDelivered(ctx context.Context, orderID int64) error
	CancelAndRestore(ctx context.Context, orderID int64) error
	CountByStatus(ctx context.Context, status *Status) (int64, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

// CreateFromCart converts a user's cart into one order per seller in a
// single transaction: read lines, insert orders and items, reserve
// stock per line, then clear the cart. Any failure rolls back the
// whole checkout, so no partial orders or partial decrements are ever
// visible.
func (r *repository) CreateFromCart(ctx context.Context, userID int64, params CheckoutParams) ([]*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "CreateFromCart"),
		zap.Int64("user_id", userID),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error("failed to rollback checkout", zap.Error(rbErr))
			}
		}
	}()

	// 1. Read cart lines with seller joined in, stable order.
	rows, err := tx.QueryContext(ctx, `
		SELECT c.product_id, c.quantity, c.price_at_add, p.seller_id
		FROM cart c
		JOIN products p ON p.id = c.product_id
		WHERE c.user_id = $1
		ORDER BY c.created_at ASC, c.id ASC
	`, userID)
	if err != nil {
		return nil, err
	}

	type line struct {
		productID int64
		quantity  int
		price     int64
		sellerID  int64
	}

	var lines []line
	for rows.Next() {
		var l line
		if err := rows.Scan(&l.productID, &l.quantity, &l.price, &l.sellerID); err != nil {
			rows.Close()
			return nil, err
		}
		lines = append(lines, l)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	// 2. Partition by seller, preserving first-seen order.
	var sellerIDs []int64
	bySeller := map[int64][]line{}
	for _, l := range lines {
		if _, seen := bySeller[l.sellerID]; !seen {
			sellerIDs = append(sellerIDs, l.sellerID)
		}
		bySeller[l.sellerID] = append(bySeller[l.sellerID], l)
	}

	// 3. One order per seller: insert order + items, reserve stock.
	var orders []*Order
	for _, sellerID := range sellerIDs {
		partition := bySeller[sellerID]

		var total int64
		for _, l := range partition {
			total += l.price * int64(l.quantity)
		}

		o := &Order{
			UserID:          userID,
			SellerID:        sellerID,
			TotalAmount:     total,
			Status:          StatusPending,
			PaymentMethod:   params.PaymentMethod,
			PaymentStatus:   PaymentPending,
			ShippingAddress: params.ShippingAddress,
			Notes:           params.Notes,
		}

		err := tx.QueryRowContext(ctx, `
			INSERT INTO orders (user_id, seller_id, total_amount, status, payment_method, payment_status, shipping_address, notes)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id, created_at, updated_at
		`, o.UserID, o.SellerID, o.TotalAmount, o.Status, o.PaymentMethod,
			o.PaymentStatus, o.ShippingAddress, o.Notes,
		).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
		if err != nil {
			return nil, err
		}

		for _, l := range partition {
			item := OrderItem{
				OrderID:     o.ID,
				ProductID:   l.productID,
				Quantity:    l.quantity,
				PriceAtTime: l.price,
			}

			err := tx.QueryRowContext(ctx, `
				INSERT INTO order_items (order_id, product_id, quantity, price_at_time)
				VALUES ($1, $2, $3, $4)
				RETURNING id
			`, item.OrderID, item.ProductID, item.Quantity, item.PriceAtTime).Scan(&item.ID)
			if err != nil {
				return nil, err
			}

			if err := product.ReserveStock(ctx, tx, l.productID, l.quantity); err != nil {
				log.Warn("stock reservation failed, rolling back checkout",
					zap.Int64("product_id", l.productID),
					zap.Error(err),
				)
				return nil, err
			}

			o.Items = append(o.Items, item)
		}

		orders = append(orders, o)
	}

	// 4. Clear the cart only after every order is persisted.
	if err := cart.ClearTx(ctx, tx, userID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	log.Info("checkout committed",
		zap.Int("orders", len(orders)),
		zap.Int("lines", len(lines)),
	)

	return orders, nil
}

const orderColumns = `
	o.id, o.user_id, o.seller_id, o.total_amount, o.status,
	o.payment_method, o.payment_status, o.shipping_address, o.notes,
	o.rider_id, o.created_at, o.updated_at, o.picked_up_at, o.delivered_at`

func scanOrder(row interface{ Scan(...any) error }) (*Order, error) {
	var o Order
	err := row.Scan(
		&o.ID, &o.UserID, &o.SellerID, &o.TotalAmount, &o.Status,
		&o.PaymentMethod, &o.PaymentStatus, &o.ShippingAddress, &o.Notes,
		&o.RiderID, &o.CreatedAt, &o.UpdatedAt, &o.PickedUpAt, &o.DeliveredAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *repository) GetByID(ctx context.Context, orderID int64) (*Order, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT`+orderColumns+` FROM orders o WHERE o.id = $1`, orderID)

	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	items, err := r.loadItems(ctx, orderID)
	if err != nil {
		return nil, err
	}
	o.Items = items

	return o, nil
}

func (r *repository) loadItems(ctx context.Context, orderID int64) ([]OrderItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT oi.id, oi.order_id, oi.product_id, oi.quantity, oi.price_at_time,
		       p.name, p.image_url
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = $1
		ORDER BY oi.id ASC
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []OrderItem
	for rows.Next() {
		var item OrderItem
		if err := rows.Scan(
			&item.ID, &item.OrderID, &item.ProductID, &item.Quantity,
			&item.PriceAtTime, &item.ProductName, &item.ImageURL,
		); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *repository) ListForUser(ctx context.Context, userID int64, filter ListFilter) ([]*Order, error) {
	query := `SELECT` + orderColumns + ` FROM orders o WHERE o.user_id = $1`
	args := []any{userID}

	if filter.Status != nil {
		query += fmt.Sprintf(" AND o.status = $%d", len(args)+1)
		args = append(args, *filter.Status)
	}

	query += " ORDER BY o.created_at DESC"
	query, args = appendPagination(query, args, filter)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// ListForSeller joins customer and rider contact fields the seller
// dashboard shows alongside each order.
func (r *repository) ListForSeller(ctx context.Context, sellerID int64, filter ListFilter) ([]*Order, error) {
	query := `
		SELECT` + orderColumns + `,
		       COALESCE(u.first_name || ' ' || u.last_name, ''),
		       COALESCE(u.phone, ''),
		       COALESCE(rd.first_name || ' ' || rd.last_name, '')
		FROM orders o
		LEFT JOIN users u ON u.id = o.user_id
		LEFT JOIN users rd ON rd.id = o.rider_id
		WHERE o.seller_id = $1`
	args := []any{sellerID}

	if filter.Status != nil {
		query += fmt.Sprintf(" AND o.status = $%d", len(args)+1)
		args = append(args, *filter.Status)
	}

	query += " ORDER BY o.created_at DESC"
	query, args = appendPagination(query, args, filter)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(
			&o.ID, &o.UserID, &o.SellerID, &o.TotalAmount, &o.Status,
			&o.PaymentMethod, &o.PaymentStatus, &o.ShippingAddress, &o.Notes,
			&o.RiderID, &o.CreatedAt, &o.UpdatedAt, &o.PickedUpAt, &o.DeliveredAt,
			&o.CustomerName, &o.CustomerPhone, &o.RiderName,
		); err != nil {
			return nil, err
		}
		orders = append(orders, &o)
	}
	return orders, rows.Err()
}

func appendPagination(query string, args []any, filter ListFilter) (string, []any) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	return query, append(args, limit, offset)
}

// UpdateStatus is a guarded setter: the row is touched only while its
// status is still one of the expected from-states, so a concurrent
// transition cannot be silently overwritten.
func (r *repository) UpdateStatus(ctx context.Context, orderID int64, from []Status, to Status) error {
	fromStrs := make([]string, len(from))
	for i, s := range from {
		fromStrs[i] = string(s)
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = ANY($3)
	`, to, orderID, pq.Array(fromStrs))
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrStatusConflict
	}

	return nil
}

func (r *repository) UpdatePaymentStatus(ctx context.Context, orderID int64, status PaymentStatus) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders SET payment_status = $1, updated_at = NOW() WHERE id = $2
	`, status, orderID)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// ConfirmDelivered settles a COD order in one transaction: status,
// delivered_at and payment_status move together, guarded on
// on_the_way so confirm-delivery is legal from that state only. The
// delivery row closes alongside, returning its capacity to the rider.
func (r *repository) ConfirmDelivered(ctx context.Context, orderID int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE orders
		SET status = 'delivered', payment_status = 'paid',
		    delivered_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status = 'on_the_way'
	`, orderID)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrStatusConflict
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE deliveries
		SET status = 'delivered', delivered_at = NOW()
		WHERE order_id = $1 AND status NOT IN ('delivered', 'failed')
	`, orderID); err != nil {
		return err
	}

	return tx.Commit()
}

// CancelAndRestore cancels the order and credits every item's quantity
// back to its product, all in one transaction. The status guard means
// a second cancel affects zero rows and restores nothing, which is what
// makes restore exactly-once.
func (r *repository) CancelAndRestore(ctx context.Context, orderID int64) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "CancelAndRestore"),
		zap.Int64("order_id", orderID),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error("failed to rollback cancel", zap.Error(rbErr))
			}
		}
	}()

	res, err := tx.ExecContext(ctx, `
		UPDATE orders
		SET status = 'cancelled', updated_at = NOW()
		WHERE id = $1 AND status IN ('pending', 'confirmed')
	`, orderID)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		var current Status
		err := tx.QueryRowContext(ctx,
			`SELECT status FROM orders WHERE id = $1`, orderID).Scan(&current)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrOrderNotFound
		}
		if err != nil {
			return err
		}
		return fmt.Errorf("cannot cancel order in status %q: %w", current, ErrIllegalTransition)
	}

	rows, err := tx.QueryContext(ctx,
		`SELECT product_id, quantity FROM order_items WHERE order_id = $1`, orderID)
	if err != nil {
		return err
	}

	type restore struct {
		productID int64
		quantity  int
	}
	var restores []restore
	for rows.Next() {
		var rs restore
		if err := rows.Scan(&rs.productID, &rs.quantity); err != nil {
			rows.Close()
			return err
		}
		restores = append(restores, rs)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, rs := range restores {
		if err := product.RestoreStock(ctx, tx, rs.productID, rs.quantity); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true

	log.Info("order cancelled, stock restored", zap.Int("items", len(restores)))
	return nil
}

func (r *repository) CountByStatus(ctx context.Context, status *Status) (int64, error) {
	query := `SELECT COUNT(*) FROM orders WHERE 1=1`
	args := []any{}
	if status != nil {
		query += " AND status = $1"
		args = append(args, *status)
	}

	var count int64
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&count)
	return count, err
}
