package delivery

import (
	"context"
	"database/sql"
	"errors"

	"pawmart-be/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	Create(ctx context.Context, orderID, riderID int64, notes *string) (*Delivery, error)
	AssignLeastLoaded(ctx context.Context, orderID int64, notes string) (int64, error)
	GetByID(ctx context.Context, deliveryID int64) (*Delivery, error)
	GetByOrderID(ctx context.Context, orderID int64) (*Delivery, error)
	ListForRider(ctx context.Context, riderID int64, status *DeliveryStatus) ([]*Delivery, error)
	UpdateStatus(ctx context.Context, deliveryID int64, from, to DeliveryStatus, notes *string) error
	RidersWithAvailability(ctx context.Context) ([]*RiderAvailability, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

// Create inserts the delivery and moves the order to shipped with the
// rider set, in one transaction. This is the single place order status
// is mutated as a side effect of another aggregate: an order has a
// rider if and only if it has reached shipped without being cancelled
// first.
func (r *repository) Create(ctx context.Context, orderID, riderID int64, notes *string) (*Delivery, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	d, err := createInTx(ctx, tx, orderID, riderID, notes)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return d, nil
}

func createInTx(ctx context.Context, tx *sql.Tx, orderID, riderID int64, notes *string) (*Delivery, error) {
	// An order carries at most one live delivery. A failed one does not
	// count: it stays as history and the order can be reassigned.
	var exists bool
	err := tx.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM deliveries WHERE order_id = $1 AND status != 'failed')`,
		orderID).Scan(&exists)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadyAssigned
	}

	d := &Delivery{
		OrderID:       orderID,
		RiderID:       riderID,
		Status:        StatusAssigned,
		DeliveryNotes: notes,
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO deliveries (order_id, rider_id, status, delivery_notes, assigned_at)
		VALUES ($1, $2, 'assigned', $3, NOW())
		RETURNING id, assigned_at
	`, orderID, riderID, notes).Scan(&d.ID, &d.AssignedAt)
	if err != nil {
		return nil, err
	}

	// The status guard keeps terminal orders terminal: assigning a rider
	// must never resurrect a cancelled or delivered order.
	res, err := tx.ExecContext(ctx, `
		UPDATE orders
		SET rider_id = $1, status = 'shipped', updated_at = NOW()
		WHERE id = $2 AND status NOT IN ('cancelled', 'delivered')
	`, riderID, orderID)
	if err != nil {
		return nil, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrIllegalTransition
	}

	return d, nil
}

// AssignLeastLoaded picks the active rider with the fewest open
// deliveries who is below the capacity ceiling and assigns the order to
// them. The load count and the insert share one transaction, so the
// decision never reads stale load it produced itself.
func (r *repository) AssignLeastLoaded(ctx context.Context, orderID int64, notes string) (int64, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "AssignLeastLoaded"),
		zap.Int64("order_id", orderID),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var riderID int64
	err = tx.QueryRowContext(ctx, `
		SELECT u.id
		FROM users u
		LEFT JOIN deliveries d ON d.rider_id = u.id AND d.status NOT IN ('delivered', 'failed')
		WHERE u.role = 'rider' AND u.status = 'active'
		GROUP BY u.id
		HAVING COUNT(d.id) < $1
		ORDER BY COUNT(d.id) ASC, u.id ASC
		LIMIT 1
	`, maxOpenDeliveries).Scan(&riderID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNoRiderAvailable
	}
	if err != nil {
		return 0, err
	}

	if _, err := createInTx(ctx, tx, orderID, riderID, &notes); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}

	log.Info("rider auto-assigned", zap.Int64("rider_id", riderID))
	return riderID, nil
}

const deliveryColumns = `
	d.id, d.order_id, d.rider_id, d.status, d.delivery_notes,
	d.assigned_at, d.picked_up_at, d.on_the_way_at, d.delivered_at`

func scanDelivery(row interface{ Scan(...any) error }) (*Delivery, error) {
	var d Delivery
	err := row.Scan(
		&d.ID, &d.OrderID, &d.RiderID, &d.Status, &d.DeliveryNotes,
		&d.AssignedAt, &d.PickedUpAt, &d.OnTheWayAt, &d.DeliveredAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *repository) GetByID(ctx context.Context, deliveryID int64) (*Delivery, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT`+deliveryColumns+`,
		       o.user_id, COALESCE(u.first_name || ' ' || u.last_name, ''),
		       COALESCE(u.phone, ''), o.seller_id, o.total_amount, o.shipping_address
		FROM deliveries d
		JOIN orders o ON o.id = d.order_id
		LEFT JOIN users u ON u.id = o.user_id
		WHERE d.id = $1
	`, deliveryID)

	var d Delivery
	err := row.Scan(
		&d.ID, &d.OrderID, &d.RiderID, &d.Status, &d.DeliveryNotes,
		&d.AssignedAt, &d.PickedUpAt, &d.OnTheWayAt, &d.DeliveredAt,
		&d.CustomerID, &d.CustomerName, &d.CustomerPhone,
		&d.SellerID, &d.TotalAmount, &d.ShippingAddress,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDeliveryNotFound
	}
	if err != nil {
		return nil, err
	}

	return &d, nil
}

func (r *repository) GetByOrderID(ctx context.Context, orderID int64) (*Delivery, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT`+deliveryColumns+` FROM deliveries d WHERE d.order_id = $1`, orderID)

	d, err := scanDelivery(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDeliveryNotFound
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (r *repository) ListForRider(ctx context.Context, riderID int64, status *DeliveryStatus) ([]*Delivery, error) {
	query := `
		SELECT` + deliveryColumns + `,
		       o.user_id, COALESCE(u.first_name || ' ' || u.last_name, 'Unknown'),
		       COALESCE(u.phone, ''), o.seller_id, o.total_amount, o.shipping_address
		FROM deliveries d
		JOIN orders o ON o.id = d.order_id
		LEFT JOIN users u ON u.id = o.user_id
		WHERE d.rider_id = $1`
	args := []any{riderID}

	if status != nil {
		query += " AND d.status = $2"
		args = append(args, *status)
	}
	query += " ORDER BY d.assigned_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var deliveries []*Delivery
	for rows.Next() {
		var d Delivery
		if err := rows.Scan(
			&d.ID, &d.OrderID, &d.RiderID, &d.Status, &d.DeliveryNotes,
			&d.AssignedAt, &d.PickedUpAt, &d.OnTheWayAt, &d.DeliveredAt,
			&d.CustomerID, &d.CustomerName, &d.CustomerPhone,
			&d.SellerID, &d.TotalAmount, &d.ShippingAddress,
		); err != nil {
			return nil, err
		}
		deliveries = append(deliveries, &d)
	}
	return deliveries, rows.Err()
}

// deliveryTimestampColumn returns the column stamped when the delivery
// enters the given status, or "" when the status has no timestamp.
func deliveryTimestampColumn(status DeliveryStatus) string {
	switch status {
	case StatusPickedUp:
		return "picked_up_at"
	case StatusOnTheWay:
		return "on_the_way_at"
	case StatusDelivered:
		return "delivered_at"
	}
	return ""
}

// UpdateStatus updates the delivery and its order in lockstep inside
// one transaction, stamping the matching timestamps. The from-status
// guard on the delivery update rejects concurrent changes.
func (r *repository) UpdateStatus(ctx context.Context, deliveryID int64, from, to DeliveryStatus, notes *string) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "UpdateStatus"),
		zap.Int64("delivery_id", deliveryID),
		zap.String("to", string(to)),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	set := `status = $1`
	if col := deliveryTimestampColumn(to); col != "" {
		set += ", " + col + " = NOW()"
	}
	if notes != nil {
		set += ", delivery_notes = $4"
	}

	args := []any{to, deliveryID, from}
	if notes != nil {
		args = append(args, *notes)
	}

	var orderID int64
	err = tx.QueryRowContext(ctx, `
		UPDATE deliveries SET `+set+`
		WHERE id = $2 AND status = $3
		RETURNING order_id
	`, args...).Scan(&orderID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrIllegalTransition
	}
	if err != nil {
		return err
	}

	orderStatus := to.OrderStatus()
	orderSet := `status = $1, updated_at = NOW()`
	switch to {
	case StatusPickedUp:
		orderSet += ", picked_up_at = NOW()"
	case StatusDelivered:
		orderSet += ", delivered_at = NOW()"
	case StatusFailed:
		orderSet += ", rider_id = NULL"
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE orders SET `+orderSet+` WHERE id = $2
	`, orderStatus, orderID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	log.Info("delivery status updated",
		zap.Int64("order_id", orderID),
		zap.String("order_status", string(orderStatus)),
	)

	return nil
}

// RidersWithAvailability lists active riders with their open-delivery
// counts, ascending. Open means any status other than delivered or
// failed; closed deliveries return their capacity to the rider. The
// auto-assignment policy consumes this ordering directly.
func (r *repository) RidersWithAvailability(ctx context.Context) ([]*RiderAvailability, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT u.id, u.first_name, u.last_name, COALESCE(u.phone, ''),
		       COUNT(d.id) AS current_deliveries
		FROM users u
		LEFT JOIN deliveries d ON d.rider_id = u.id AND d.status NOT IN ('delivered', 'failed')
		WHERE u.role = 'rider' AND u.status = 'active'
		GROUP BY u.id, u.first_name, u.last_name, u.phone
		ORDER BY current_deliveries ASC, u.id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var riders []*RiderAvailability
	for rows.Next() {
		var ra RiderAvailability
		if err := rows.Scan(
			&ra.RiderID, &ra.FirstName, &ra.LastName, &ra.Phone,
			&ra.CurrentDeliveries,
		); err != nil {
			return nil, err
		}
		riders = append(riders, &ra)
	}
	return riders, rows.Err()
}
