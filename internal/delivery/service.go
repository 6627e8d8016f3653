package delivery

import (
	"context"
	"errors"
	"fmt"

	"pawmart-be/internal/metrics"
	"pawmart-be/internal/notification"
	"pawmart-be/internal/order"
	"pawmart-be/internal/user"
)

// OrderReader is the slice of the order store the assignment service
// needs; order.Repository satisfies it.
type OrderReader interface {
	GetByID(ctx context.Context, orderID int64) (*order.Order, error)
}

// UserReader resolves the rider account for manual assignment checks.
type UserReader interface {
	GetByID(ctx context.Context, id int64) (*user.User, error)
}

type Service interface {
	Assign(ctx context.Context, actor user.Actor, orderID, riderID int64, notes *string) (*Delivery, error)
	AutoAssign(ctx context.Context, orderID int64) (int64, bool, error)
	GetByID(ctx context.Context, actor user.Actor, deliveryID int64) (*Delivery, error)
	ListForRider(ctx context.Context, riderID int64, status *DeliveryStatus) ([]*Delivery, error)
	UpdateStatus(ctx context.Context, actor user.Actor, deliveryID int64, target DeliveryStatus, notes *string) (*Delivery, error)
	RidersWithAvailability(ctx context.Context) ([]*RiderAvailability, error)
}

type service struct {
	repo     Repository
	orders   OrderReader
	users    UserReader
	notifier notification.Notifier
}

func NewService(repo Repository, orders OrderReader, users UserReader, notifier notification.Notifier) Service {
	return &service{repo: repo, orders: orders, users: users, notifier: notifier}
}

// Assign creates a manual rider assignment. Sellers may only assign
// their own orders; the target must be an active rider; an order with
// an existing delivery is rejected.
func (s *service) Assign(ctx context.Context, actor user.Actor, orderID, riderID int64, notes *string) (*Delivery, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if actor.Role != user.RoleAdmin && o.SellerID != actor.ID {
		return nil, ErrUnauthorized
	}

	rider, err := s.users.GetByID(ctx, riderID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, ErrNotARider
		}
		return nil, err
	}
	if rider.Role != user.RoleRider || !rider.CanAct() {
		return nil, ErrNotARider
	}

	d, err := s.repo.Create(ctx, orderID, riderID, notes)
	if err != nil {
		metrics.RecordAssignment("manual", false)
		return nil, err
	}
	metrics.RecordAssignment("manual", true)

	s.notifier.Notify(ctx, riderID, notification.TypeDelivery,
		"New delivery assigned",
		fmt.Sprintf("You have been assigned order #%d", orderID),
		d.ID)
	s.notifier.Notify(ctx, o.UserID, notification.TypeOrder,
		"Order shipped",
		fmt.Sprintf("Order #%d has been shipped", orderID),
		orderID)

	return d, nil
}

// AutoAssign implements order.RiderAssigner: greedy least-loaded rider
// below the capacity ceiling, decided and persisted in one
// transaction. (0, false, nil) means no rider had spare capacity.
func (s *service) AutoAssign(ctx context.Context, orderID int64) (int64, bool, error) {
	riderID, err := s.repo.AssignLeastLoaded(ctx, orderID, "Auto-assigned on ship")
	if errors.Is(err, ErrNoRiderAvailable) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}

	s.notifier.Notify(ctx, riderID, notification.TypeDelivery,
		"New delivery assigned",
		fmt.Sprintf("You have been assigned order #%d", orderID),
		orderID)

	return riderID, true, nil
}

func (s *service) GetByID(ctx context.Context, actor user.Actor, deliveryID int64) (*Delivery, error) {
	d, err := s.repo.GetByID(ctx, deliveryID)
	if err != nil {
		return nil, err
	}

	if actor.Role == user.RoleRider && d.RiderID != actor.ID {
		return nil, ErrUnauthorized
	}

	return d, nil
}

func (s *service) ListForRider(ctx context.Context, riderID int64, status *DeliveryStatus) ([]*Delivery, error) {
	return s.repo.ListForRider(ctx, riderID, status)
}

// UpdateStatus moves a delivery through its lifecycle and keeps the
// order in lockstep. Only the assigned rider may report progress.
func (s *service) UpdateStatus(ctx context.Context, actor user.Actor, deliveryID int64, target DeliveryStatus, notes *string) (*Delivery, error) {
	d, err := s.repo.GetByID(ctx, deliveryID)
	if err != nil {
		return nil, err
	}

	if actor.Role != user.RoleAdmin && d.RiderID != actor.ID {
		return nil, ErrUnauthorized
	}

	if !CanTransition(d.Status, target) {
		return nil, fmt.Errorf("cannot move delivery from %q to %q: %w",
			d.Status, target, ErrIllegalTransition)
	}

	if err := s.repo.UpdateStatus(ctx, deliveryID, d.Status, target, notes); err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, d.CustomerID, notification.TypeDelivery,
		"Delivery update",
		fmt.Sprintf("Your order #%d delivery is now %s", d.OrderID, target),
		d.OrderID)

	return s.repo.GetByID(ctx, deliveryID)
}

func (s *service) RidersWithAvailability(ctx context.Context) ([]*RiderAvailability, error) {
	return s.repo.RidersWithAvailability(ctx)
}
