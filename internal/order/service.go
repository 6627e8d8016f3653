package order

import (
	"context"
	"fmt"

	"pawmart-be/internal/logger"
	"pawmart-be/internal/metrics"
	"pawmart-be/internal/notification"
	"pawmart-be/internal/user"

	"go.uber.org/zap"
)

// RiderAssigner is the delivery-service hook used when an order ships
// without a rider. assigned=false with a nil error means no rider had
// spare capacity; the order still ships, unassigned.
type RiderAssigner interface {
	AutoAssign(ctx context.Context, orderID int64) (riderID int64, assigned bool, err error)
}

const warnNoRiders = "no available riders, assign manually"

type Service interface {
	Checkout(ctx context.Context, userID int64, params CheckoutParams) ([]*Order, error)
	GetDetail(ctx context.Context, actor user.Actor, orderID int64) (*Order, error)
	ListForUser(ctx context.Context, userID int64, filter ListFilter) ([]*Order, error)
	ListForSeller(ctx context.Context, actor user.Actor, filter ListFilter) ([]*Order, error)
	Transition(ctx context.Context, actor user.Actor, orderID int64, target Status) (*TransitionResult, error)
	Cancel(ctx context.Context, actor user.Actor, orderID int64) error
	ConfirmDelivery(ctx context.Context, actor user.Actor, orderID int64) (*Order, error)
	CountByStatus(ctx context.Context, status *Status) (int64, error)
}

type service struct {
	repo     Repository
	assigner RiderAssigner
	notifier notification.Notifier
}

func NewService(repo Repository, assigner RiderAssigner, notifier notification.Notifier) Service {
	return &service{repo: repo, assigner: assigner, notifier: notifier}
}

func (s *service) Checkout(ctx context.Context, userID int64, params CheckoutParams) ([]*Order, error) {
	if params.PaymentMethod == "" {
		params.PaymentMethod = "cod"
	}

	orders, err := s.repo.CreateFromCart(ctx, userID, params)
	if err != nil {
		metrics.RecordCheckout(false)
		return nil, err
	}
	metrics.RecordCheckout(true)

	for _, o := range orders {
		s.notifier.Notify(ctx, o.SellerID, notification.TypeOrder,
			"New order received",
			fmt.Sprintf("Order #%d has been placed", o.ID),
			o.ID)
	}

	logger.FromCtx(ctx).Info("checkout complete",
		zap.Int64("user_id", userID),
		zap.Int("orders", len(orders)),
	)

	return orders, nil
}

// GetDetail enforces the view rule: buyers and sellers see their own
// orders, admins see everything.
func (s *service) GetDetail(ctx context.Context, actor user.Actor, orderID int64) (*Order, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if actor.Role != user.RoleAdmin && o.UserID != actor.ID && o.SellerID != actor.ID {
		if actor.Role != user.RoleRider || o.RiderID == nil || *o.RiderID != actor.ID {
			return nil, ErrUnauthorized
		}
	}

	return o, nil
}

func (s *service) ListForUser(ctx context.Context, userID int64, filter ListFilter) ([]*Order, error) {
	return s.repo.ListForUser(ctx, userID, filter)
}

func (s *service) ListForSeller(ctx context.Context, actor user.Actor, filter ListFilter) ([]*Order, error) {
	return s.repo.ListForSeller(ctx, actor.ID, filter)
}

// Transition moves an order through the fulfillment table. Cancel
// requests are routed to Cancel so the stock-restore path stays single.
func (s *service) Transition(ctx context.Context, actor user.Actor, orderID int64, target Status) (*TransitionResult, error) {
	if target == StatusCancelled {
		if err := s.Cancel(ctx, actor, orderID); err != nil {
			return nil, err
		}
		o, err := s.repo.GetByID(ctx, orderID)
		if err != nil {
			return nil, err
		}
		return &TransitionResult{Order: o}, nil
	}

	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := s.authorize(actor, o); err != nil {
		return nil, err
	}

	if !CanTransition(actor.Role, o.Status, target) {
		metrics.RecordTransition(string(target), false)
		return nil, fmt.Errorf("cannot move order from %q to %q: %w",
			o.Status, target, ErrIllegalTransition)
	}

	result := &TransitionResult{}

	if target == StatusShipped && o.RiderID == nil {
		warning, err := s.ship(ctx, o, result)
		if err != nil {
			metrics.RecordTransition(string(target), false)
			return nil, err
		}
		result.Warning = warning
	} else {
		if err := s.repo.UpdateStatus(ctx, orderID, []Status{o.Status}, target); err != nil {
			metrics.RecordTransition(string(target), false)
			return nil, err
		}
	}

	metrics.RecordTransition(string(target), true)

	s.notifier.Notify(ctx, o.UserID, notification.TypeOrder,
		"Order update",
		fmt.Sprintf("Order #%d is now %s", o.ID, target),
		o.ID)

	updated, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	result.Order = updated
	result.AssignedRiderID = updated.RiderID

	return result, nil
}

// ship transitions to shipped with an auto-assignment attempt. When a
// rider is found the delivery service sets rider_id and status=shipped
// in one transaction; otherwise the order ships unassigned and the
// seller gets a warning (no retry, manual assignment required).
func (s *service) ship(ctx context.Context, o *Order, result *TransitionResult) (string, error) {
	log := logger.FromCtx(ctx).With(zap.Int64("order_id", o.ID))

	if s.assigner != nil {
		riderID, assigned, err := s.assigner.AutoAssign(ctx, o.ID)
		if err != nil {
			log.Warn("auto-assignment failed", zap.Error(err))
		} else if assigned {
			metrics.RecordAssignment("auto", true)
			result.AssignedRiderID = &riderID
			log.Info("rider auto-assigned", zap.Int64("rider_id", riderID))
			return "", nil
		}
		metrics.RecordAssignment("auto", false)
	}

	if err := s.repo.UpdateStatus(ctx, o.ID, []Status{o.Status}, StatusShipped); err != nil {
		log.Error("failed to ship unassigned order", zap.Error(err))
		return "", err
	}
	return warnNoRiders, nil
}

// Cancel is buyer-only and legal from pending or confirmed. Stock is
// restored exactly once: the repository's status guard makes a repeat
// cancel fail before any restore runs.
func (s *service) Cancel(ctx context.Context, actor user.Actor, orderID int64) error {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return err
	}

	if o.UserID != actor.ID {
		return ErrUnauthorized
	}

	if !CanTransition(user.RoleCustomer, o.Status, StatusCancelled) {
		metrics.RecordTransition(string(StatusCancelled), false)
		return fmt.Errorf("cannot cancel order in status %q: %w", o.Status, ErrIllegalTransition)
	}

	if err := s.repo.CancelAndRestore(ctx, orderID); err != nil {
		metrics.RecordTransition(string(StatusCancelled), false)
		return err
	}
	metrics.RecordTransition(string(StatusCancelled), true)

	s.notifier.Notify(ctx, o.SellerID, notification.TypeOrder,
		"Order cancelled",
		fmt.Sprintf("Order #%d was cancelled by the buyer", o.ID),
		o.ID)

	return nil
}

// ConfirmDelivery is buyer-exclusive and legal only from on_the_way;
// it settles the COD payment alongside the delivered status.
func (s *service) ConfirmDelivery(ctx context.Context, actor user.Actor, orderID int64) (*Order, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if o.UserID != actor.ID {
		return nil, ErrUnauthorized
	}

	if o.Status != StatusOnTheWay {
		metrics.RecordTransition(string(StatusDelivered), false)
		return nil, fmt.Errorf("cannot confirm delivery of order in status %q: %w",
			o.Status, ErrIllegalTransition)
	}

	if err := s.repo.ConfirmDelivered(ctx, orderID); err != nil {
		metrics.RecordTransition(string(StatusDelivered), false)
		return nil, err
	}
	metrics.RecordTransition(string(StatusDelivered), true)

	s.notifier.Notify(ctx, o.SellerID, notification.TypeOrder,
		"Order delivered",
		fmt.Sprintf("Order #%d was confirmed delivered by the buyer", o.ID),
		o.ID)

	return s.repo.GetByID(ctx, orderID)
}

func (s *service) CountByStatus(ctx context.Context, status *Status) (int64, error) {
	return s.repo.CountByStatus(ctx, status)
}

func (s *service) authorize(actor user.Actor, o *Order) error {
	switch actor.Role {
	case user.RoleAdmin:
		return nil
	case user.RoleSeller:
		if o.SellerID != actor.ID {
			return ErrUnauthorized
		}
		return nil
	case user.RoleCustomer:
		if o.UserID != actor.ID {
			return ErrUnauthorized
		}
		return nil
	default:
		return ErrUnauthorized
	}
}
