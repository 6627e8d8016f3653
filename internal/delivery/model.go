package delivery

import (
	"time"

	"pawmart-be/internal/order"
)

type DeliveryStatus string

const (
	StatusAssigned  DeliveryStatus = "assigned"
	StatusPickedUp  DeliveryStatus = "picked_up"
	StatusOnTheWay  DeliveryStatus = "on_the_way"
	StatusDelivered DeliveryStatus = "delivered"
	StatusFailed    DeliveryStatus = "failed"
)

// maxOpenDeliveries is the fixed capacity ceiling: a rider with this
// many undelivered assignments is not considered for auto-assignment.
const maxOpenDeliveries = 5

var validNext = map[DeliveryStatus][]DeliveryStatus{
	StatusAssigned: {StatusPickedUp, StatusOnTheWay, StatusFailed},
	StatusPickedUp: {StatusOnTheWay, StatusFailed},
	StatusOnTheWay: {StatusDelivered, StatusFailed},
}

func CanTransition(from, to DeliveryStatus) bool {
	for _, next := range validNext[from] {
		if next == to {
			return true
		}
	}
	return false
}

// OrderStatus is the synchronization contract: every delivery status
// maps to exactly one order status. A failed delivery reopens the
// order to shipped (with the rider cleared) so it can be reassigned.
func (s DeliveryStatus) OrderStatus() order.Status {
	switch s {
	case StatusAssigned:
		return order.StatusShipped
	case StatusPickedUp:
		return order.StatusPickedUp
	case StatusOnTheWay:
		return order.StatusOnTheWay
	case StatusDelivered:
		return order.StatusDelivered
	case StatusFailed:
		return order.StatusShipped
	}
	return order.StatusShipped
}

// Delivery is the rider-assignment record for a shipped order. An
// order has at most one delivery; creation is rejected if one exists.
type Delivery struct {
	ID            int64
	OrderID       int64
	RiderID       int64
	Status        DeliveryStatus
	DeliveryNotes *string
	AssignedAt    time.Time
	PickedUpAt    *time.Time
	OnTheWayAt    *time.Time
	DeliveredAt   *time.Time

	// joined fields
	CustomerID      int64
	CustomerName    string
	CustomerPhone   string
	SellerID        int64
	TotalAmount     int64
	ShippingAddress string
}

// RiderAvailability is one row of the rider directory, ordered by
// ascending open-delivery count for the greedy least-loaded policy.
type RiderAvailability struct {
	RiderID           int64
	FirstName         string
	LastName          string
	Phone             string
	CurrentDeliveries int
}

func (r *RiderAvailability) IsAvailable() bool {
	return r.CurrentDeliveries < maxOpenDeliveries
}
