package order

import "pawmart-be/internal/user"

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusPreparing Status = "preparing"
	StatusShipped   Status = "shipped"
	StatusPickedUp  Status = "picked_up"
	StatusOnTheWay  Status = "on_the_way"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// validNext is the role-gated transition table. Riders never mutate an
// order directly: their stage changes (shipped → picked_up → on_the_way
// → delivered) flow through the delivery service, which syncs the order
// as part of the same transaction. Keeping riders out of this table
// leaves exactly one mutation path per status pair.
var validNext = map[user.Role]map[Status][]Status{
	user.RoleCustomer: {
		StatusPending:   {StatusCancelled},
		StatusConfirmed: {StatusCancelled},
		StatusOnTheWay:  {StatusDelivered}, // confirm-delivery
	},
	user.RoleSeller: {
		StatusPending:   {StatusConfirmed},
		StatusConfirmed: {StatusPreparing},
		StatusPreparing: {StatusShipped},
	},
	user.RoleAdmin: {
		StatusPending:   {StatusConfirmed},
		StatusConfirmed: {StatusPreparing},
		StatusPreparing: {StatusShipped},
	},
}

// CanTransition reports whether the actor's role may move an order from
// one status to another. Anything not listed is an illegal transition.
func CanTransition(role user.Role, from, to Status) bool {
	for _, next := range validNext[role][from] {
		if next == to {
			return true
		}
	}
	return false
}
