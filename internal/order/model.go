package order

import "time"

// Order is a single-seller, single-buyer purchase record. A cart with N
// distinct sellers fans out into N orders at checkout. TotalAmount is
// the grouped sum of item subtotals at creation and is never
// recomputed.
type Order struct {
	ID              int64
	UserID          int64
	SellerID        int64
	TotalAmount     int64
	Status          Status
	PaymentMethod   string
	PaymentStatus   PaymentStatus
	ShippingAddress string
	Notes           *string
	RiderID         *int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
	PickedUpAt      *time.Time
	DeliveredAt     *time.Time
	Items           []OrderItem

	// joined display fields for seller listings
	CustomerName  string
	CustomerPhone string
	RiderName     string
}

// OrderItem captures PriceAtTime from the cart snapshot, not a live
// lookup, so historical orders are immune to later price edits.
type OrderItem struct {
	ID          int64
	OrderID     int64
	ProductID   int64
	Quantity    int
	PriceAtTime int64
	ProductName string
	ImageURL    *string
}

func (i *OrderItem) Subtotal() int64 {
	return i.PriceAtTime * int64(i.Quantity)
}

type CheckoutParams struct {
	ShippingAddress string
	PaymentMethod   string
	Notes           *string
}

type ListFilter struct {
	Status *Status
	Limit  int32
	Offset int32
}

// TransitionResult carries the outcome of a status change, including
// the non-fatal warning surfaced when shipping with no available rider.
type TransitionResult struct {
	Order           *Order
	AssignedRiderID *int64
	Warning         string
}
