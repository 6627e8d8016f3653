package cart

import "time"

// CartLine is one product row in a user's cart. PriceAtAdd is captured
// when the line is created and is the price the order item inherits at
// checkout; later price edits do not touch it. SellerID is joined from
// the product so checkout can partition lines per seller.
type CartLine struct {
	ID          int64
	UserID      int64
	ProductID   int64
	Quantity    int
	PriceAtAdd  int64
	SellerID    int64
	ProductName string
	ImageURL    *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (l *CartLine) Subtotal() int64 {
	return l.PriceAtAdd * int64(l.Quantity)
}

type AddItemParams struct {
	UserID    int64
	ProductID int64
	Quantity  int
}

type UpdateItemParams struct {
	UserID    int64
	ProductID int64
	Quantity  int
}
