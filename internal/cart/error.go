package cart

import "errors"

var (
	ErrCartEmpty         = errors.New("cart is empty")
	ErrCartItemNotFound  = errors.New("cart item not found")
	ErrInvalidQuantity   = errors.New("invalid cart quantity")
	ErrProductNotFound   = errors.New("product not found")
	ErrNotPurchasable    = errors.New("product is not purchasable")
	ErrInsufficientStock = errors.New("insufficient stock")
)
