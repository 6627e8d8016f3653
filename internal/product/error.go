package product

import "errors"

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrUnauthorized      = errors.New("product belongs to another seller")
	ErrNoUpdateFields    = errors.New("no fields to update")
)
