package delivery

import "errors"

var (
	ErrDeliveryNotFound  = errors.New("delivery not found")
	ErrAlreadyAssigned   = errors.New("order already has a delivery assigned")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrIllegalTransition = errors.New("illegal delivery status transition")
	ErrNotARider         = errors.New("user is not an active rider")
	ErrNoRiderAvailable  = errors.New("no rider with spare capacity")
)
