package orders

import "errors"

var (
	ErrEmptyCart             = errors.New("cart is empty")
	ErrUnknownShippingMethod = errors.New("unknown shipping method")
	ErrInvalidTransition     = errors.New("invalid checkout step transition")
	ErrSessionNotFound       = errors.New("checkout session not found")
	ErrOrderNumberExhausted  = errors.New("no free order number")
)
