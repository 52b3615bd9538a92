package service

import "errors"

var (
	ErrInvalidQuantity    = errors.New("quantity must be at least 1")
	ErrItemNotInCart      = errors.New("no such item in cart")
	ErrTotalUnchanged     = errors.New("total price is same as before")
	ErrTooMuchContention  = errors.New("cart is being modified concurrently, try again")
	ErrInvalidCredentials = errors.New("invalid credentials")
)
