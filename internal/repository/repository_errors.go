package repository

import "errors"

var (
	ErrCartNotFound        = errors.New("cart not found")
	ErrCartVersionConflict = errors.New("cart was modified concurrently")
	ErrOrderNotFound       = errors.New("order not found")
	ErrOrderCancelled      = errors.New("order is cancelled")
	ErrProductNotFound     = errors.New("product not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrEmailTaken          = errors.New("email already registered")
	ErrCategoryNotFound    = errors.New("category not found")
	ErrReviewNotFound      = errors.New("review not found")
)
