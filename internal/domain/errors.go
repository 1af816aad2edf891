package domain

import "errors"

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrOrderNotFound     = errors.New("order not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrAddressNotFound   = errors.New("address not found")
	ErrReviewNotFound    = errors.New("review not found")
	ErrLineNotFound      = errors.New("cart line not found")
	ErrSizeUnavailable   = errors.New("size not available for product")
	ErrInvalidQuantity   = errors.New("quantity must be greater than zero")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrInvalidProduct    = errors.New("invalid product")
	ErrInvalidStatus     = errors.New("unknown order status")
	ErrInvalidTransition = errors.New("order status can only move forward")
	ErrTerminalStatus    = errors.New("order is in a terminal status")
	ErrInvalidRating     = errors.New("rating must be between 1 and 5")
)
