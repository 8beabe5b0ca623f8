package cart

import "errors"

var (
	ErrValidation = errors.New("validation error")
	ErrConflict   = errors.New("item already in cart")
	ErrNotFound   = errors.New("cart or item not found")
)
