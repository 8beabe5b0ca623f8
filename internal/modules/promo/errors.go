package promo

import "errors"

var (
	ErrInvalidPromoCode = errors.New("invalid promo code")
	ErrPromoAlreadyUsed = errors.New("promo code already used")
)
