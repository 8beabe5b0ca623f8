package order

import "errors"

var (
	ErrNotFound         = errors.New("order or its items not found")
	ErrOrderBusy        = errors.New("order is being advanced by another request")
	ErrDuplicatePayment = errors.New("a payment already exists for this order")
	ErrGateway          = errors.New("gateway call failed")
	ErrInconsistent     = errors.New("order payment state is inconsistent")
)
