package domain

import "time"

type PaymentStatus string

const (
	PaymentSucceeded PaymentStatus = "succeeded"
	PaymentPending   PaymentStatus = "pending"
	PaymentFailed    PaymentStatus = "failed"
)

// Payment is the locally persisted record of one provider charge. At most one
// exists per order; its presence is the duplicate-charge guard.
type Payment struct {
	ID          int64         `json:"id"`
	OrderID     int64         `json:"order_id"`
	ReferenceID string        `json:"reference_id"`
	Reason      string        `json:"reason"`
	Amount      float64       `json:"amount"`
	Status      PaymentStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
}
