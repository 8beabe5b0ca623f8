package domain

import "time"

type DiscountType string

const (
	DiscountFixedPercentage DiscountType = "FIXED_PERCENTAGE"
	DiscountFlatValue       DiscountType = "FLAT_VALUE"
)

type Promo struct {
	ID           int64        `json:"id"`
	Code         string       `json:"code"`
	DiscountType DiscountType `json:"discount_type"`
	Value        float64      `json:"value"`
	MaxUses      int          `json:"max_uses"`
	UsedCount    int          `json:"used_count"`
	ValidFrom    *time.Time   `json:"valid_from,omitempty"`
	ValidTo      *time.Time   `json:"valid_to,omitempty"`
	IsActive     bool         `json:"is_active"`
}

// Discount is computed per checkout attempt and never stored on its own; only
// the resulting amount lands on the order.
type Discount struct {
	Amount float64      `json:"amount"`
	Type   DiscountType `json:"type"`
}
