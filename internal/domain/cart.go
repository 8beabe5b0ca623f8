package domain

import "time"

type AgeGroup string

const (
	AgeGroupAdult  AgeGroup = "adult"
	AgeGroupSenior AgeGroup = "senior"
	AgeGroupYouth  AgeGroup = "youth"
	AgeGroupChild  AgeGroup = "child"
	AgeGroupInfant AgeGroup = "infant"
)

// Accompanied reports whether this age group may only travel together with a
// standalone group (adult/senior/youth) on the same item.
func (g AgeGroup) Accompanied() bool {
	return g == AgeGroupChild || g == AgeGroupInfant
}

// AgeGroupOption is the per-age-group price snapshot taken when the item is
// added; it is never recomputed from the catalog afterwards.
type AgeGroupOption struct {
	Type       AgeGroup `json:"type" validate:"required"`
	Quantity   int      `json:"quantity" validate:"gte=0"`
	Price      float64  `json:"price" validate:"gte=0"`
	TotalPrice float64  `json:"total_price" validate:"gte=0"`
}

type Cart struct {
	ID        int64      `json:"id"`
	UserID    *int64     `json:"user_id,omitempty"`
	GuestID   *string    `json:"guest_id,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	IsBooked  bool       `json:"is_booked"`
	Items     []CartItem `json:"items"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (c *Cart) Owner() Owner {
	if c.UserID != nil {
		return UserOwner(*c.UserID)
	}
	if c.GuestID != nil {
		return GuestOwner(*c.GuestID)
	}
	return Owner{}
}

// SubTotal sums the item totals of the current view.
func (c *Cart) SubTotal() float64 {
	var sum float64
	for _, it := range c.Items {
		sum += it.TotalPrice
	}
	return Round2(sum)
}

type CartItem struct {
	ID              int64            `json:"id"`
	CartID          int64            `json:"cart_id"`
	ProductID       int64            `json:"product_id"`
	VariantID       int64            `json:"variant_id"`
	VariantItemID   int64            `json:"variant_item_id"`
	ProductName     string           `json:"product_name"`
	VariantName     string           `json:"variant_name"`
	StartTime       time.Time        `json:"start_time"`
	AgeGroupOptions []AgeGroupOption `json:"age_group_options"`
	TotalPrice      float64          `json:"total_price"`
	IsExcluded      bool             `json:"is_excluded"`
	IsBooked        bool             `json:"is_booked"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// OptionsTotal recomputes the item total from its option snapshot.
func OptionsTotal(opts []AgeGroupOption) float64 {
	var sum float64
	for _, o := range opts {
		sum += o.TotalPrice
	}
	return Round2(sum)
}

// HasAttendant checks the accompanying-adult rule: any accompanied age group
// with a non-zero quantity requires at least one standalone group with a
// non-zero quantity.
func HasAttendant(opts []AgeGroupOption) bool {
	accompanied := false
	standalone := false
	for _, o := range opts {
		if o.Quantity <= 0 {
			continue
		}
		if o.Type.Accompanied() {
			accompanied = true
		} else {
			standalone = true
		}
	}
	return !accompanied || standalone
}
