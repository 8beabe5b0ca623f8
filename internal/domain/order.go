package domain

import (
	"errors"
	"time"
)

type OrderStatus string

const (
	OrderInitiated  OrderStatus = "initiated"
	OrderProcessing OrderStatus = "processing"
	OrderPending    OrderStatus = "pending"
	OrderConfirmed  OrderStatus = "confirmed"
	OrderFailed     OrderStatus = "failed"
)

func (s OrderStatus) String() string { return string(s) }

// Terminal success. A failed order is terminal for the current attempt but
// restarts at the booking step on the next advance.
func (s OrderStatus) IsFinal() bool { return s == OrderConfirmed }

var ErrInvalidTransition = errors.New("invalid order status transition")

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderInitiated:  {OrderProcessing},
	OrderFailed:     {OrderProcessing},
	OrderProcessing: {OrderPending},
	OrderPending:    {OrderConfirmed, OrderFailed},
}

func CanTransition(from, to OrderStatus) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type Order struct {
	ID               int64       `json:"id"`
	CartID           int64       `json:"cart_id"`
	UserID           *int64      `json:"user_id,omitempty"`
	GuestID          *string     `json:"guest_id,omitempty"`
	CustomerName     string      `json:"customer_name"`
	CustomerEmail    string      `json:"customer_email"`
	CustomerPhone    string      `json:"customer_phone,omitempty"`
	CouponCode       string      `json:"coupon_code,omitempty"`
	SubTotal         float64     `json:"sub_total"`
	DiscountAmount   float64     `json:"discount_amount"`
	ReferralDiscount float64     `json:"referral_discount"`
	TaxAmount        float64     `json:"tax_amount"`
	GatewayCharges   float64     `json:"gateway_charges"`
	NetTotal         float64     `json:"net_total"`
	GrandTotal       float64     `json:"grand_total"`
	OrderUUID        string      `json:"order_uuid,omitempty"`
	Status           OrderStatus `json:"status"`
	Items            []OrderItem `json:"items"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

func (o *Order) Owner() Owner {
	if o.UserID != nil {
		return UserOwner(*o.UserID)
	}
	if o.GuestID != nil {
		return GuestOwner(*o.GuestID)
	}
	return Owner{}
}

// RecomputeTotals derives net, gateway charge and grand totals from the
// monetary inputs. grandTotal = subTotal - discount - referral + charges + tax.
func (o *Order) RecomputeTotals() {
	o.NetTotal = Round2(o.SubTotal - o.DiscountAmount - o.ReferralDiscount + o.TaxAmount)
	o.GatewayCharges = GatewayCharges(o.NetTotal)
	o.GrandTotal = Round2(o.NetTotal + o.GatewayCharges)
}

type OrderItem struct {
	ID              int64            `json:"id"`
	OrderID         int64            `json:"order_id"`
	CartItemID      int64            `json:"cart_item_id"`
	ProductID       int64            `json:"product_id"`
	VariantID       int64            `json:"variant_id"`
	VariantItemID   int64            `json:"variant_item_id"`
	ProductName     string           `json:"product_name"`
	StartTime       time.Time        `json:"start_time"`
	AgeGroupOptions []AgeGroupOption `json:"age_group_options"`
	TotalPrice      float64          `json:"total_price"`
	BookingID       *string          `json:"booking_id,omitempty"`
	IsBooked        bool             `json:"is_booked"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}
