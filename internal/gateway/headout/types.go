package headout

import (
	"time"

	"tripcart/internal/domain"
)

// CustomerInfo is the purchaser identity forwarded to the provider on every
// booking request.
type CustomerInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Slot is one bookable inventory window as the provider reports it.
type Slot struct {
	VariantItemID int64     `json:"id"`
	StartDateTime time.Time `json:"startDateTime"`
	EndDateTime   time.Time `json:"endDateTime"`
	Available     bool      `json:"available"`
	Remaining     int       `json:"remaining"`
	Price         float64   `json:"listingPrice"`
}

// Availability is the answer for one exact requested window.
type Availability struct {
	Available bool   `json:"available"`
	Slot      *Slot  `json:"slot,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

type BookingStatus string

const (
	BookingPending      BookingStatus = "PENDING"
	BookingUncaptured   BookingStatus = "UNCAPTURED"
	BookingCaptured     BookingStatus = "CAPTURED"
	BookingCancelled    BookingStatus = "CANCELLED"
	BookingNotFoundStat BookingStatus = "NOT_FOUND"
)

// Booking is a provider booking mirrored back with the local order-item id it
// was requested for.
type Booking struct {
	ID                 string        `json:"bookingId"`
	Status             BookingStatus `json:"status"`
	PartnerReferenceID string        `json:"partnerReferenceId,omitempty"`
	OrderItemID        int64         `json:"-"`
}

// ConfirmResult is the per-booking outcome of a confirm fan-out. A partial
// failure stays visible here instead of collapsing into one error.
type ConfirmResult struct {
	BookingID string `json:"booking_id"`
	Confirmed bool   `json:"confirmed"`
	Err       string `json:"error,omitempty"`
}

type customerDetail struct {
	Name     string          `json:"name"`
	Email    string          `json:"email"`
	Phone    string          `json:"phone"`
	AgeGroup domain.AgeGroup `json:"type"`
	Primary  bool            `json:"isPrimary"`
}

type createBookingRequest struct {
	VariantItemID    int64            `json:"variantItemId"`
	InventoryCount   int              `json:"count"`
	CustomersDetails []customerDetail `json:"customersDetails"`
}

type bookingEnvelope struct {
	BookingID string `json:"bookingId"`
	Status    string `json:"status"`
}

type availabilityEnvelope struct {
	Items []Slot `json:"items"`
}
