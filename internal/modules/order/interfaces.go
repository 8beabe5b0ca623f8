package order

import (
	"context"

	"tripcart/internal/domain"
	"tripcart/internal/gateway/headout"
	"tripcart/internal/gateway/payment"
	"tripcart/internal/repository"
)

// OrderRepository defines the storage operations the orchestrator needs.
// Every advancing write carries a status precondition so concurrent advances
// serialize at the storage layer.
type OrderRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	GetOpenByCart(ctx context.Context, o domain.Owner, cartID int64) (*domain.Order, error)
	CreateWithItems(ctx context.Context, o *domain.Order) error
	ReplaceItems(ctx context.Context, o *domain.Order) error
	SetItemBookings(ctx context.Context, orderID int64, bookings []repository.ItemBooking, from []domain.OrderStatus, to domain.OrderStatus) (int64, error)
	RecordPayment(ctx context.Context, orderID int64, p *domain.Payment, from []domain.OrderStatus, to domain.OrderStatus) (int64, error)
	FinalizeStatus(ctx context.Context, orderID int64, from []domain.OrderStatus, to domain.OrderStatus) (int64, error)
}

type PaymentRepository interface {
	GetByOrderID(ctx context.Context, orderID int64) (*domain.Payment, error)
}

// CartReader is the slice of the cart service the orchestrator consumes.
type CartReader interface {
	GetOpenCart(ctx context.Context, o domain.Owner) (*domain.Cart, error)
	MarkItemsBooked(ctx context.Context, o domain.Owner) error
}

type DiscountEngine interface {
	GetDiscount(ctx context.Context, code string, subtotal float64, o domain.Owner) (*domain.Discount, error)
	Consume(ctx context.Context, code string, o domain.Owner) error
}

// BookingGateway wraps the inventory provider.
type BookingGateway interface {
	CreateBooking(ctx context.Context, item domain.OrderItem, info headout.CustomerInfo) (*headout.Booking, error)
	GetBooking(ctx context.Context, id string) (*headout.Booking, error)
	ConfirmBookings(ctx context.Context, bookingIDs []string, partnerReferenceID string) []headout.ConfirmResult
}

// PaymentGateway charges exactly once per invocation; retries are ours.
type PaymentGateway = payment.Charger

// Notifier enqueues the post-confirmation ticket email; fire and forget.
type Notifier interface {
	EnqueueTicketEmail(ctx context.Context, orderID int64, recipient string) error
}
