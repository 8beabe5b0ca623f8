package cart

import (
	"context"
	"time"

	"tripcart/internal/domain"
)

// CartRepository defines the storage operations the cart service needs.
type CartRepository interface {
	GetOpenCart(ctx context.Context, o domain.Owner, now time.Time) (*domain.Cart, error)
	HasUnbookedItem(ctx context.Context, o domain.Owner, variantItemID int64, now time.Time) (bool, error)
	CreateWithItem(ctx context.Context, c *domain.Cart, it *domain.CartItem) error
	AddItem(ctx context.Context, cartID int64, it *domain.CartItem) error
	UpdateItemOptions(ctx context.Context, o domain.Owner, itemID int64, opts []domain.AgeGroupOption, total float64, now time.Time) (int64, error)
	RemoveItem(ctx context.Context, o domain.Owner, itemID int64, now time.Time) (int64, error)
	MarkItemsBooked(ctx context.Context, o domain.Owner, now time.Time) (int64, error)
	PurgeExpiredGuestCarts(ctx context.Context, now time.Time) (int64, error)
}
