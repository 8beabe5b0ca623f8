package cache

import (
	"context"
	"errors"

	"tripcart/internal/domain"
)

var ErrCacheMiss = errors.New("cache miss")

// CartCache is a read-through cache over the open-cart view, keyed by owner.
type CartCache interface {
	Get(ctx context.Context, ownerKey string) (*domain.Cart, error)
	Set(ctx context.Context, ownerKey string, cart *domain.Cart) error
	Delete(ctx context.Context, ownerKey string) error
}
