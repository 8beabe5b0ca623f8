package promo

import (
	"context"
	"time"

	"tripcart/internal/domain"
)

// PromoRepository defines the storage operations the discount engine needs.
type PromoRepository interface {
	GetByCode(ctx context.Context, code string) (*domain.Promo, error)
	HasUsage(ctx context.Context, promoID int64, o domain.Owner) (bool, error)
	Consume(ctx context.Context, promoID int64, o domain.Owner, now time.Time) (bool, error)
}
