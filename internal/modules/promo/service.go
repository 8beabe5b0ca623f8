package promo

import (
	"context"
	"math"

	"tripcart/internal/domain"
	"tripcart/internal/pkg/clock"
)

type Service struct {
	promos PromoRepository
	clock  clock.Clock
}

func NewService(promos PromoRepository, clk clock.Clock) *Service {
	return &Service{promos: promos, clock: clk}
}

// GetDiscount validates the code for this owner and computes the discount for
// the given subtotal. Nothing is persisted here; usage is marked by Consume
// once the order confirms.
func (s *Service) GetDiscount(ctx context.Context, code string, subtotal float64, o domain.Owner) (*domain.Discount, error) {
	p, err := s.promos.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if p == nil || !p.IsActive {
		return nil, ErrInvalidPromoCode
	}

	now := s.clock.Now()
	if p.ValidFrom != nil && now.Before(*p.ValidFrom) {
		return nil, ErrInvalidPromoCode
	}
	if p.ValidTo != nil && now.After(*p.ValidTo) {
		return nil, ErrInvalidPromoCode
	}
	if p.MaxUses > 0 && p.UsedCount >= p.MaxUses {
		return nil, ErrInvalidPromoCode
	}

	used, err := s.promos.HasUsage(ctx, p.ID, o)
	if err != nil {
		return nil, err
	}
	if used {
		return nil, ErrPromoAlreadyUsed
	}

	return &domain.Discount{
		Amount: discountAmount(p, subtotal),
		Type:   p.DiscountType,
	}, nil
}

// Percentage codes round the discount up to the next cent; flat codes apply
// their raw value.
func discountAmount(p *domain.Promo, subtotal float64) float64 {
	if p.DiscountType == domain.DiscountFixedPercentage {
		return math.Ceil(subtotal*p.Value) / 100
	}
	return p.Value
}

// Consume marks the code used by this owner. Consuming twice for the same
// owner is a no-op, which keeps the confirmation resume path from double
// counting usage.
func (s *Service) Consume(ctx context.Context, code string, o domain.Owner) error {
	p, err := s.promos.GetByCode(ctx, code)
	if err != nil {
		return err
	}
	if p == nil {
		return ErrInvalidPromoCode
	}
	_, err = s.promos.Consume(ctx, p.ID, o, s.clock.Now())
	return err
}
