package cart

import (
	"context"
	"errors"
	"time"

	"tripcart/internal/cache"
	"tripcart/internal/domain"
	"tripcart/internal/pkg/clock"

	"github.com/jackc/pgx/v5/pgconn"
)

type Service struct {
	carts    CartRepository
	cache    cache.CartCache
	clock    clock.Clock
	guestTTL time.Duration
	loggerf  func(format string, args ...interface{})
}

// NewService wires the cart store. cartCache may be nil to run without the
// read-through cache.
func NewService(carts CartRepository, cartCache cache.CartCache, clk clock.Clock, guestTTL time.Duration, loggerf func(string, ...interface{})) *Service {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Service{
		carts:    carts,
		cache:    cartCache,
		clock:    clk,
		guestTTL: guestTTL,
		loggerf:  loggerf,
	}
}

// GetOpenCart returns the owner's live cart view, or ErrNotFound when no cart
// exists or a guest cart has expired.
func (s *Service) GetOpenCart(ctx context.Context, o domain.Owner) (*domain.Cart, error) {
	if !o.Valid() {
		return nil, domain.ErrIdentity
	}
	now := s.clock.Now()

	if s.cache != nil {
		if c, err := s.cache.Get(ctx, o.Key()); err == nil {
			// a cached guest cart may have crossed its expiry meanwhile
			if c.ExpiresAt != nil && !c.ExpiresAt.After(now) {
				_ = s.cache.Delete(ctx, o.Key())
			} else {
				return c, nil
			}
		}
	}

	c, err := s.carts.GetOpenCart(ctx, o, now)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrNotFound
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, o.Key(), c); err != nil {
			s.loggerf("level=warn msg=cart cache set failed owner=%s err=%v", o.Key(), err)
		}
	}
	return c, nil
}

// AddItem validates the attendant rule and the duplicate-slot constraint,
// creating the cart on first use. Guest carts get the configured TTL.
func (s *Service) AddItem(ctx context.Context, o domain.Owner, req AddItemRequest) (*ItemRef, error) {
	if !o.Valid() {
		return nil, domain.ErrIdentity
	}
	if !domain.HasAttendant(req.AgeGroupOptions) {
		return nil, ErrValidation
	}

	now := s.clock.Now()
	dup, err := s.carts.HasUnbookedItem(ctx, o, req.VariantItemID, now)
	if err != nil {
		return nil, err
	}
	if dup {
		return nil, ErrConflict
	}

	item := &domain.CartItem{
		ProductID:       req.ProductID,
		VariantID:       req.VariantID,
		VariantItemID:   req.VariantItemID,
		ProductName:     req.ProductName,
		VariantName:     req.VariantName,
		StartTime:       req.StartTime,
		AgeGroupOptions: req.AgeGroupOptions,
		TotalPrice:      domain.OptionsTotal(req.AgeGroupOptions),
	}

	existing, err := s.carts.GetOpenCart(ctx, o, now)
	if err != nil {
		return nil, err
	}

	if existing == nil {
		c := &domain.Cart{}
		if o.IsUser() {
			uid := o.UserID()
			c.UserID = &uid
		} else {
			gid := o.GuestID()
			c.GuestID = &gid
			exp := now.Add(s.guestTTL)
			c.ExpiresAt = &exp
		}
		if err := s.carts.CreateWithItem(ctx, c, item); err != nil {
			return nil, mapDuplicateErr(err)
		}
	} else {
		if err := s.carts.AddItem(ctx, existing.ID, item); err != nil {
			return nil, mapDuplicateErr(err)
		}
	}

	s.invalidate(ctx, o)
	return &ItemRef{CartID: item.CartID, ItemID: item.ID}, nil
}

// mapDuplicateErr translates the partial unique index on unbooked
// (cart_id, variant_item_id) into the conflict sentinel. The index backstops
// the pre-check under concurrent adds.
func mapDuplicateErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrConflict
	}
	return err
}

// UpdateItem replaces the option snapshot and recomputes the item total.
func (s *Service) UpdateItem(ctx context.Context, o domain.Owner, itemID int64, opts []domain.AgeGroupOption) error {
	if !o.Valid() {
		return domain.ErrIdentity
	}
	if !domain.HasAttendant(opts) {
		return ErrValidation
	}

	total := domain.OptionsTotal(opts)
	rows, err := s.carts.UpdateItemOptions(ctx, o, itemID, opts, total, s.clock.Now())
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	s.invalidate(ctx, o)
	return nil
}

func (s *Service) RemoveItem(ctx context.Context, o domain.Owner, itemID int64) error {
	if !o.Valid() {
		return domain.ErrIdentity
	}
	rows, err := s.carts.RemoveItem(ctx, o, itemID, s.clock.Now())
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	s.invalidate(ctx, o)
	return nil
}

// MarkItemsBooked books the open cart and its visible items once the owning
// order confirms; the cart row is closed, not deleted. Idempotent.
func (s *Service) MarkItemsBooked(ctx context.Context, o domain.Owner) error {
	if !o.Valid() {
		return domain.ErrIdentity
	}
	if _, err := s.carts.MarkItemsBooked(ctx, o, s.clock.Now()); err != nil {
		return err
	}
	s.invalidate(ctx, o)
	return nil
}

// PurgeExpiredGuestCarts deletes guest carts past expiry; exposed for the
// sweeper and the cleanup binary.
func (s *Service) PurgeExpiredGuestCarts(ctx context.Context) (int64, error) {
	return s.carts.PurgeExpiredGuestCarts(ctx, s.clock.Now())
}

func (s *Service) invalidate(ctx context.Context, o domain.Owner) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, o.Key()); err != nil {
		s.loggerf("level=warn msg=cart cache invalidation failed owner=%s err=%v", o.Key(), err)
	}
}
