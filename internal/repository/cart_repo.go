package repository

import (
	"context"
	"encoding/json"
	"time"

	"tripcart/internal/domain"

	"gorm.io/gorm"
)

type CartRepository struct {
	db *gorm.DB
	// postgres compares expiry against the database clock so horizontally
	// scaled instances agree on what is expired; sqlite binds the caller's
	// now, which keeps local runs and tests deterministic.
	dbClock bool
}

func NewCartRepository(db *gorm.DB) *CartRepository {
	return &CartRepository{db: db, dbClock: db.Dialector.Name() == "postgres"}
}

type cartModel struct {
	ID        int64      `gorm:"column:id;primaryKey"`
	UserID    *int64     `gorm:"column:user_id;index"`
	GuestID   *string    `gorm:"column:guest_id;index"`
	ExpiresAt *time.Time `gorm:"column:expires_at"`
	IsBooked  bool       `gorm:"column:is_booked"`
	CreatedAt time.Time  `gorm:"column:created_at"`
	UpdatedAt time.Time  `gorm:"column:updated_at"`
}

func (cartModel) TableName() string { return "carts" }

type cartItemModel struct {
	ID              int64     `gorm:"column:id;primaryKey"`
	CartID          int64     `gorm:"column:cart_id;index"`
	ProductID       int64     `gorm:"column:product_id"`
	VariantID       int64     `gorm:"column:variant_id"`
	VariantItemID   int64     `gorm:"column:variant_item_id"`
	ProductName     string    `gorm:"column:product_name"`
	VariantName     string    `gorm:"column:variant_name"`
	StartTime       time.Time `gorm:"column:start_time"`
	AgeGroupOptions string    `gorm:"column:age_group_options;type:text"`
	TotalPrice      float64   `gorm:"column:total_price"`
	IsExcluded      bool      `gorm:"column:is_excluded"`
	IsBooked        bool      `gorm:"column:is_booked"`
	CreatedAt       time.Time `gorm:"column:created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at"`
}

func (cartItemModel) TableName() string { return "cart_items" }

func toDomainCart(m cartModel, items []cartItemModel) *domain.Cart {
	c := &domain.Cart{
		ID:        m.ID,
		UserID:    m.UserID,
		GuestID:   m.GuestID,
		ExpiresAt: m.ExpiresAt,
		IsBooked:  m.IsBooked,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
	c.Items = make([]domain.CartItem, 0, len(items))
	for _, im := range items {
		c.Items = append(c.Items, *toDomainCartItem(im))
	}
	return c
}

func toDomainCartItem(m cartItemModel) *domain.CartItem {
	var opts []domain.AgeGroupOption
	if m.AgeGroupOptions != "" {
		_ = json.Unmarshal([]byte(m.AgeGroupOptions), &opts)
	}
	return &domain.CartItem{
		ID:              m.ID,
		CartID:          m.CartID,
		ProductID:       m.ProductID,
		VariantID:       m.VariantID,
		VariantItemID:   m.VariantItemID,
		ProductName:     m.ProductName,
		VariantName:     m.VariantName,
		StartTime:       m.StartTime,
		AgeGroupOptions: opts,
		TotalPrice:      m.TotalPrice,
		IsExcluded:      m.IsExcluded,
		IsBooked:        m.IsBooked,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func toCartItemModel(it *domain.CartItem) cartItemModel {
	raw, _ := json.Marshal(it.AgeGroupOptions)
	return cartItemModel{
		ID:              it.ID,
		CartID:          it.CartID,
		ProductID:       it.ProductID,
		VariantID:       it.VariantID,
		VariantItemID:   it.VariantItemID,
		ProductName:     it.ProductName,
		VariantName:     it.VariantName,
		StartTime:       it.StartTime,
		AgeGroupOptions: string(raw),
		TotalPrice:      it.TotalPrice,
		IsExcluded:      it.IsExcluded,
		IsBooked:        it.IsBooked,
	}
}

func ownerScope(o domain.Owner) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		if o.IsGuest() {
			return tx.Where("guest_id = ?", o.GuestID())
		}
		return tx.Where("user_id = ?", o.UserID())
	}
}

func (r *CartRepository) notExpired(now time.Time) (string, []interface{}) {
	if r.dbClock {
		return "expires_at IS NULL OR expires_at > CURRENT_TIMESTAMP", nil
	}
	return "expires_at IS NULL OR expires_at > ?", []interface{}{now}
}

func (r *CartRepository) expiredGuest(now time.Time) (string, []interface{}) {
	if r.dbClock {
		return "guest_id IS NOT NULL AND expires_at IS NOT NULL AND expires_at < CURRENT_TIMESTAMP", nil
	}
	return "guest_id IS NOT NULL AND expires_at IS NOT NULL AND expires_at < ?", []interface{}{now}
}

// openCartQuery scopes to the owner's live cart: unbooked and, for guests, not
// past expiry.
func (r *CartRepository) openCartQuery(ctx context.Context, o domain.Owner, now time.Time) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&cartModel{}).Scopes(ownerScope(o)).Where("is_booked = ?", false)
	if o.IsGuest() {
		cond, args := r.notExpired(now)
		q = q.Where(cond, args...)
	}
	return q
}

// GetOpenCart returns the owner's cart with only its visible items: unbooked,
// not excluded, scheduled in the future. Returns nil when no live cart exists.
func (r *CartRepository) GetOpenCart(ctx context.Context, o domain.Owner, now time.Time) (*domain.Cart, error) {
	if !o.Valid() {
		return nil, domain.ErrIdentity
	}

	var m cartModel
	tx := r.openCartQuery(ctx, o, now).Order("id DESC").Limit(1).Find(&m)
	if tx.Error != nil {
		return nil, tx.Error
	}
	if tx.RowsAffected == 0 {
		return nil, nil
	}

	var items []cartItemModel
	tx = r.db.WithContext(ctx).
		Where("cart_id = ? AND is_booked = ? AND is_excluded = ? AND start_time > ?", m.ID, false, false, now).
		Order("id ASC").
		Find(&items)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainCart(m, items), nil
}

// HasUnbookedItem reports whether the owner's live cart already holds an
// unbooked item for the given inventory slot.
func (r *CartRepository) HasUnbookedItem(ctx context.Context, o domain.Owner, variantItemID int64, now time.Time) (bool, error) {
	if !o.Valid() {
		return false, domain.ErrIdentity
	}

	var cnt int64
	sub := r.openCartQuery(ctx, o, now).Select("id")
	tx := r.db.WithContext(ctx).Model(&cartItemModel{}).
		Where("cart_id IN (?)", sub).
		Where("variant_item_id = ? AND is_booked = ?", variantItemID, false).
		Count(&cnt)
	if tx.Error != nil {
		return false, tx.Error
	}
	return cnt > 0, nil
}

// CreateWithItem creates the cart and its first item in one transaction.
func (r *CartRepository) CreateWithItem(ctx context.Context, c *domain.Cart, it *domain.CartItem) error {
	cm := cartModel{
		UserID:    c.UserID,
		GuestID:   c.GuestID,
		ExpiresAt: c.ExpiresAt,
	}
	im := toCartItemModel(it)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&cm).Error; err != nil {
			return err
		}
		im.CartID = cm.ID
		return tx.Create(&im).Error
	})
	if err != nil {
		return err
	}
	c.ID = cm.ID
	it.ID = im.ID
	it.CartID = cm.ID
	return nil
}

func (r *CartRepository) AddItem(ctx context.Context, cartID int64, it *domain.CartItem) error {
	im := toCartItemModel(it)
	im.CartID = cartID
	if err := r.db.WithContext(ctx).Create(&im).Error; err != nil {
		return err
	}
	it.ID = im.ID
	it.CartID = cartID
	return nil
}

// UpdateItemOptions persists a new option snapshot and total for an item in
// the owner's live cart. Returns rows affected (0 means not found).
func (r *CartRepository) UpdateItemOptions(ctx context.Context, o domain.Owner, itemID int64, opts []domain.AgeGroupOption, total float64, now time.Time) (int64, error) {
	if !o.Valid() {
		return 0, domain.ErrIdentity
	}

	raw, err := json.Marshal(opts)
	if err != nil {
		return 0, err
	}
	sub := r.openCartQuery(ctx, o, now).Select("id")
	tx := r.db.WithContext(ctx).Model(&cartItemModel{}).
		Where("id = ? AND is_booked = ? AND cart_id IN (?)", itemID, false, sub).
		Updates(map[string]interface{}{
			"age_group_options": string(raw),
			"total_price":       total,
			"updated_at":        now,
		})
	return tx.RowsAffected, tx.Error
}

func (r *CartRepository) RemoveItem(ctx context.Context, o domain.Owner, itemID int64, now time.Time) (int64, error) {
	if !o.Valid() {
		return 0, domain.ErrIdentity
	}

	sub := r.openCartQuery(ctx, o, now).Select("id")
	tx := r.db.WithContext(ctx).
		Where("id = ? AND is_booked = ? AND cart_id IN (?)", itemID, false, sub).
		Delete(&cartItemModel{})
	return tx.RowsAffected, tx.Error
}

// MarkItemsBooked flips every visible item of the owner's live cart to booked
// and closes the cart itself. Called once the owning order is confirmed;
// idempotent because a closed cart no longer matches the open-cart scope.
func (r *CartRepository) MarkItemsBooked(ctx context.Context, o domain.Owner, now time.Time) (int64, error) {
	if !o.Valid() {
		return 0, domain.ErrIdentity
	}

	var rows int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Model(&cartModel{}).Scopes(ownerScope(o)).Where("is_booked = ?", false)
		if o.IsGuest() {
			cond, args := r.notExpired(now)
			q = q.Where(cond, args...)
		}
		var m cartModel
		res := q.Order("id DESC").Limit(1).Find(&m)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}

		items := tx.Model(&cartItemModel{}).
			Where("cart_id = ? AND is_booked = ? AND is_excluded = ?", m.ID, false, false).
			Updates(map[string]interface{}{"is_booked": true, "updated_at": now})
		if items.Error != nil {
			return items.Error
		}
		rows = items.RowsAffected

		// the cart converted to an order: closed, not deleted
		return tx.Model(&cartModel{}).Where("id = ?", m.ID).
			Updates(map[string]interface{}{"is_booked": true, "updated_at": now}).Error
	})
	return rows, err
}

// PurgeExpiredGuestCarts deletes guest carts past expiry together with their
// items. Driven by the daily sweep, not request traffic.
func (r *CartRepository) PurgeExpiredGuestCarts(ctx context.Context, now time.Time) (int64, error) {
	cond, args := r.expiredGuest(now)
	var purged int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sub := tx.Model(&cartModel{}).Select("id").Where(cond, args...)
		if err := tx.Where("cart_id IN (?)", sub).Delete(&cartItemModel{}).Error; err != nil {
			return err
		}
		res := tx.Where(cond, args...).Delete(&cartModel{})
		purged = res.RowsAffected
		return res.Error
	})
	return purged, err
}
