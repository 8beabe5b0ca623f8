package repository

import (
	"context"
	"time"

	"tripcart/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PromoRepository struct {
	db *gorm.DB
}

func NewPromoRepository(db *gorm.DB) *PromoRepository {
	return &PromoRepository{db: db}
}

type promoModel struct {
	ID           int64      `gorm:"column:id;primaryKey"`
	Code         string     `gorm:"column:code;uniqueIndex"`
	DiscountType string     `gorm:"column:discount_type"`
	Value        float64    `gorm:"column:value"`
	MaxUses      int        `gorm:"column:max_uses"`
	UsedCount    int        `gorm:"column:used_count"`
	ValidFrom    *time.Time `gorm:"column:valid_from"`
	ValidTo      *time.Time `gorm:"column:valid_to"`
	IsActive     bool       `gorm:"column:is_active"`
}

func (promoModel) TableName() string { return "promos" }

type promoUsageModel struct {
	ID       int64     `gorm:"column:id;primaryKey"`
	PromoID  int64     `gorm:"column:promo_id;uniqueIndex:idx_promo_usage_owner"`
	OwnerKey string    `gorm:"column:owner_key;uniqueIndex:idx_promo_usage_owner"`
	UsedAt   time.Time `gorm:"column:used_at"`
}

func (promoUsageModel) TableName() string { return "promo_usages" }

func toDomainPromo(m promoModel) *domain.Promo {
	return &domain.Promo{
		ID:           m.ID,
		Code:         m.Code,
		DiscountType: domain.DiscountType(m.DiscountType),
		Value:        m.Value,
		MaxUses:      m.MaxUses,
		UsedCount:    m.UsedCount,
		ValidFrom:    m.ValidFrom,
		ValidTo:      m.ValidTo,
		IsActive:     m.IsActive,
	}
}

// GetByCode returns the promo regardless of state, or nil when unknown.
// Activity and validity windows are judged by the service.
func (r *PromoRepository) GetByCode(ctx context.Context, code string) (*domain.Promo, error) {
	var m promoModel
	tx := r.db.WithContext(ctx).Limit(1).Find(&m, "code = ?", code)
	if tx.Error != nil {
		return nil, tx.Error
	}
	if tx.RowsAffected == 0 {
		return nil, nil
	}
	return toDomainPromo(m), nil
}

// HasUsage reports whether this owner already consumed the promo.
func (r *PromoRepository) HasUsage(ctx context.Context, promoID int64, o domain.Owner) (bool, error) {
	if !o.Valid() {
		return false, domain.ErrIdentity
	}

	var cnt int64
	tx := r.db.WithContext(ctx).Model(&promoUsageModel{}).
		Where("promo_id = ? AND owner_key = ?", promoID, o.Key()).
		Count(&cnt)
	if tx.Error != nil {
		return false, tx.Error
	}
	return cnt > 0, nil
}

// Consume records a usage for (promo, owner) and bumps the use counter.
// Re-consuming is a no-op: the usage row is unique per owner and the counter
// only moves when the row is actually inserted. Returns whether it inserted.
func (r *PromoRepository) Consume(ctx context.Context, promoID int64, o domain.Owner, now time.Time) (bool, error) {
	if !o.Valid() {
		return false, domain.ErrIdentity
	}

	var created bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		usage := promoUsageModel{PromoID: promoID, OwnerKey: o.Key(), UsedAt: now}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&usage)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		created = true
		return tx.Model(&promoModel{}).Where("id = ?", promoID).
			UpdateColumn("used_count", gorm.Expr("used_count + ?", 1)).Error
	})
	return created, err
}
