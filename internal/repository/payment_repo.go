package repository

import (
	"context"
	"time"

	"tripcart/internal/domain"

	"gorm.io/gorm"
)

type paymentModel struct {
	ID          int64     `gorm:"column:id;primaryKey"`
	OrderID     int64     `gorm:"column:order_id;uniqueIndex"`
	ReferenceID string    `gorm:"column:reference_id"`
	Reason      string    `gorm:"column:reason;type:text"`
	Amount      float64   `gorm:"column:amount"`
	Status      string    `gorm:"column:status"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (paymentModel) TableName() string { return "order_payments" }

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// GetByOrderID returns the order's payment record, or nil when none exists.
func (r *PaymentRepository) GetByOrderID(ctx context.Context, orderID int64) (*domain.Payment, error) {
	var m paymentModel
	tx := r.db.WithContext(ctx).Limit(1).Find(&m, "order_id = ?", orderID)
	if tx.Error != nil {
		return nil, tx.Error
	}
	if tx.RowsAffected == 0 {
		return nil, nil
	}
	return &domain.Payment{
		ID:          m.ID,
		OrderID:     m.OrderID,
		ReferenceID: m.ReferenceID,
		Reason:      m.Reason,
		Amount:      m.Amount,
		Status:      domain.PaymentStatus(m.Status),
		CreatedAt:   m.CreatedAt,
	}, nil
}
