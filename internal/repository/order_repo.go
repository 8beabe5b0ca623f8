package repository

import (
	"context"
	"encoding/json"
	"time"

	"tripcart/internal/domain"

	"gorm.io/gorm"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

type orderModel struct {
	ID               int64     `gorm:"column:id;primaryKey"`
	CartID           int64     `gorm:"column:cart_id;index"`
	UserID           *int64    `gorm:"column:user_id;index"`
	GuestID          *string   `gorm:"column:guest_id;index"`
	CustomerName     string    `gorm:"column:customer_name"`
	CustomerEmail    string    `gorm:"column:customer_email"`
	CustomerPhone    string    `gorm:"column:customer_phone"`
	CouponCode       string    `gorm:"column:coupon_code"`
	SubTotal         float64   `gorm:"column:sub_total"`
	DiscountAmount   float64   `gorm:"column:discount_amount"`
	ReferralDiscount float64   `gorm:"column:referral_discount"`
	TaxAmount        float64   `gorm:"column:tax_amount"`
	GatewayCharges   float64   `gorm:"column:gateway_charges"`
	NetTotal         float64   `gorm:"column:net_total"`
	GrandTotal       float64   `gorm:"column:grand_total"`
	OrderUUID        string    `gorm:"column:order_uuid"`
	Status           string    `gorm:"column:status;index"`
	CreatedAt        time.Time `gorm:"column:created_at"`
	UpdatedAt        time.Time `gorm:"column:updated_at"`
}

func (orderModel) TableName() string { return "orders" }

type orderItemModel struct {
	ID              int64     `gorm:"column:id;primaryKey"`
	OrderID         int64     `gorm:"column:order_id;index"`
	CartItemID      int64     `gorm:"column:cart_item_id"`
	ProductID       int64     `gorm:"column:product_id"`
	VariantID       int64     `gorm:"column:variant_id"`
	VariantItemID   int64     `gorm:"column:variant_item_id"`
	ProductName     string    `gorm:"column:product_name"`
	StartTime       time.Time `gorm:"column:start_time"`
	AgeGroupOptions string    `gorm:"column:age_group_options;type:text"`
	TotalPrice      float64   `gorm:"column:total_price"`
	BookingID       *string   `gorm:"column:booking_id"`
	IsBooked        bool      `gorm:"column:is_booked"`
	CreatedAt       time.Time `gorm:"column:created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at"`
}

func (orderItemModel) TableName() string { return "order_items" }

func toDomainOrder(m orderModel, items []orderItemModel) *domain.Order {
	o := &domain.Order{
		ID:               m.ID,
		CartID:           m.CartID,
		UserID:           m.UserID,
		GuestID:          m.GuestID,
		CustomerName:     m.CustomerName,
		CustomerEmail:    m.CustomerEmail,
		CustomerPhone:    m.CustomerPhone,
		CouponCode:       m.CouponCode,
		SubTotal:         m.SubTotal,
		DiscountAmount:   m.DiscountAmount,
		ReferralDiscount: m.ReferralDiscount,
		TaxAmount:        m.TaxAmount,
		GatewayCharges:   m.GatewayCharges,
		NetTotal:         m.NetTotal,
		GrandTotal:       m.GrandTotal,
		OrderUUID:        m.OrderUUID,
		Status:           domain.OrderStatus(m.Status),
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
	o.Items = make([]domain.OrderItem, 0, len(items))
	for _, im := range items {
		o.Items = append(o.Items, *toDomainOrderItem(im))
	}
	return o
}

func toDomainOrderItem(m orderItemModel) *domain.OrderItem {
	var opts []domain.AgeGroupOption
	if m.AgeGroupOptions != "" {
		_ = json.Unmarshal([]byte(m.AgeGroupOptions), &opts)
	}
	return &domain.OrderItem{
		ID:              m.ID,
		OrderID:         m.OrderID,
		CartItemID:      m.CartItemID,
		ProductID:       m.ProductID,
		VariantID:       m.VariantID,
		VariantItemID:   m.VariantItemID,
		ProductName:     m.ProductName,
		StartTime:       m.StartTime,
		AgeGroupOptions: opts,
		TotalPrice:      m.TotalPrice,
		BookingID:       m.BookingID,
		IsBooked:        m.IsBooked,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func toOrderItemModel(it *domain.OrderItem) orderItemModel {
	raw, _ := json.Marshal(it.AgeGroupOptions)
	return orderItemModel{
		ID:              it.ID,
		OrderID:         it.OrderID,
		CartItemID:      it.CartItemID,
		ProductID:       it.ProductID,
		VariantID:       it.VariantID,
		VariantItemID:   it.VariantItemID,
		ProductName:     it.ProductName,
		StartTime:       it.StartTime,
		AgeGroupOptions: string(raw),
		TotalPrice:      it.TotalPrice,
		BookingID:       it.BookingID,
		IsBooked:        it.IsBooked,
	}
}

func (r *OrderRepository) loadItems(ctx context.Context, tx *gorm.DB, orderID int64) ([]orderItemModel, error) {
	var items []orderItemModel
	res := tx.WithContext(ctx).Where("order_id = ?", orderID).Order("id ASC").Find(&items)
	return items, res.Error
}

// GetByID returns the order with its items, or nil when it does not exist.
func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	var m orderModel
	tx := r.db.WithContext(ctx).Limit(1).Find(&m, "id = ?", id)
	if tx.Error != nil {
		return nil, tx.Error
	}
	if tx.RowsAffected == 0 {
		return nil, nil
	}
	items, err := r.loadItems(ctx, r.db, m.ID)
	if err != nil {
		return nil, err
	}
	return toDomainOrder(m, items), nil
}

// GetOpenByCart returns the owner's non-confirmed order for a cart, or nil.
// At most one open order exists per (cart, owner).
func (r *OrderRepository) GetOpenByCart(ctx context.Context, o domain.Owner, cartID int64) (*domain.Order, error) {
	if !o.Valid() {
		return nil, domain.ErrIdentity
	}

	var m orderModel
	tx := r.db.WithContext(ctx).Model(&orderModel{}).
		Scopes(ownerScope(o)).
		Where("cart_id = ? AND status <> ?", cartID, string(domain.OrderConfirmed)).
		Order("id DESC").Limit(1).Find(&m)
	if tx.Error != nil {
		return nil, tx.Error
	}
	if tx.RowsAffected == 0 {
		return nil, nil
	}
	items, err := r.loadItems(ctx, r.db, m.ID)
	if err != nil {
		return nil, err
	}
	return toDomainOrder(m, items), nil
}

// CreateWithItems persists the order and its items in one transaction.
func (r *OrderRepository) CreateWithItems(ctx context.Context, o *domain.Order) error {
	m := orderModel{
		CartID:           o.CartID,
		UserID:           o.UserID,
		GuestID:          o.GuestID,
		CustomerName:     o.CustomerName,
		CustomerEmail:    o.CustomerEmail,
		CustomerPhone:    o.CustomerPhone,
		CouponCode:       o.CouponCode,
		SubTotal:         o.SubTotal,
		DiscountAmount:   o.DiscountAmount,
		ReferralDiscount: o.ReferralDiscount,
		TaxAmount:        o.TaxAmount,
		GatewayCharges:   o.GatewayCharges,
		NetTotal:         o.NetTotal,
		GrandTotal:       o.GrandTotal,
		Status:           string(o.Status),
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&m).Error; err != nil {
			return err
		}
		for i := range o.Items {
			im := toOrderItemModel(&o.Items[i])
			im.OrderID = m.ID
			if err := tx.Create(&im).Error; err != nil {
				return err
			}
			o.Items[i].ID = im.ID
			o.Items[i].OrderID = m.ID
		}
		return nil
	})
	if err != nil {
		return err
	}
	o.ID = m.ID
	return nil
}

// ReplaceItems swaps the open order's items for the current cart view and
// patches its totals and coupon, all in one transaction.
func (r *OrderRepository) ReplaceItems(ctx context.Context, o *domain.Order) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", o.ID).Delete(&orderItemModel{}).Error; err != nil {
			return err
		}
		for i := range o.Items {
			im := toOrderItemModel(&o.Items[i])
			im.ID = 0
			im.OrderID = o.ID
			if err := tx.Create(&im).Error; err != nil {
				return err
			}
			o.Items[i].ID = im.ID
			o.Items[i].OrderID = o.ID
		}
		return tx.Model(&orderModel{}).Where("id = ?", o.ID).
			Updates(map[string]interface{}{
				"coupon_code":       o.CouponCode,
				"sub_total":         o.SubTotal,
				"discount_amount":   o.DiscountAmount,
				"referral_discount": o.ReferralDiscount,
				"tax_amount":        o.TaxAmount,
				"gateway_charges":   o.GatewayCharges,
				"net_total":         o.NetTotal,
				"grand_total":       o.GrandTotal,
			}).Error
	})
	return err
}

// ItemBooking mirrors a provider booking onto one order item.
type ItemBooking struct {
	OrderItemID int64
	BookingID   string
}

func statusStrings(in []domain.OrderStatus) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, string(s))
	}
	return out
}

// SetItemBookings writes booking ids onto the order items and advances the
// order status under a precondition on its current value. Returns the rows
// affected by the status update: 0 means another caller advanced it first.
func (r *OrderRepository) SetItemBookings(ctx context.Context, orderID int64, bookings []ItemBooking, from []domain.OrderStatus, to domain.OrderStatus) (int64, error) {
	var moved int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, b := range bookings {
			res := tx.Model(&orderItemModel{}).
				Where("id = ? AND order_id = ?", b.OrderItemID, orderID).
				Update("booking_id", b.BookingID)
			if res.Error != nil {
				return res.Error
			}
		}
		res := tx.Model(&orderModel{}).
			Where("id = ? AND status IN (?)", orderID, statusStrings(from)).
			Update("status", string(to))
		moved = res.RowsAffected
		return res.Error
	})
	return moved, err
}

// RecordPayment stores the payment record, sets the provider transaction
// reference on the order and advances its status, in one transaction guarded
// by the status precondition and the unique payment-per-order index.
func (r *OrderRepository) RecordPayment(ctx context.Context, orderID int64, p *domain.Payment, from []domain.OrderStatus, to domain.OrderStatus) (int64, error) {
	pm := paymentModel{
		OrderID:     orderID,
		ReferenceID: p.ReferenceID,
		Reason:      p.Reason,
		Amount:      p.Amount,
		Status:      string(p.Status),
	}

	var moved int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&pm).Error; err != nil {
			return err
		}
		res := tx.Model(&orderModel{}).
			Where("id = ? AND status IN (?)", orderID, statusStrings(from)).
			Updates(map[string]interface{}{
				"order_uuid": p.ReferenceID,
				"status":     string(to),
			})
		moved = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return 0, err
	}
	p.ID = pm.ID
	p.OrderID = orderID
	return moved, nil
}

// FinalizeStatus moves the order to its terminal status and, when the outcome
// is confirmed, marks every order item as accepted by the provider.
func (r *OrderRepository) FinalizeStatus(ctx context.Context, orderID int64, from []domain.OrderStatus, to domain.OrderStatus) (int64, error) {
	var moved int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&orderModel{}).
			Where("id = ? AND status IN (?)", orderID, statusStrings(from)).
			Update("status", string(to))
		if res.Error != nil {
			return res.Error
		}
		moved = res.RowsAffected
		if moved == 0 || to != domain.OrderConfirmed {
			return nil
		}
		return tx.Model(&orderItemModel{}).
			Where("order_id = ?", orderID).
			Update("is_booked", true).Error
	})
	return moved, err
}
