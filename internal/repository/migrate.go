package repository

import "gorm.io/gorm"

// AutoMigrate creates the checkout tables. Production schemas are managed
// externally; this covers local sqlite development and the test suite.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&cartModel{},
		&cartItemModel{},
		&orderModel{},
		&orderItemModel{},
		&paymentModel{},
		&promoModel{},
		&promoUsageModel{},
	); err != nil {
		return err
	}
	// gorm tags cannot express a partial index: at most one unbooked item
	// per inventory slot per cart. Backstops the duplicate pre-check under
	// concurrent adds. The external postgres schema carries the same index.
	return db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_cart_items_unbooked_slot
		ON cart_items (cart_id, variant_item_id) WHERE is_booked = false`).Error
}
