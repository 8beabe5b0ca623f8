package order

type CreateOrderRequest struct {
	CustomerName  string  `json:"customer_name" binding:"required"`
	CustomerEmail string  `json:"customer_email" binding:"required,email"`
	CustomerPhone string  `json:"customer_phone"`
	CouponCode    string  `json:"coupon_code"`
	TaxAmount     float64 `json:"tax_amount" binding:"gte=0"`
}

// PaymentInput selects the charge mode for the payment step. An authenticated
// owner with a stored customer id and no wallet type pays through the stored
// customer; otherwise a one-off card or wallet charge applies.
type PaymentInput struct {
	CardToken      string `json:"card_token"`
	WalletType     string `json:"wallet_type"`
	WalletSourceID string `json:"wallet_source_id"`
	CustomerID     string `json:"customer_id"`
}

type AdvanceOrderRequest struct {
	OrderID int64        `json:"order_id" binding:"required"`
	Payment PaymentInput `json:"payment"`
}
