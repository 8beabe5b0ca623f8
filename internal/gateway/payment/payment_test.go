package payment

import (
	"testing"

	"tripcart/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestBuildOperation_StoredCustomerForUser(t *testing.T) {
	op, err := buildOperation(Input{
		Owner:      domain.UserOwner(1),
		Amount:     124.20,
		CustomerID: "cust_123",
	}, "usd")

	assert.NoError(t, err)
	assert.Equal(t, "cust_123", op.Customer)
	assert.Empty(t, op.Card)
	assert.Empty(t, op.Source)
	assert.Equal(t, "usd", op.Currency)
	assert.Equal(t, int64(12420), op.Amount)
}

func TestBuildOperation_WalletBeatsStoredCustomer(t *testing.T) {
	op, err := buildOperation(Input{
		Owner:          domain.UserOwner(1),
		Amount:         50,
		CustomerID:     "cust_123",
		WalletType:     "alipay",
		WalletSourceID: "src_456",
	}, "usd")

	assert.NoError(t, err)
	assert.Equal(t, "src_456", op.Source)
	assert.Empty(t, op.Customer)
}

func TestBuildOperation_GuestCannotUseStoredCustomer(t *testing.T) {
	op, err := buildOperation(Input{
		Owner:      domain.GuestOwner("g-1"),
		Amount:     50,
		CustomerID: "cust_123",
		CardToken:  "tok_visa",
	}, "usd")

	assert.NoError(t, err)
	assert.Equal(t, "tok_visa", op.Card)
	assert.Empty(t, op.Customer)
}

func TestBuildOperation_ExplicitCurrencyWins(t *testing.T) {
	op, err := buildOperation(Input{
		Owner:     domain.GuestOwner("g-1"),
		Amount:    10,
		Currency:  "thb",
		CardToken: "tok_visa",
	}, "usd")

	assert.NoError(t, err)
	assert.Equal(t, "thb", op.Currency)
}

func TestBuildOperation_RejectsMissingMethod(t *testing.T) {
	_, err := buildOperation(Input{Owner: domain.GuestOwner("g-1"), Amount: 10}, "usd")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestBuildOperation_RejectsNonPositiveAmount(t *testing.T) {
	_, err := buildOperation(Input{Owner: domain.UserOwner(1), Amount: 0, CardToken: "tok_visa"}, "usd")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestMinorUnits(t *testing.T) {
	assert.Equal(t, int64(12420), minorUnits(124.20))
	assert.Equal(t, int64(10), minorUnits(0.1))
	// 19.99 is not exactly representable; rounding keeps it at 1999
	assert.Equal(t, int64(1999), minorUnits(19.99))
}

func TestMapStatus(t *testing.T) {
	assert.Equal(t, domain.PaymentSucceeded, mapStatus("successful"))
	assert.Equal(t, domain.PaymentFailed, mapStatus("failed"))
	assert.Equal(t, domain.PaymentPending, mapStatus("pending"))
	assert.Equal(t, domain.PaymentPending, mapStatus("expired"))
}
