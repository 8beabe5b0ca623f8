package payment

import (
	"context"
	"encoding/json"
	"errors"
	"math"

	"tripcart/internal/domain"

	"github.com/omise/omise-go"
	"github.com/omise/omise-go/operations"
)

var (
	ErrGateway      = errors.New("payment gateway error")
	ErrInvalidInput = errors.New("invalid payment input")
)

// Input carries everything one charge attempt needs. Exactly one of
// CardToken / WalletSourceID / (stored customer) applies.
type Input struct {
	Owner          domain.Owner
	Amount         float64
	Currency       string
	CardToken      string
	WalletType     string
	WalletSourceID string
	CustomerID     string
	Description    string
}

// Result mirrors the provider response: an opaque reason payload plus the
// reference the order stores as its transaction id.
type Result struct {
	ReferenceID string
	Reason      string
	Status      domain.PaymentStatus
}

// Charger is the charge operation the orchestrator depends on. Never retried
// internally; retry policy belongs to the saga.
type Charger interface {
	Charge(ctx context.Context, in Input) (*Result, error)
}

// Adapter charges through omise.
type Adapter struct {
	client   *omise.Client
	currency string
}

func NewAdapter(client *omise.Client, currency string) *Adapter {
	return &Adapter{client: client, currency: currency}
}

// buildOperation selects the charge mode: stored customer for authenticated
// users that did not ask for a wallet, otherwise a one-off card or wallet
// source charge.
func buildOperation(in Input, defaultCurrency string) (*operations.CreateCharge, error) {
	if in.Amount <= 0 {
		return nil, ErrInvalidInput
	}
	currency := in.Currency
	if currency == "" {
		currency = defaultCurrency
	}

	op := &operations.CreateCharge{
		Amount:      minorUnits(in.Amount),
		Currency:    currency,
		Description: in.Description,
	}
	switch {
	case in.Owner.IsUser() && in.WalletType == "" && in.CustomerID != "":
		op.Customer = in.CustomerID
	case in.WalletType != "" && in.WalletSourceID != "":
		op.Source = in.WalletSourceID
	case in.CardToken != "":
		op.Card = in.CardToken
	default:
		return nil, ErrInvalidInput
	}
	return op, nil
}

func (a *Adapter) Charge(ctx context.Context, in Input) (*Result, error) {
	op, err := buildOperation(in, a.currency)
	if err != nil {
		return nil, err
	}

	charge := &omise.Charge{}
	if err := a.client.Do(charge, op); err != nil {
		return nil, errors.Join(ErrGateway, err)
	}

	raw, _ := json.Marshal(charge)
	return &Result{
		ReferenceID: charge.ID,
		Reason:      string(raw),
		Status:      mapStatus(string(charge.Status)),
	}, nil
}

func minorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func mapStatus(providerStatus string) domain.PaymentStatus {
	switch providerStatus {
	case "successful":
		return domain.PaymentSucceeded
	case "failed":
		return domain.PaymentFailed
	default:
		return domain.PaymentPending
	}
}
