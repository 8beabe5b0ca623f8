package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tripcart/internal/domain"
	"tripcart/internal/gateway/headout"
	"tripcart/internal/gateway/payment"
	"tripcart/internal/pkg/metrics"
	"tripcart/internal/repository"

	"github.com/jackc/pgx/v5/pgconn"
)

type Service struct {
	orders   OrderRepository
	payments PaymentRepository
	carts    CartReader
	promos   DiscountEngine
	booking  BookingGateway
	charger  PaymentGateway
	notifier Notifier
	metrics  *metrics.CheckoutMetrics
	loggerf  func(format string, args ...interface{})
}

// NewService wires the checkout orchestrator. notifier and m may be nil.
func NewService(
	orders OrderRepository,
	payments PaymentRepository,
	carts CartReader,
	promos DiscountEngine,
	booking BookingGateway,
	charger PaymentGateway,
	notifier Notifier,
	m *metrics.CheckoutMetrics,
	loggerf func(string, ...interface{}),
) *Service {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Service{
		orders:   orders,
		payments: payments,
		carts:    carts,
		promos:   promos,
		booking:  booking,
		charger:  charger,
		notifier: notifier,
		metrics:  m,
		loggerf:  loggerf,
	}
}

// GetOrCreateOrder snapshots the owner's open cart into an order. When an open
// order already exists for the cart it is returned; if the cart changed since
// it was created and the checkout has not started yet, its items and totals
// are refreshed to match.
func (s *Service) GetOrCreateOrder(ctx context.Context, o domain.Owner, req CreateOrderRequest) (*domain.Order, error) {
	if !o.Valid() {
		return nil, domain.ErrIdentity
	}

	c, err := s.carts.GetOpenCart(ctx, o)
	if err != nil {
		return nil, err
	}
	if len(c.Items) == 0 {
		return nil, ErrNotFound
	}

	ord := &domain.Order{
		CartID:        c.ID,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
		CouponCode:    req.CouponCode,
		SubTotal:      c.SubTotal(),
		TaxAmount:     req.TaxAmount,
		Status:        domain.OrderInitiated,
	}
	if o.IsUser() {
		uid := o.UserID()
		ord.UserID = &uid
	} else {
		gid := o.GuestID()
		ord.GuestID = &gid
	}

	if req.CouponCode != "" {
		d, err := s.promos.GetDiscount(ctx, req.CouponCode, ord.SubTotal, o)
		if err != nil {
			return nil, err
		}
		ord.DiscountAmount = d.Amount
	}
	ord.Items = orderItemsFromCart(c)
	ord.RecomputeTotals()

	existing, err := s.orders.GetOpenByCart(ctx, o, c.ID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		if err := s.orders.CreateWithItems(ctx, ord); err != nil {
			return nil, err
		}
		return ord, nil
	}

	// only refresh before the booking step has run; past that the stored
	// snapshot is what the provider was told
	if cartDrifted(existing, ord) &&
		(existing.Status == domain.OrderInitiated || existing.Status == domain.OrderFailed) {
		existing.CustomerName = ord.CustomerName
		existing.CustomerEmail = ord.CustomerEmail
		existing.CustomerPhone = ord.CustomerPhone
		existing.CouponCode = ord.CouponCode
		existing.SubTotal = ord.SubTotal
		existing.DiscountAmount = ord.DiscountAmount
		existing.TaxAmount = ord.TaxAmount
		existing.Items = ord.Items
		existing.RecomputeTotals()
		if err := s.orders.ReplaceItems(ctx, existing); err != nil {
			return nil, err
		}
	}
	return existing, nil
}

func orderItemsFromCart(c *domain.Cart) []domain.OrderItem {
	items := make([]domain.OrderItem, 0, len(c.Items))
	for _, ci := range c.Items {
		items = append(items, domain.OrderItem{
			CartItemID:      ci.ID,
			ProductID:       ci.ProductID,
			VariantID:       ci.VariantID,
			VariantItemID:   ci.VariantItemID,
			ProductName:     ci.ProductName,
			StartTime:       ci.StartTime,
			AgeGroupOptions: ci.AgeGroupOptions,
			TotalPrice:      ci.TotalPrice,
		})
	}
	return items
}

func cartDrifted(stored, fresh *domain.Order) bool {
	return len(stored.Items) != len(fresh.Items) ||
		stored.SubTotal != fresh.SubTotal ||
		stored.CouponCode != fresh.CouponCode ||
		stored.TaxAmount != fresh.TaxAmount
}

// AdvanceOrder runs the checkout forward from the order's persisted status.
// Each step commits its status move before the next one starts, so a failed
// or interrupted advance resumes at the step it stopped in without repeating
// side effects.
func (s *Service) AdvanceOrder(ctx context.Context, o domain.Owner, req AdvanceOrderRequest) (*domain.Order, error) {
	if !o.Valid() {
		return nil, domain.ErrIdentity
	}

	ord, err := s.orders.GetByID(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}
	if ord == nil || ord.Owner().Key() != o.Key() {
		return nil, ErrNotFound
	}

	switch ord.Status {
	case domain.OrderConfirmed:
		return ord, nil
	case domain.OrderInitiated, domain.OrderFailed:
		if err := s.stepBook(ctx, ord); err != nil {
			return nil, err
		}
		fallthrough
	case domain.OrderProcessing:
		if err := s.stepPay(ctx, ord, req.Payment); err != nil {
			return nil, err
		}
		fallthrough
	case domain.OrderPending:
		if err := s.stepConfirm(ctx, ord); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: unknown status %q", ErrInconsistent, ord.Status)
	}

	return s.orders.GetByID(ctx, ord.ID)
}

// stepBook creates a provider booking for every item that has none yet. Items
// holding a booking id from an earlier attempt are verified and kept, so a
// resume never double-books. Status moves initiated|failed -> processing.
func (s *Service) stepBook(ctx context.Context, ord *domain.Order) error {
	defer s.observe("book")()

	info := headout.CustomerInfo{
		Name:  ord.CustomerName,
		Email: ord.CustomerEmail,
		Phone: ord.CustomerPhone,
	}

	var bookings []repository.ItemBooking
	for i := range ord.Items {
		it := &ord.Items[i]
		if it.BookingID != nil && *it.BookingID != "" {
			b, err := s.booking.GetBooking(ctx, *it.BookingID)
			if err != nil {
				s.countGateway("headout", "error")
				return err
			}
			if b != nil && b.Status != headout.BookingCancelled {
				s.countGateway("headout", "ok")
				continue
			}
			// stale id, book again
		}
		b, err := s.booking.CreateBooking(ctx, *it, info)
		if err != nil {
			s.countGateway("headout", "error")
			return err
		}
		s.countGateway("headout", "ok")
		id := b.ID
		it.BookingID = &id
		bookings = append(bookings, repository.ItemBooking{OrderItemID: it.ID, BookingID: b.ID})
	}

	moved, err := s.orders.SetItemBookings(ctx, ord.ID, bookings,
		[]domain.OrderStatus{domain.OrderInitiated, domain.OrderFailed}, domain.OrderProcessing)
	if err != nil {
		return err
	}
	if moved == 0 {
		return ErrOrderBusy
	}
	ord.Status = domain.OrderProcessing
	return nil
}

// stepPay charges the grand total once and records the payment together with
// the processing -> pending move. The unique payment-per-order index backstops
// the pre-check under concurrent advances.
func (s *Service) stepPay(ctx context.Context, ord *domain.Order, in PaymentInput) error {
	defer s.observe("pay")()

	existing, err := s.payments.GetByOrderID(ctx, ord.ID)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrDuplicatePayment
	}

	res, err := s.charger.Charge(ctx, payment.Input{
		Owner:          ord.Owner(),
		Amount:         ord.GrandTotal,
		CardToken:      in.CardToken,
		WalletType:     in.WalletType,
		WalletSourceID: in.WalletSourceID,
		CustomerID:     in.CustomerID,
		Description:    fmt.Sprintf("order #%d", ord.ID),
	})
	if err != nil {
		s.countGateway("omise", "error")
		return err
	}
	s.countGateway("omise", "ok")

	p := &domain.Payment{
		ReferenceID: res.ReferenceID,
		Reason:      res.Reason,
		Amount:      ord.GrandTotal,
		Status:      res.Status,
	}
	moved, err := s.orders.RecordPayment(ctx, ord.ID, p,
		[]domain.OrderStatus{domain.OrderProcessing}, domain.OrderPending)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrOrderBusy
		}
		return err
	}
	if moved == 0 {
		return ErrOrderBusy
	}
	ord.Status = domain.OrderPending
	ord.OrderUUID = res.ReferenceID
	return nil
}

// stepConfirm settles the order from its recorded payment: a failed charge
// finalizes the order as failed; any other charge outcome confirms every
// booking with the provider and commits the pending -> confirmed move. Cart,
// promo and notification side effects run after the terminal commit and are
// each idempotent.
func (s *Service) stepConfirm(ctx context.Context, ord *domain.Order) error {
	defer s.observe("confirm")()

	if ord.OrderUUID == "" || len(ord.Items) == 0 {
		fresh, err := s.orders.GetByID(ctx, ord.ID)
		if err != nil {
			return err
		}
		if fresh == nil {
			return ErrNotFound
		}
		*ord = *fresh
	}

	pay, err := s.payments.GetByOrderID(ctx, ord.ID)
	if err != nil {
		return err
	}
	if pay == nil {
		return fmt.Errorf("%w: order %d is pending without a payment record", ErrInconsistent, ord.ID)
	}

	if pay.Status == domain.PaymentFailed {
		moved, err := s.orders.FinalizeStatus(ctx, ord.ID,
			[]domain.OrderStatus{domain.OrderPending}, domain.OrderFailed)
		if err != nil {
			return err
		}
		if moved == 0 {
			return ErrOrderBusy
		}
		ord.Status = domain.OrderFailed
		s.countFinalized(domain.OrderFailed)
		return nil
	}

	ids := make([]string, 0, len(ord.Items))
	for _, it := range ord.Items {
		if it.BookingID != nil && *it.BookingID != "" {
			ids = append(ids, *it.BookingID)
		}
	}
	results := s.booking.ConfirmBookings(ctx, ids, ord.OrderUUID)
	for _, r := range results {
		if !r.Confirmed {
			s.countGateway("headout", "error")
			return fmt.Errorf("%w: booking %s not confirmed: %s", ErrGateway, r.BookingID, r.Err)
		}
	}
	s.countGateway("headout", "ok")

	moved, err := s.orders.FinalizeStatus(ctx, ord.ID,
		[]domain.OrderStatus{domain.OrderPending}, domain.OrderConfirmed)
	if err != nil {
		return err
	}
	if moved == 0 {
		return ErrOrderBusy
	}
	ord.Status = domain.OrderConfirmed
	s.countFinalized(domain.OrderConfirmed)

	owner := ord.Owner()
	if err := s.carts.MarkItemsBooked(ctx, owner); err != nil {
		s.loggerf("level=error msg=marking cart items booked failed order_id=%d err=%v", ord.ID, err)
	}
	if ord.CouponCode != "" {
		if err := s.promos.Consume(ctx, ord.CouponCode, owner); err != nil {
			s.loggerf("level=error msg=promo consume failed order_id=%d code=%s err=%v", ord.ID, ord.CouponCode, err)
		}
	}
	if s.notifier != nil {
		if err := s.notifier.EnqueueTicketEmail(ctx, ord.ID, ord.CustomerEmail); err != nil {
			s.loggerf("level=error msg=ticket email enqueue failed order_id=%d err=%v", ord.ID, err)
		}
	}
	return nil
}

func (s *Service) observe(step string) func() {
	if s.metrics == nil {
		return func() {}
	}
	start := time.Now()
	return func() {
		s.metrics.StepDurationMS.WithLabelValues(step).Observe(float64(time.Since(start).Milliseconds()))
	}
}

func (s *Service) countGateway(gw, outcome string) {
	if s.metrics != nil {
		s.metrics.GatewayCalls.WithLabelValues(gw, outcome).Inc()
	}
}

func (s *Service) countFinalized(st domain.OrderStatus) {
	if s.metrics != nil {
		s.metrics.OrdersFinalized.WithLabelValues(st.String()).Inc()
	}
}
