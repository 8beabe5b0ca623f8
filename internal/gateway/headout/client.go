package headout

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"tripcart/internal/domain"

	"github.com/sony/gobreaker/v2"
)

var ErrGateway = errors.New("headout gateway error")

const timeLayout = "2006-01-02T15:04:05"

type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client wraps the partner inventory API. Every request goes through one
// circuit breaker so a dead provider trips fast instead of eating the full
// timeout per call.
type Client struct {
	cfg     Config
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
}

func NewClient(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	cb := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:    "headout",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		breaker: cb,
	}
}

var errNotFound = errors.New("headout: not found")

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body interface{}) ([]byte, error) {
	return c.breaker.Execute(func() ([]byte, error) {
		var reader io.Reader
		if body != nil {
			raw, err := json.Marshal(body)
			if err != nil {
				return nil, err
			}
			reader = bytes.NewReader(raw)
		}

		u := c.cfg.BaseURL + path
		if len(query) > 0 {
			u += "?" + query.Encode()
		}
		req, err := http.NewRequestWithContext(ctx, method, u, reader)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		if c.cfg.APIKey != "" {
			req.Header.Set("H-Partner-Key", c.cfg.APIKey)
		}

		res, err := c.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrGateway, err)
		}
		defer res.Body.Close()

		raw, _ := io.ReadAll(res.Body)
		if res.StatusCode == http.StatusNotFound {
			return nil, errNotFound
		}
		if res.StatusCode < 200 || res.StatusCode >= 300 {
			return nil, fmt.Errorf("%w: %s %s -> %d: %s", ErrGateway, method, path, res.StatusCode, truncate(raw, 256))
		}
		return raw, nil
	})
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

// GetAvailability widens the requested window outward to calendar-day bounds
// before querying (the provider searches by day, our slots are stored to the
// minute), then filters the response back down to the exact window.
func (c *Client) GetAvailability(ctx context.Context, externalVariantID int64, windowStart, windowEnd time.Time) (*Availability, error) {
	dayStart := time.Date(windowStart.Year(), windowStart.Month(), windowStart.Day(), 0, 0, 0, 0, windowStart.Location())
	dayEnd := time.Date(windowEnd.Year(), windowEnd.Month(), windowEnd.Day(), 0, 0, 0, 0, windowEnd.Location()).AddDate(0, 0, 1)

	q := url.Values{}
	q.Set("startDateTime", dayStart.Format(timeLayout))
	q.Set("endDateTime", dayEnd.Format(timeLayout))

	raw, err := c.do(ctx, http.MethodGet, "/variants/"+strconv.FormatInt(externalVariantID, 10)+"/items", q, nil)
	if errors.Is(err, errNotFound) {
		return &Availability{Available: false, Reason: "variant not found"}, nil
	}
	if err != nil {
		return nil, err
	}

	var env availabilityEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: decode availability: %v", ErrGateway, err)
	}

	// a sold-out slot must not mask a later sellable one in the same window
	inWindow := false
	for i := range env.Items {
		s := env.Items[i]
		if s.StartDateTime.Before(windowStart) || s.EndDateTime.After(windowEnd) {
			continue
		}
		inWindow = true
		if s.Available && s.Remaining > 0 {
			return &Availability{Available: true, Slot: &env.Items[i]}, nil
		}
	}
	if inWindow {
		return &Availability{Available: false, Reason: "slot sold out"}, nil
	}
	return &Availability{Available: false, Reason: "no slot in requested window"}, nil
}

// CreateBooking submits one booking request for one order item. The customer
// list expands each non-zero age-group quantity; the first customer across the
// whole list is the primary one.
func (c *Client) CreateBooking(ctx context.Context, item domain.OrderItem, info CustomerInfo) (*Booking, error) {
	customers := make([]customerDetail, 0)
	count := 0
	for _, opt := range item.AgeGroupOptions {
		for i := 0; i < opt.Quantity; i++ {
			customers = append(customers, customerDetail{
				Name:     info.Name,
				Email:    info.Email,
				Phone:    info.Phone,
				AgeGroup: opt.Type,
				Primary:  len(customers) == 0,
			})
			count++
		}
	}
	if count == 0 {
		return nil, fmt.Errorf("%w: order item %d has no travellers", ErrGateway, item.ID)
	}

	body := createBookingRequest{
		VariantItemID:    item.VariantItemID,
		InventoryCount:   count,
		CustomersDetails: customers,
	}
	raw, err := c.do(ctx, http.MethodPost, "/bookings", nil, body)
	if err != nil {
		return nil, err
	}

	var env bookingEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: decode booking: %v", ErrGateway, err)
	}
	return &Booking{
		ID:          env.BookingID,
		Status:      BookingStatus(env.Status),
		OrderItemID: item.ID,
	}, nil
}

// GetBooking fetches a booking by provider id. A provider 404 is not an
// error: it returns nil, nil.
func (c *Client) GetBooking(ctx context.Context, id string) (*Booking, error) {
	raw, err := c.do(ctx, http.MethodGet, "/bookings/"+url.PathEscape(id), nil, nil)
	if errors.Is(err, errNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var env bookingEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: decode booking: %v", ErrGateway, err)
	}
	return &Booking{ID: env.BookingID, Status: BookingStatus(env.Status)}, nil
}

// ConfirmBookings accepts each provisional booking under the partner
// reference, one request per booking. Partial failures are reported per
// booking rather than as one collapsed error.
func (c *Client) ConfirmBookings(ctx context.Context, bookingIDs []string, partnerReferenceID string) []ConfirmResult {
	out := make([]ConfirmResult, 0, len(bookingIDs))
	for _, id := range bookingIDs {
		body := map[string]string{"partnerReferenceId": partnerReferenceID}
		_, err := c.do(ctx, http.MethodPost, "/bookings/"+url.PathEscape(id)+"/accept", nil, body)
		if err != nil {
			out = append(out, ConfirmResult{BookingID: id, Confirmed: false, Err: err.Error()})
			continue
		}
		out = append(out, ConfirmResult{BookingID: id, Confirmed: true})
	}
	return out
}
