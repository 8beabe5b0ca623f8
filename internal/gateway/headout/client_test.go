package headout

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tripcart/internal/domain"

	"github.com/stretchr/testify/assert"
)

func newTestClient(handler http.Handler) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	return NewClient(Config{BaseURL: srv.URL, APIKey: "pk-test"}), srv
}

func TestGetAvailability_WidensWindowToDayBounds(t *testing.T) {
	var gotStart, gotEnd, gotKey string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotStart = r.URL.Query().Get("startDateTime")
		gotEnd = r.URL.Query().Get("endDateTime")
		gotKey = r.Header.Get("H-Partner-Key")
		_ = json.NewEncoder(w).Encode(availabilityEnvelope{Items: []Slot{
			{
				VariantItemID: 501,
				StartDateTime: time.Date(2026, 9, 10, 14, 0, 0, 0, time.UTC),
				EndDateTime:   time.Date(2026, 9, 10, 16, 0, 0, 0, time.UTC),
				Available:     true,
				Remaining:     4,
				Price:         40,
			},
		}})
	})
	c, srv := newTestClient(handler)
	defer srv.Close()

	windowStart := time.Date(2026, 9, 10, 14, 0, 0, 0, time.UTC)
	windowEnd := time.Date(2026, 9, 10, 16, 0, 0, 0, time.UTC)
	av, err := c.GetAvailability(context.Background(), 501, windowStart, windowEnd)

	assert.NoError(t, err)
	assert.Equal(t, "2026-09-10T00:00:00", gotStart)
	assert.Equal(t, "2026-09-11T00:00:00", gotEnd)
	assert.Equal(t, "pk-test", gotKey)
	assert.True(t, av.Available)
	assert.Equal(t, int64(501), av.Slot.VariantItemID)
}

func TestGetAvailability_FiltersSlotsOutsideWindow(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(availabilityEnvelope{Items: []Slot{
			{
				VariantItemID: 501,
				StartDateTime: time.Date(2026, 9, 10, 9, 0, 0, 0, time.UTC),
				EndDateTime:   time.Date(2026, 9, 10, 11, 0, 0, 0, time.UTC),
				Available:     true,
				Remaining:     4,
			},
		}})
	})
	c, srv := newTestClient(handler)
	defer srv.Close()

	av, err := c.GetAvailability(context.Background(), 501,
		time.Date(2026, 9, 10, 14, 0, 0, 0, time.UTC),
		time.Date(2026, 9, 10, 16, 0, 0, 0, time.UTC))

	assert.NoError(t, err)
	assert.False(t, av.Available)
	assert.Equal(t, "no slot in requested window", av.Reason)
}

func TestGetAvailability_SoldOutSlot(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(availabilityEnvelope{Items: []Slot{
			{
				VariantItemID: 501,
				StartDateTime: time.Date(2026, 9, 10, 14, 0, 0, 0, time.UTC),
				EndDateTime:   time.Date(2026, 9, 10, 16, 0, 0, 0, time.UTC),
				Available:     true,
				Remaining:     0,
			},
		}})
	})
	c, srv := newTestClient(handler)
	defer srv.Close()

	av, err := c.GetAvailability(context.Background(), 501,
		time.Date(2026, 9, 10, 14, 0, 0, 0, time.UTC),
		time.Date(2026, 9, 10, 16, 0, 0, 0, time.UTC))

	assert.NoError(t, err)
	assert.False(t, av.Available)
	assert.Equal(t, "slot sold out", av.Reason)
}

func TestGetAvailability_SoldOutSlotDoesNotMaskLaterSlot(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(availabilityEnvelope{Items: []Slot{
			{
				VariantItemID: 501,
				StartDateTime: time.Date(2026, 9, 10, 14, 0, 0, 0, time.UTC),
				EndDateTime:   time.Date(2026, 9, 10, 15, 0, 0, 0, time.UTC),
				Available:     true,
				Remaining:     0,
			},
			{
				VariantItemID: 501,
				StartDateTime: time.Date(2026, 9, 10, 15, 0, 0, 0, time.UTC),
				EndDateTime:   time.Date(2026, 9, 10, 16, 0, 0, 0, time.UTC),
				Available:     true,
				Remaining:     2,
			},
		}})
	})
	c, srv := newTestClient(handler)
	defer srv.Close()

	av, err := c.GetAvailability(context.Background(), 501,
		time.Date(2026, 9, 10, 14, 0, 0, 0, time.UTC),
		time.Date(2026, 9, 10, 16, 0, 0, 0, time.UTC))

	assert.NoError(t, err)
	assert.True(t, av.Available)
	assert.Equal(t, 2, av.Slot.Remaining)
}

func TestGetAvailability_UnknownVariant(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	c, srv := newTestClient(handler)
	defer srv.Close()

	av, err := c.GetAvailability(context.Background(), 999,
		time.Date(2026, 9, 10, 14, 0, 0, 0, time.UTC),
		time.Date(2026, 9, 10, 16, 0, 0, 0, time.UTC))

	assert.NoError(t, err)
	assert.False(t, av.Available)
	assert.Equal(t, "variant not found", av.Reason)
}

func TestCreateBooking_ExpandsCustomers(t *testing.T) {
	var got createBookingRequest
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		_ = json.NewEncoder(w).Encode(bookingEnvelope{BookingID: "bk-1", Status: "PENDING"})
	})
	c, srv := newTestClient(handler)
	defer srv.Close()

	item := domain.OrderItem{
		ID:            21,
		VariantItemID: 501,
		AgeGroupOptions: []domain.AgeGroupOption{
			{Type: domain.AgeGroupAdult, Quantity: 2},
			{Type: domain.AgeGroupChild, Quantity: 1},
			{Type: domain.AgeGroupInfant, Quantity: 0},
		},
	}
	b, err := c.CreateBooking(context.Background(), item, CustomerInfo{Name: "Dana Reed", Email: "dana@example.com"})

	assert.NoError(t, err)
	assert.Equal(t, "bk-1", b.ID)
	assert.Equal(t, BookingPending, b.Status)
	assert.Equal(t, int64(21), b.OrderItemID)
	assert.Equal(t, int64(501), got.VariantItemID)
	assert.Equal(t, 3, got.InventoryCount)
	assert.Len(t, got.CustomersDetails, 3)
	assert.True(t, got.CustomersDetails[0].Primary)
	assert.False(t, got.CustomersDetails[1].Primary)
	assert.Equal(t, domain.AgeGroupChild, got.CustomersDetails[2].AgeGroup)
}

func TestCreateBooking_NoTravellers(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}))
	defer srv.Close()

	item := domain.OrderItem{ID: 21, VariantItemID: 501, AgeGroupOptions: []domain.AgeGroupOption{
		{Type: domain.AgeGroupAdult, Quantity: 0},
	}}
	_, err := c.CreateBooking(context.Background(), item, CustomerInfo{})

	assert.ErrorIs(t, err, ErrGateway)
}

func TestGetBooking_NotFound(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	b, err := c.GetBooking(context.Background(), "bk-missing")

	assert.NoError(t, err)
	assert.Nil(t, b)
}

func TestGetBooking_ServerError(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := c.GetBooking(context.Background(), "bk-1")

	assert.ErrorIs(t, err, ErrGateway)
}

func TestConfirmBookings_PartialFailure(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/bookings/bk-2/accept" {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		assert.Equal(t, "chrg_abc", body["partnerReferenceId"])
		_ = json.NewEncoder(w).Encode(bookingEnvelope{BookingID: "bk-1", Status: "CAPTURED"})
	})
	c, srv := newTestClient(handler)
	defer srv.Close()

	results := c.ConfirmBookings(context.Background(), []string{"bk-1", "bk-2"}, "chrg_abc")

	assert.Len(t, results, 2)
	assert.True(t, results[0].Confirmed)
	assert.False(t, results[1].Confirmed)
	assert.NotEmpty(t, results[1].Err)
}
