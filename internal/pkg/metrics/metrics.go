package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type CheckoutMetrics struct {
	OrdersFinalized *prometheus.CounterVec
	GatewayCalls    *prometheus.CounterVec
	StepDurationMS  *prometheus.HistogramVec
}

func NewCheckoutMetrics() *CheckoutMetrics {
	finalized := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tripcart",
		Subsystem: "checkout",
		Name:      "orders_finalized_total",
		Help:      "Orders that reached a terminal status.",
	}, []string{"status"})
	gateway := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tripcart",
		Subsystem: "checkout",
		Name:      "gateway_calls_total",
		Help:      "External gateway calls by provider and outcome.",
	}, []string{"gateway", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "tripcart",
		Subsystem: "checkout",
		Name:      "step_duration_ms",
		Help:      "Saga step latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"step"})

	prometheus.MustRegister(finalized, gateway, duration)
	return &CheckoutMetrics{OrdersFinalized: finalized, GatewayCalls: gateway, StepDurationMS: duration}
}

func Handler() http.Handler {
	return promhttp.Handler()
}
