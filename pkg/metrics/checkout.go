package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics records checkout submissions and payment settlement outcomes.
type CheckoutMetrics struct {
	duration *prometheus.HistogramVec
	orders   *prometheus.CounterVec
	payments *prometheus.CounterVec
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkout_duration_seconds",
		Help:    "Duration of checkout submissions in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"payment_method"})
	orders := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_orders_total",
		Help: "Orders placed, labeled by payment method and outcome.",
	}, []string{"payment_method", "outcome"})
	payments := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_settlements_total",
		Help: "Payment callback/webhook settlements by outcome.",
	}, []string{"source", "outcome"})
	reg.MustRegister(duration, orders, payments)
	return &CheckoutMetrics{
		duration: duration,
		orders:   orders,
		payments: payments,
	}
}

// ObserveDuration records how long a checkout submission took.
func (c *CheckoutMetrics) ObserveDuration(paymentMethod string, duration time.Duration) {
	if c == nil || c.duration == nil {
		return
	}
	c.duration.WithLabelValues(normalizeLabel(paymentMethod)).Observe(duration.Seconds())
}

// IncOrder counts one checkout submission outcome.
func (c *CheckoutMetrics) IncOrder(paymentMethod, outcome string) {
	if c == nil || c.orders == nil {
		return
	}
	c.orders.WithLabelValues(normalizeLabel(paymentMethod), normalizeLabel(outcome)).Inc()
}

// IncSettlement counts one payment settlement outcome.
func (c *CheckoutMetrics) IncSettlement(source, outcome string) {
	if c == nil || c.payments == nil {
		return
	}
	c.payments.WithLabelValues(normalizeLabel(source), normalizeLabel(outcome)).Inc()
}

func normalizeLabel(value string) string {
	trimmed := strings.TrimSpace(strings.ToLower(value))
	if trimmed == "" {
		return "unknown"
	}
	return trimmed
}
