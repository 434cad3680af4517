package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics records order lifecycle events.
type OrderMetrics struct {
	created    *prometheus.CounterVec
	cancelled  prometheus.Counter
	settled    prometheus.Counter
	outOfStock prometheus.Counter
}

// NewOrderMetrics registers the order metrics on the provided registerer.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	created := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Orders created, labelled by payment method.",
	}, []string{"payment_method"})
	cancelled := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_cancelled_total",
		Help: "Orders cancelled within the cancellation window.",
	})
	settled := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "payments_settled_total",
		Help: "Gateway settlements that confirmed a pending order.",
	})
	outOfStock := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_rejected_out_of_stock_total",
		Help: "Checkout attempts rejected for insufficient stock.",
	})
	reg.MustRegister(created, cancelled, settled, outOfStock)
	return &OrderMetrics{
		created:    created,
		cancelled:  cancelled,
		settled:    settled,
		outOfStock: outOfStock,
	}
}

// IncCreated increments the created counter for the payment method.
func (m *OrderMetrics) IncCreated(paymentMethod string) {
	if m == nil || m.created == nil {
		return
	}
	m.created.WithLabelValues(normalizeLabel(paymentMethod)).Inc()
}

// IncCancelled increments the cancelled counter.
func (m *OrderMetrics) IncCancelled() {
	if m == nil || m.cancelled == nil {
		return
	}
	m.cancelled.Inc()
}

// IncSettled increments the settled counter.
func (m *OrderMetrics) IncSettled() {
	if m == nil || m.settled == nil {
		return
	}
	m.settled.Inc()
}

// IncOutOfStock increments the out-of-stock rejection counter.
func (m *OrderMetrics) IncOutOfStock() {
	if m == nil || m.outOfStock == nil {
		return
	}
	m.outOfStock.Inc()
}

func normalizeLabel(value string) string {
	trimmed := strings.TrimSpace(strings.ToLower(value))
	if trimmed == "" {
		return "unknown"
	}
	return trimmed
}
