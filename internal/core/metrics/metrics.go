package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "storefront"

// Outcome labels shared by the use-case collectors.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomePending = "pending"
	OutcomeError   = "error"
)

// Metrics groups the application collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	useCaseRequests *prometheus.CounterVec
	useCaseDuration *prometheus.HistogramVec
	stockDebits     *prometheus.CounterVec
	shipments       *prometheus.CounterVec
	outbound        *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		useCaseRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "usecase_requests_total",
			Help:      "Order use-case invocations by outcome.",
		}, []string{"use_case", "outcome"}),
		useCaseDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "usecase_duration_seconds",
			Help:      "Order use-case latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"use_case"}),
		stockDebits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_debit_total",
			Help:      "Inventory debit attempts by result.",
		}, []string{"result"}),
		shipments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "shipment_attempts_total",
			Help:      "Shipment creation attempts by result.",
		}, []string{"result"}),
		outbound: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbound_requests_total",
			Help:      "Outbound HTTP calls by host and status code.",
		}, []string{"host", "code"}),
	}

	reg.MustRegister(m.useCaseRequests, m.useCaseDuration, m.stockDebits, m.shipments, m.outbound)
	return m
}

// ObserveUseCase records one use-case invocation.
func (m *Metrics) ObserveUseCase(useCase, outcome string, started time.Time) {
	if m == nil {
		return
	}
	m.useCaseRequests.WithLabelValues(useCase, outcome).Inc()
	m.useCaseDuration.WithLabelValues(useCase).Observe(time.Since(started).Seconds())
}

// StockDebit records a debit result (applied, insufficient, replayed, error).
func (m *Metrics) StockDebit(result string) {
	if m == nil {
		return
	}
	m.stockDebits.WithLabelValues(result).Inc()
}

// ShipmentAttempt records a shipment creation result.
func (m *Metrics) ShipmentAttempt(result string) {
	if m == nil {
		return
	}
	m.shipments.WithLabelValues(result).Inc()
}

// OutboundRequest records an outbound HTTP call. code is "error" on transport failure.
func (m *Metrics) OutboundRequest(host, code string) {
	if m == nil {
		return
	}
	m.outbound.WithLabelValues(host, code).Inc()
}
