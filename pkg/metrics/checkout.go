package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Checkout outcome labels.
const (
	OutcomeCreated   = "created"
	OutcomeReused    = "reused"
	OutcomeRejected  = "rejected"
	OutcomeFailed    = "failed"
	OutcomeConfirmed = "confirmed"
	OutcomeReplayed  = "replayed"
	OutcomeCancelled = "cancelled"
	OutcomeExpired   = "expired"
)

// CheckoutMetrics counts payment session lifecycle transitions.
type CheckoutMetrics struct {
	sessions      *prometheus.CounterVec
	confirmations *prometheus.CounterVec
	webhooks      *prometheus.CounterVec
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	sessions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_checkout_sessions_total",
		Help: "Checkout submissions by outcome.",
	}, []string{"outcome"})
	confirmations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_checkout_confirmations_total",
		Help: "Payment confirmations by source and outcome.",
	}, []string{"source", "outcome"})
	webhooks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_webhook_events_total",
		Help: "Payment provider webhook events by type and outcome.",
	}, []string{"type", "outcome"})
	reg.MustRegister(sessions, confirmations, webhooks)
	return &CheckoutMetrics{
		sessions:      sessions,
		confirmations: confirmations,
		webhooks:      webhooks,
	}
}

// IncSession records a SubmitCheckout outcome.
func (m *CheckoutMetrics) IncSession(outcome string) {
	if m == nil || m.sessions == nil {
		return
	}
	m.sessions.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncConfirmation records a confirmation outcome from the given source (redirect, webhook, expiry).
func (m *CheckoutMetrics) IncConfirmation(source, outcome string) {
	if m == nil || m.confirmations == nil {
		return
	}
	m.confirmations.WithLabelValues(normalizeLabel(source), normalizeLabel(outcome)).Inc()
}

// IncWebhook records a webhook event handling outcome.
func (m *CheckoutMetrics) IncWebhook(eventType, outcome string) {
	if m == nil || m.webhooks == nil {
		return
	}
	m.webhooks.WithLabelValues(normalizeLabel(eventType), normalizeLabel(outcome)).Inc()
}
