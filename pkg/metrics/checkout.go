package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics tracks cart mutations and checkout wizard progress.
type CheckoutMetrics struct {
	cartMutations      *prometheus.CounterVec
	stageAdvances      *prometheus.CounterVec
	validationFailures *prometheus.CounterVec
	ordersPlaced       prometheus.Counter
	orderFailures      prometheus.Counter
	submitDuration     prometheus.Histogram
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	m := &CheckoutMetrics{
		cartMutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cart_mutations_total",
			Help: "Cart mutations by operation.",
		}, []string{"op"}),
		stageAdvances: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "checkout_stage_advance_total",
			Help: "Checkout wizard stage transitions.",
		}, []string{"from", "to"}),
		validationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "checkout_validation_failure_total",
			Help: "Checkout stages blocked by field validation.",
		}, []string{"stage"}),
		ordersPlaced: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "checkout_orders_placed_total",
			Help: "Orders accepted by the order submitter.",
		}),
		orderFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "checkout_order_failures_total",
			Help: "Order submissions that failed after all retries.",
		}),
		submitDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "checkout_order_submit_seconds",
			Help:    "Time spent submitting orders, including retries.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(m.cartMutations, m.stageAdvances, m.validationFailures, m.ordersPlaced, m.orderFailures, m.submitDuration)
	return m
}

func (m *CheckoutMetrics) IncCartMutation(op string) {
	if m == nil || m.cartMutations == nil {
		return
	}
	m.cartMutations.WithLabelValues(normalizeLabel(op)).Inc()
}

func (m *CheckoutMetrics) IncStageAdvance(from, to string) {
	if m == nil || m.stageAdvances == nil {
		return
	}
	m.stageAdvances.WithLabelValues(normalizeLabel(from), normalizeLabel(to)).Inc()
}

func (m *CheckoutMetrics) IncValidationFailure(stage string) {
	if m == nil || m.validationFailures == nil {
		return
	}
	m.validationFailures.WithLabelValues(normalizeLabel(stage)).Inc()
}

// ObserveOrder records a finished submission and its outcome.
func (m *CheckoutMetrics) ObserveOrder(duration time.Duration, err error) {
	if m == nil || m.submitDuration == nil {
		return
	}
	m.submitDuration.Observe(duration.Seconds())
	if err != nil {
		m.orderFailures.Inc()
		return
	}
	m.ordersPlaced.Inc()
}
