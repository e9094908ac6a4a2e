package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics records checkout workflow outcomes per post-payment step.
type CheckoutMetrics struct {
	stepDuration  *prometheus.HistogramVec
	stepSuccess   *prometheus.CounterVec
	stepFailure   *prometheus.CounterVec
	ordersCreated prometheus.Counter
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	stepDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkout_step_duration_seconds",
		Help:    "Duration of checkout post-payment steps in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"step"})
	stepSuccess := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_step_success",
		Help: "Successful checkout step executions.",
	}, []string{"step"})
	stepFailure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_step_failure",
		Help: "Failed checkout step executions.",
	}, []string{"step"})
	ordersCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "checkout_orders_created",
		Help: "Orders created through checkout.",
	})
	reg.MustRegister(stepDuration, stepSuccess, stepFailure, ordersCreated)
	return &CheckoutMetrics{
		stepDuration:  stepDuration,
		stepSuccess:   stepSuccess,
		stepFailure:   stepFailure,
		ordersCreated: ordersCreated,
	}
}

// ObserveStepDuration records the duration for the named step.
func (c *CheckoutMetrics) ObserveStepDuration(step string, duration time.Duration) {
	if c == nil || c.stepDuration == nil {
		return
	}
	c.stepDuration.WithLabelValues(normalizeLabel(step)).Observe(duration.Seconds())
}

// IncStepSuccess increments the success counter for the named step.
func (c *CheckoutMetrics) IncStepSuccess(step string) {
	if c == nil || c.stepSuccess == nil {
		return
	}
	c.stepSuccess.WithLabelValues(normalizeLabel(step)).Inc()
}

// IncStepFailure increments the failure counter for the named step.
func (c *CheckoutMetrics) IncStepFailure(step string) {
	if c == nil || c.stepFailure == nil {
		return
	}
	c.stepFailure.WithLabelValues(normalizeLabel(step)).Inc()
}

// IncOrdersCreated increments the created orders counter.
func (c *CheckoutMetrics) IncOrdersCreated() {
	if c == nil || c.ordersCreated == nil {
		return
	}
	c.ordersCreated.Inc()
}

func normalizeLabel(step string) string {
	if step == "" {
		return "unknown"
	}
	return step
}
