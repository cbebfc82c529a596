package triage

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/linnemanlabs/corridor/internal/dispatch"
	"github.com/linnemanlabs/corridor/internal/plan"
)

// Metrics holds Prometheus metrics for the triage pipeline.
type Metrics struct {
	SubmitsTotal        *prometheus.CounterVec
	PlansTotal          *prometheus.CounterVec
	PlanActions         prometheus.Histogram
	ValidationFailures  *prometheus.CounterVec
	AdapterCallsTotal   *prometheus.CounterVec
	AdapterCallDuration *prometheus.HistogramVec
	FeedbackTotal       *prometheus.CounterVec
}

// NewMetrics registers and returns triage metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SubmitsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "corridor_submits_total",
			Help: "Total triage submissions by result.",
		}, []string{"result"}),
		PlansTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "corridor_plans_total",
			Help: "Total plans issued by corridor risk tier and action source.",
		}, []string{"risk", "source"}),
		PlanActions: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "corridor_plan_actions",
			Help:    "Recommended actions per issued plan.",
			Buckets: prometheus.LinearBuckets(0, 1, 11), // 0 .. 10
		}),
		ValidationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "corridor_validation_failures_total",
			Help: "Total contract validation failures by schema version.",
		}, []string{"version"}),
		AdapterCallsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "corridor_adapter_calls_total",
			Help: "Total adapter executions by capability and outcome.",
		}, []string{"capability", "status"}),
		AdapterCallDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "corridor_adapter_call_duration_seconds",
			Help:    "Duration of adapter executions in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms .. ~25s
		}, []string{"capability"}),
		FeedbackTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "corridor_feedback_total",
			Help: "Total accepted reviewer feedback by label.",
		}, []string{"label"}),
	}

	reg.MustRegister(
		m.SubmitsTotal,
		m.PlansTotal,
		m.PlanActions,
		m.ValidationFailures,
		m.AdapterCallsTotal,
		m.AdapterCallDuration,
		m.FeedbackTotal,
	)

	return m
}

// DispatchHooks returns dispatch hooks that increment the adapter metrics.
func (m *Metrics) DispatchHooks() dispatch.Hooks {
	return dispatch.Hooks{
		OnAdapterCall: func(capability string, status plan.ActionStatus, duration float64) {
			m.AdapterCallsTotal.WithLabelValues(capability, string(status)).Inc()
			m.AdapterCallDuration.WithLabelValues(capability).Observe(duration)
		},
	}
}
