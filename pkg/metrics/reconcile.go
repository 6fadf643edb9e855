package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ReconcileMetrics records metadata for reconciliation runs.
type ReconcileMetrics struct {
	duration   *prometheus.HistogramVec
	reconciled *prometheus.CounterVec
	failed     *prometheus.CounterVec
	runs       *prometheus.CounterVec
}

// NewReconcileMetrics registers the reconciliation metrics on the provided registerer.
func NewReconcileMetrics(reg prometheus.Registerer) *ReconcileMetrics {
	if reg == nil {
		return &ReconcileMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "reconcile_duration_seconds",
		Help:    "Duration of reconciliation runs in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"trigger"})
	reconciled := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reconcile_orders_reconciled",
		Help: "Orders successfully re-rendered during reconciliation.",
	}, []string{"trigger"})
	failed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reconcile_orders_failed",
		Help: "Orders that failed to re-render during reconciliation.",
	}, []string{"trigger"})
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reconcile_runs",
		Help: "Reconciliation run executions by outcome.",
	}, []string{"trigger", "outcome"})
	reg.MustRegister(duration, reconciled, failed, runs)
	return &ReconcileMetrics{
		duration:   duration,
		reconciled: reconciled,
		failed:     failed,
		runs:       runs,
	}
}

// ObserveDuration records the duration for a run started by the named trigger.
func (r *ReconcileMetrics) ObserveDuration(trigger string, duration time.Duration) {
	if r == nil || r.duration == nil {
		return
	}
	r.duration.WithLabelValues(normalizeLabel(trigger)).Observe(duration.Seconds())
}

// AddResults records per-order outcomes for a run.
func (r *ReconcileMetrics) AddResults(trigger string, reconciled, failed int) {
	if r == nil {
		return
	}
	label := normalizeLabel(trigger)
	if r.reconciled != nil {
		r.reconciled.WithLabelValues(label).Add(float64(reconciled))
	}
	if r.failed != nil {
		r.failed.WithLabelValues(label).Add(float64(failed))
	}
}

// IncRun increments the run counter with the given outcome.
func (r *ReconcileMetrics) IncRun(trigger, outcome string) {
	if r == nil || r.runs == nil {
		return
	}
	r.runs.WithLabelValues(normalizeLabel(trigger), normalizeLabel(outcome)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
