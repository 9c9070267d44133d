package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Labels: format, outcome (ok, parse_error, transform_error, render_error)
	documentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "numref",
		Name:      "documents_total",
		Help:      "Documents processed by outcome",
	}, []string{"format", "outcome"})

	// Labels: family (section, figure, table)
	numberedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "numref",
		Name:      "numbered_units_total",
		Help:      "Units that received a new number",
	}, []string{"family"})

	// Labels: kind (section, figure)
	unresolvedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "numref",
		Name:      "unresolved_references_total",
		Help:      "References whose target id was not found",
	}, []string{"kind"})

	transformDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "numref",
		Name:      "transform_duration_seconds",
		Help:      "Time spent in each transformation",
		Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	}, []string{"transformation"})

	// Labels: status (completed, failed, rejected)
	jobsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "numref",
		Name:      "jobs_total",
		Help:      "Asynchronous jobs by final status",
	}, []string{"status"})

	queueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "numref",
		Name:      "queue_depth",
		Help:      "Jobs waiting for a worker",
	})
)

// RecordDocument counts one processed document.
func RecordDocument(format, outcome string) {
	documentsTotal.WithLabelValues(format, outcome).Inc()
}

// RecordTransform records how long one transformation took.
func RecordTransform(name string, durationSec float64) {
	transformDuration.WithLabelValues(name).Observe(durationSec)
}

// RecordNumbered adds n freshly numbered units of a family.
func RecordNumbered(family string, n int) {
	numberedTotal.WithLabelValues(family).Add(float64(n))
}

// RecordUnresolved counts one unresolved reference.
func RecordUnresolved(kind string) {
	unresolvedTotal.WithLabelValues(kind).Inc()
}

// RecordJob counts a job reaching a final status.
func RecordJob(status JobStatus) {
	jobsTotal.WithLabelValues(string(status)).Inc()
}

func setQueueDepth(n int) {
	queueDepth.Set(float64(n))
}
