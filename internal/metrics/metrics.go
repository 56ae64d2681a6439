// Package metrics provides Prometheus metrics for the news analyzer.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "newsanalyzer"

var (
	// UpsertsTotal counts stored articles by the status they ended the ingest step in.
	UpsertsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "article_upserts_total",
			Help:      "Total number of article upserts by resulting status",
		},
		[]string{"status"},
	)

	// AnalysesTotal counts analyze outcomes: analyzed, rejected, degraded, error.
	AnalysesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Total number of analysis attempts by outcome",
		},
		[]string{"outcome"},
	)

	// ErrorsTotal counts transient failures by operation.
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Total number of transient errors",
		},
		[]string{"operation"},
	)

	// StepDuration measures pipeline step duration.
	StepDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "step_duration_seconds",
			Help:      "Duration of pipeline steps in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300, 600},
		},
		[]string{"step"},
	)

	// TrendScored is the number of results scored by the last trend pass.
	TrendScored = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "trend_scored_results",
			Help:      "Number of analysis results scored by the last trend pass",
		},
	)
)

// RecordUpsert records one stored article.
func RecordUpsert(status string) {
	UpsertsTotal.WithLabelValues(status).Inc()
}

// RecordAnalysis records one analysis outcome.
func RecordAnalysis(outcome string) {
	AnalysesTotal.WithLabelValues(outcome).Inc()
}

// RecordError records a transient error.
func RecordError(operation string) {
	ErrorsTotal.WithLabelValues(operation).Inc()
}

// ObserveStep records how long a pipeline step took.
func ObserveStep(step string, started time.Time) {
	StepDuration.WithLabelValues(step).Observe(time.Since(started).Seconds())
}

// SetTrendScored records the size of the last trend pass.
func SetTrendScored(n int) {
	TrendScored.Set(float64(n))
}
