// Package metrics provides the Prometheus implementation of the engine's
// MetricsCollector port.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/finadvisor/modelcompare/internal/ports"
)

// PrometheusMetrics implements ports.MetricsCollector on Prometheus vectors,
// covering comparison runs, per-backend calls, and composite score
// distributions.
type PrometheusMetrics struct {
	operationLatency *prometheus.HistogramVec
	operationCounter *prometheus.CounterVec
	stateGauges      *prometheus.GaugeVec
	compositeScores  *prometheus.HistogramVec
}

// NewPrometheusMetrics creates a collector registered on the given
// registerer. A nil registerer selects the default global registry.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &PrometheusMetrics{
		operationLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "modelcompare_operation_duration_seconds",
				Help:    "Latency of comparison operations and backend calls.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "backend"},
		),
		operationCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "modelcompare_operations_total",
				Help: "Count of comparison operations, backend calls, and failures.",
			},
			[]string{"operation", "backend"},
		),
		stateGauges: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "modelcompare_state",
				Help: "Point-in-time values such as valid responses per run.",
			},
			[]string{"metric"},
		),
		compositeScores: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "modelcompare_composite_score",
				Help:    "Distribution of composite quality scores per backend.",
				Buckets: prometheus.LinearBuckets(0, 0.1, 11),
			},
			[]string{"backend"},
		),
	}
}

// RecordLatency records an operation duration.
func (pm *PrometheusMetrics) RecordLatency(operation string, duration time.Duration, labels map[string]string) {
	pm.operationLatency.WithLabelValues(operation, backendLabel(labels)).Observe(duration.Seconds())
}

// RecordCounter increments an operation counter.
func (pm *PrometheusMetrics) RecordCounter(metric string, value float64, labels map[string]string) {
	pm.operationCounter.WithLabelValues(metric, backendLabel(labels)).Add(value)
}

// RecordGauge sets a state gauge.
func (pm *PrometheusMetrics) RecordGauge(metric string, value float64, _ map[string]string) {
	pm.stateGauges.WithLabelValues(metric).Set(value)
}

// RecordHistogram records a value distribution. Composite scores get their
// own bounded buckets; everything else lands in the latency histogram.
func (pm *PrometheusMetrics) RecordHistogram(metric string, value float64, labels map[string]string) {
	if metric == "composite_score" {
		pm.compositeScores.WithLabelValues(backendLabel(labels)).Observe(value)
		return
	}
	pm.operationLatency.WithLabelValues(metric, backendLabel(labels)).Observe(value)
}

func backendLabel(labels map[string]string) string {
	if backend, ok := labels["backend"]; ok {
		return backend
	}
	return "all"
}

var _ ports.MetricsCollector = (*PrometheusMetrics)(nil)
