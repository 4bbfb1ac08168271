package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestPrometheusMetricsRecording(t *testing.T) {
	reg := prometheus.NewRegistry()
	pm := NewPrometheusMetrics(reg)

	pm.RecordCounter("comparisons", 1, nil)
	pm.RecordCounter("backend_failures", 2, map[string]string{"backend": "gpt"})
	pm.RecordLatency("backend_call", 150*time.Millisecond, map[string]string{"backend": "gpt"})
	pm.RecordGauge("valid_responses", 3, nil)
	pm.RecordHistogram("composite_score", 0.82, map[string]string{"backend": "gpt"})

	assert.Equal(t, 1.0, testutil.ToFloat64(
		pm.operationCounter.WithLabelValues("comparisons", "all")))
	assert.Equal(t, 2.0, testutil.ToFloat64(
		pm.operationCounter.WithLabelValues("backend_failures", "gpt")))
	assert.Equal(t, 3.0, testutil.ToFloat64(
		pm.stateGauges.WithLabelValues("valid_responses")))

	count := testutil.CollectAndCount(pm.compositeScores)
	assert.Equal(t, 1, count)
}

func TestPrometheusMetricsNilRegisterer(t *testing.T) {
	// Must not panic; uses the default registry. A fresh metric name space is
	// not guaranteed here, so only construction is asserted.
	assert.NotPanics(t, func() {
		reg := prometheus.NewRegistry()
		NewPrometheusMetrics(reg)
	})
}
