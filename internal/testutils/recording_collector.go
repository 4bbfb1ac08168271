package testutils

import (
	"sync"
	"time"
)

// RecordingCollector is an in-memory ports.MetricsCollector for asserting
// what the engine records. Safe for concurrent use.
type RecordingCollector struct {
	mu         sync.Mutex
	latencies  map[string][]time.Duration
	counters   map[string]float64
	gauges     map[string]float64
	histograms map[string][]float64
}

// NewRecordingCollector creates an empty RecordingCollector.
func NewRecordingCollector() *RecordingCollector {
	return &RecordingCollector{
		latencies:  make(map[string][]time.Duration),
		counters:   make(map[string]float64),
		gauges:     make(map[string]float64),
		histograms: make(map[string][]float64),
	}
}

// RecordLatency stores an operation duration.
func (r *RecordingCollector) RecordLatency(op string, d time.Duration, _ map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.latencies[op] = append(r.latencies[op], d)
}

// RecordCounter accumulates a counter value.
func (r *RecordingCollector) RecordCounter(metric string, value float64, _ map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counters[metric] += value
}

// RecordGauge stores the latest gauge value.
func (r *RecordingCollector) RecordGauge(metric string, value float64, _ map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gauges[metric] = value
}

// RecordHistogram stores an observed value.
func (r *RecordingCollector) RecordHistogram(metric string, value float64, _ map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.histograms[metric] = append(r.histograms[metric], value)
}

// LatencyCount returns how many durations were recorded for an operation.
func (r *RecordingCollector) LatencyCount(op string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.latencies[op])
}

// CounterValue returns the accumulated value of a counter.
func (r *RecordingCollector) CounterValue(metric string) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counters[metric]
}

// GaugeValue returns the latest value of a gauge.
func (r *RecordingCollector) GaugeValue(metric string) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gauges[metric]
}

// HistogramCount returns how many values were observed for a histogram.
func (r *RecordingCollector) HistogramCount(metric string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.histograms[metric])
}
