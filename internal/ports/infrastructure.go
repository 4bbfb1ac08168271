// Package ports defines the interfaces through which the comparison engine
// consumes infrastructure: model backends and metrics sinks. Implementations
// live under infrastructure/ and in test doubles.
package ports

import (
	"context"
	"time"
)

// ModelClient is the uniform invocation capability every backend exposes.
// Implementations handle provider-specific authentication, request formatting,
// and response parsing; the engine treats them as opaque text-in/text-out
// functions.
type ModelClient interface {
	// Complete sends a prompt to the model and returns the raw generated
	// text. The context carries the dispatch deadline; implementations must
	// honor cancellation. The options map allows provider-specific settings
	// without changing the interface, commonly:
	//   - "temperature": float64
	//   - "max_tokens": int
	//   - "system": string
	Complete(ctx context.Context, prompt string, options map[string]any) (string, error)

	// GetModel returns the model identifier used by this client, for
	// logging and result attribution.
	GetModel() string
}

// MetricsCollector abstracts the metrics backend so the engine does not
// depend on Prometheus directly. The infrastructure/metrics package provides
// the production implementation.
type MetricsCollector interface {
	// RecordLatency records the duration of an operation.
	RecordLatency(operation string, duration time.Duration, labels map[string]string)

	// RecordCounter increments a counter metric.
	RecordCounter(metric string, value float64, labels map[string]string)

	// RecordGauge sets the current value of a gauge metric.
	RecordGauge(metric string, value float64, labels map[string]string)

	// RecordHistogram records a value in a histogram, used for score and
	// latency distributions.
	RecordHistogram(metric string, value float64, labels map[string]string)
}
