package engine

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/finadvisor/modelcompare/internal/domain"
	"github.com/finadvisor/modelcompare/internal/ports"
)

// DefaultDispatchDeadline bounds the entire fan-out phase when the
// configuration does not specify one.
const DefaultDispatchDeadline = 60 * time.Second

// Dispatcher fans a single prompt out to every registered backend
// concurrently under one shared deadline and collects exactly one
// RawModelResponse per backend. A hang or failure on one backend never
// delays or corrupts the result of another.
type Dispatcher struct {
	registry *BackendRegistry
	deadline time.Duration
	options  map[string]any
	metrics  ports.MetricsCollector
	tracer   trace.Tracer
}

// NewDispatcher creates a Dispatcher over the given registry.
// deadline bounds the whole dispatch phase; zero selects
// DefaultDispatchDeadline. options are forwarded verbatim to every backend
// call so all models are invoked identically. metrics may be nil.
func NewDispatcher(registry *BackendRegistry, deadline time.Duration, options map[string]any, metrics ports.MetricsCollector) *Dispatcher {
	if deadline <= 0 {
		deadline = DefaultDispatchDeadline
	}
	return &Dispatcher{
		registry: registry,
		deadline: deadline,
		options:  options,
		metrics:  metrics,
		tracer:   otel.Tracer("comparison-dispatcher"),
	}
}

// Dispatch issues one concurrent call per backend and returns after every
// backend has either completed or been abandoned at the shared deadline.
// The returned slice always has exactly registry-size entries in registry
// order; failures are recorded as data, never returned as an error.
func (d *Dispatcher) Dispatch(ctx context.Context, prompt string) []domain.RawModelResponse {
	backends := d.registry.Backends()

	ctx, span := d.tracer.Start(ctx, "Dispatcher.Dispatch",
		trace.WithAttributes(attribute.Int("backends.count", len(backends))),
	)
	defer span.End()

	dispatchCtx, cancel := context.WithTimeout(ctx, d.deadline)
	defer cancel()

	// Each goroutine owns exactly one pre-allocated slot, so the collection
	// needs no locking.
	results := make([]domain.RawModelResponse, len(backends))

	g := new(errgroup.Group)
	for i, backend := range backends {
		g.Go(func() error {
			results[i] = d.callBackend(dispatchCtx, backend, prompt)
			return nil
		})
	}
	// Join barrier: nothing downstream runs until every slot is filled.
	_ = g.Wait()

	for _, r := range results {
		d.recordOutcome(r)
	}
	return results
}

// callBackend runs the bounded retry loop for one backend. The per-attempt
// timeout comes from the backend config; the loop stops as soon as the
// shared dispatch deadline is exhausted, recording the elapsed time at
// abandonment.
func (d *Dispatcher) callBackend(ctx context.Context, backend BackendConfig, prompt string) domain.RawModelResponse {
	start := time.Now()

	var lastErr error
	for attempt := 0; attempt <= backend.MaxRetries; attempt++ {
		if ctx.Err() != nil {
			break
		}

		attemptCtx, cancel := context.WithTimeout(ctx, backend.Timeout)
		raw, err := backend.Client.Complete(attemptCtx, prompt, d.options)
		cancel()

		if err == nil {
			return domain.RawModelResponse{
				Backend: backend.Name,
				RawText: raw,
				Latency: time.Since(start),
			}
		}
		lastErr = err

		// Permanent failures (bad credentials, unknown model) never heal
		// within one run; retrying them only burns the shared deadline.
		var classified interface{ IsRetryable() bool }
		if errors.As(err, &classified) && !classified.IsRetryable() {
			break
		}

		// The shared deadline overrides the retry budget.
		if ctx.Err() != nil || attempt == backend.MaxRetries {
			break
		}

		select {
		case <-ctx.Done():
		case <-time.After(backoffDelay(backend.RetryBaseDelay, attempt)):
		}
	}

	errDesc := "dispatch deadline exceeded before completion"
	if lastErr != nil {
		errDesc = lastErr.Error()
	}
	return domain.RawModelResponse{
		Backend: backend.Name,
		Latency: time.Since(start),
		Err:     errDesc,
	}
}

// backoffDelay computes exponential backoff with ±25% jitter.
func backoffDelay(base time.Duration, attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt > maxBackoffShift {
		attempt = maxBackoffShift
	}
	delay := base << uint(attempt)

	// #nosec G404 - weak RNG is fine for jitter.
	jitter := time.Duration(rand.Float64() * float64(delay) * 0.5)
	return delay + jitter - delay/4
}

func (d *Dispatcher) recordOutcome(r domain.RawModelResponse) {
	if d.metrics == nil {
		return
	}
	labels := map[string]string{"backend": r.Backend}
	d.metrics.RecordLatency("backend_call", r.Latency, labels)
	if r.Failed() {
		d.metrics.RecordCounter("backend_failures", 1, labels)
	}
}
