// Package engine implements the multi-model comparison pipeline: a registry
// of configured backends, a concurrent dispatcher, response normalization,
// quality scoring, and deterministic ranking into a ComparisonResult.
package engine

import (
	"fmt"
	"time"

	"github.com/finadvisor/modelcompare/internal/domain"
	"github.com/finadvisor/modelcompare/internal/ports"
)

const (
	// DefaultBackendTimeout bounds a single attempt against one backend.
	DefaultBackendTimeout = 30 * time.Second

	// DefaultRetryBaseDelay is the base for exponential retry backoff.
	DefaultRetryBaseDelay = 250 * time.Millisecond

	// maxBackoffShift caps the exponent so the delay multiplier cannot
	// overflow.
	maxBackoffShift = 16
)

// BackendConfig describes one registered model backend. Instances are
// immutable after registry construction.
type BackendConfig struct {
	// Name uniquely identifies the backend within a comparison run and in
	// serialized results.
	Name string

	// Client is the opaque invocation capability for this backend.
	Client ports.ModelClient

	// Timeout bounds each individual attempt. Zero selects
	// DefaultBackendTimeout.
	Timeout time.Duration

	// MaxRetries is the number of additional attempts after the first
	// failure. Retries never extend past the shared dispatch deadline.
	MaxRetries int

	// RetryBaseDelay is the base delay for exponential backoff between
	// attempts. Zero selects DefaultRetryBaseDelay.
	RetryBaseDelay time.Duration
}

// BackendRegistry exposes the ordered set of configured backends.
// It is read-only after construction; registry order participates in the
// ranker's final tie-break.
type BackendRegistry struct {
	backends []BackendConfig
}

// NewBackendRegistry validates and freezes the backend list.
// An empty list is the one condition under which the engine aborts before
// any network activity, returning a ConfigurationError.
func NewBackendRegistry(backends []BackendConfig) (*BackendRegistry, error) {
	if len(backends) == 0 {
		return nil, domain.NewConfigurationError("registry", domain.ErrNoBackends)
	}

	seen := make(map[string]struct{}, len(backends))
	normalized := make([]BackendConfig, len(backends))
	for i, b := range backends {
		if b.Name == "" {
			return nil, domain.NewConfigurationError("registry",
				fmt.Errorf("backend at index %d has no name", i))
		}
		if b.Client == nil {
			return nil, domain.NewConfigurationError("registry",
				fmt.Errorf("backend %q has no client", b.Name))
		}
		if _, dup := seen[b.Name]; dup {
			return nil, domain.NewConfigurationError("registry",
				fmt.Errorf("duplicate backend name %q", b.Name))
		}
		seen[b.Name] = struct{}{}

		if b.Timeout <= 0 {
			b.Timeout = DefaultBackendTimeout
		}
		if b.MaxRetries < 0 {
			b.MaxRetries = 0
		}
		if b.RetryBaseDelay <= 0 {
			b.RetryBaseDelay = DefaultRetryBaseDelay
		}
		normalized[i] = b
	}

	return &BackendRegistry{backends: normalized}, nil
}

// Backends returns a copy of the ordered backend list.
func (r *BackendRegistry) Backends() []BackendConfig {
	out := make([]BackendConfig, len(r.backends))
	copy(out, r.backends)
	return out
}

// Size returns the number of configured backends.
func (r *BackendRegistry) Size() int { return len(r.backends) }
