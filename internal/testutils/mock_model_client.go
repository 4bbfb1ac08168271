// Package testutils provides shared test doubles for the comparison engine.
package testutils

import (
	"context"
	"sync"
	"time"
)

// MockModelClient is a scripted ports.ModelClient for tests. It can return a
// fixed response, inject latency, fail a configurable number of times before
// succeeding, or fail always. Safe for concurrent use.
type MockModelClient struct {
	mu sync.Mutex

	// Model is the name reported by GetModel.
	Model string

	// Response is the text returned on success.
	Response string

	// Latency is slept (context-aware) before every reply.
	Latency time.Duration

	// Err, when set, is returned on every call unless FailuresBeforeSuccess
	// limits it.
	Err error

	// FailuresBeforeSuccess makes the first N calls return Err and
	// subsequent calls succeed. Zero with a non-nil Err means fail always.
	FailuresBeforeSuccess int

	calls int
}

// Complete returns the scripted response after the configured latency,
// honoring context cancellation during the sleep.
func (m *MockModelClient) Complete(ctx context.Context, prompt string, options map[string]any) (string, error) {
	m.mu.Lock()
	m.calls++
	call := m.calls
	latency := m.Latency
	scriptedErr := m.Err
	failures := m.FailuresBeforeSuccess
	response := m.Response
	m.mu.Unlock()

	if latency > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(latency):
		}
	}
	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	if scriptedErr != nil && (failures == 0 || call <= failures) {
		return "", scriptedErr
	}
	return response, nil
}

// GetModel returns the scripted model name.
func (m *MockModelClient) GetModel() string {
	if m.Model == "" {
		return "mock-model"
	}
	return m.Model
}

// Calls returns how many times Complete has been invoked.
func (m *MockModelClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
