package domain

import (
	"errors"
	"fmt"
)

// Configuration errors returned before any dispatch activity. These are the
// only errors the engine surfaces as error returns; per-backend failures are
// recorded as data on the corresponding response entry.
var (
	// ErrNoBackends indicates the registry holds no backends.
	ErrNoBackends = errors.New("no backends configured")

	// ErrNilContext indicates a nil inference context was supplied.
	ErrNilContext = errors.New("inference context is nil")

	// ErrEmptyContext indicates the inference context carries no profile or
	// goal data at all.
	ErrEmptyContext = errors.New("inference context is empty")
)

// ConfigurationError wraps a configuration problem with the component that
// rejected it. It satisfies errors.Is for the wrapped sentinel.
type ConfigurationError struct {
	// Component names the part of the engine that found the problem.
	Component string

	// Err is the underlying sentinel or validation error.
	Err error
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error in %s: %v", e.Component, e.Err)
}

// Unwrap returns the underlying error for errors.Is / errors.As chains.
func (e *ConfigurationError) Unwrap() error { return e.Err }

// NewConfigurationError creates a ConfigurationError for the given component.
func NewConfigurationError(component string, err error) *ConfigurationError {
	return &ConfigurationError{Component: component, Err: err}
}
