package llm

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel errors shared across providers.
var (
	// ErrEmptyAPIKey indicates a required API key was not provided.
	ErrEmptyAPIKey = errors.New("API key cannot be empty")
	// ErrEmptyResponse indicates the provider returned an empty body.
	ErrEmptyResponse = errors.New("empty response from API")
	// ErrNoResponseChoice indicates the provider returned no completion choices.
	ErrNoResponseChoice = errors.New("no response choices returned")
)

// ErrorType categorizes a provider failure. The category drives the
// dispatcher's retry decision: transient categories are retried within the
// backend's budget, permanent ones abort immediately.
type ErrorType int

const (
	// ErrorTypeUnknown is an error of undetermined category.
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeAuthentication is an invalid or rejected credential.
	ErrorTypeAuthentication
	// ErrorTypeRateLimit is a provider-side rate limit rejection.
	ErrorTypeRateLimit
	// ErrorTypeBadRequest is a malformed request or invalid parameter.
	ErrorTypeBadRequest
	// ErrorTypeNotFound is a missing resource, typically an unknown model.
	ErrorTypeNotFound
	// ErrorTypeServerError is a failure on the provider's side.
	ErrorTypeServerError
	// ErrorTypeContentPolicy is a request blocked by safety filters.
	ErrorTypeContentPolicy
	// ErrorTypeNetwork is a client-side connectivity problem.
	ErrorTypeNetwork
	// ErrorTypeTimeout is an attempt that exceeded its deadline.
	ErrorTypeTimeout
)

// ProviderError normalizes provider-specific failures into one shape with a
// classified type, so callers can make retry decisions without knowing which
// SDK produced the error.
type ProviderError struct {
	// Type classifies the failure.
	Type ErrorType
	// Provider names the backend that produced the error.
	Provider string
	// StatusCode is the HTTP status from the provider, when applicable.
	StatusCode int
	// Message is the user-facing description.
	Message string
	// WrappedError preserves the original error for errors.Is/As.
	WrappedError error
}

// Error satisfies the error interface.
func (e *ProviderError) Error() string {
	base := fmt.Sprintf("%s error", e.Provider)
	if e.StatusCode > 0 {
		base += fmt.Sprintf(" (HTTP %d)", e.StatusCode)
	}
	if ts := e.typeString(); ts != "" {
		base += fmt.Sprintf(" [%s]", ts)
	}
	if e.Message != "" {
		base += ": " + e.Message
	}
	if e.WrappedError != nil {
		base += fmt.Sprintf(": %v", e.WrappedError)
	}
	return base
}

// Unwrap exposes the wrapped error to errors.Is and errors.As.
func (e *ProviderError) Unwrap() error { return e.WrappedError }

// IsRetryable reports whether a failed request is worth repeating.
// Rate limits, server errors, network problems, and timeouts are transient;
// everything else is permanent for the duration of a run.
func (e *ProviderError) IsRetryable() bool {
	switch e.Type {
	case ErrorTypeRateLimit, ErrorTypeServerError, ErrorTypeNetwork, ErrorTypeTimeout:
		return true
	default:
		return false
	}
}

func (e *ProviderError) typeString() string {
	switch e.Type {
	case ErrorTypeAuthentication:
		return "authentication"
	case ErrorTypeRateLimit:
		return "rate_limit"
	case ErrorTypeBadRequest:
		return "bad_request"
	case ErrorTypeNotFound:
		return "not_found"
	case ErrorTypeServerError:
		return "server_error"
	case ErrorTypeContentPolicy:
		return "content_policy"
	case ErrorTypeNetwork:
		return "network"
	case ErrorTypeTimeout:
		return "timeout"
	default:
		return ""
	}
}

// NewProviderError builds a ProviderError.
func NewProviderError(provider string, errType ErrorType, statusCode int, message string, wrapped error) *ProviderError {
	return &ProviderError{
		Type:         errType,
		Provider:     provider,
		StatusCode:   statusCode,
		Message:      message,
		WrappedError: wrapped,
	}
}

// ErrorClassifier maps raw provider failures onto ProviderError instances
// using HTTP status codes and context state.
type ErrorClassifier struct {
	// Provider names the backend this classifier works for.
	Provider string
}

// ClassifyHTTPError classifies an error by its HTTP status code.
func (ec *ErrorClassifier) ClassifyHTTPError(statusCode int, message string, err error) *ProviderError {
	var errType ErrorType
	switch statusCode {
	case 401, 403:
		errType = ErrorTypeAuthentication
		message = fmt.Sprintf("%s authentication failed", ec.Provider)
	case 429:
		errType = ErrorTypeRateLimit
		message = fmt.Sprintf("%s rate limit exceeded", ec.Provider)
	case 400:
		errType = ErrorTypeBadRequest
	case 404:
		errType = ErrorTypeNotFound
	case 500, 502, 503, 504:
		errType = ErrorTypeServerError
	default:
		switch {
		case statusCode >= 400 && statusCode < 500:
			errType = ErrorTypeBadRequest
		case statusCode >= 500:
			errType = ErrorTypeServerError
		default:
			errType = ErrorTypeUnknown
		}
	}
	return NewProviderError(ec.Provider, errType, statusCode, message, err)
}

// ClassifyContextError classifies context cancellation and deadline errors.
func (ec *ErrorClassifier) ClassifyContextError(err error) *ProviderError {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return NewProviderError(ec.Provider, ErrorTypeTimeout, 0, "request deadline exceeded", err)
	case errors.Is(err, context.Canceled):
		return NewProviderError(ec.Provider, ErrorTypeNetwork, 0, "request canceled", err)
	default:
		return NewProviderError(ec.Provider, ErrorTypeUnknown, 0, "", err)
	}
}
