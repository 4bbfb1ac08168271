package llm

import (
	"fmt"
	"net/url"
	"sync"
	"time"
)

// Parameter bounds shared across providers.
const (
	// DefaultMaxTokens caps generation length when the caller does not
	// specify one. Financial advice payloads fit comfortably under this.
	DefaultMaxTokens = 2048

	// MinTimeout and MaxTimeout bound per-request transport timeouts.
	MinTimeout = 1 * time.Second
	MaxTimeout = 10 * time.Minute

	// MinPenalty and MaxPenalty bound frequency/presence penalties.
	MinPenalty = -2.0
	MaxPenalty = 2.0
)

// BaseProvider carries the mutable model name shared by all providers.
// Safe for concurrent use.
type BaseProvider struct {
	mu    sync.RWMutex
	model string
}

// GetModel returns the configured model name.
func (b *BaseProvider) GetModel() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.model
}

// SetModel switches the model for subsequent requests.
func (b *BaseProvider) SetModel(model string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.model = model
}

// RequestOptions is the provider-neutral form of per-request parameters.
type RequestOptions struct {
	// MaxTokens caps the generation length.
	MaxTokens int
	// Model overrides the provider's configured model for this request.
	Model string
	// Temperature controls sampling randomness; nil keeps the provider default.
	Temperature *float64
	// TopP is nucleus sampling; nil keeps the provider default.
	TopP *float64
	// System is the system prompt, where the provider supports one.
	System string
	// Extra carries provider-specific options not in the standard set.
	Extra map[string]any
}

// ParseRequestOptions extracts standardized parameters from a generic
// options map, defaulting anything missing or out of range. Unrecognized
// keys land in Extra for provider-specific handling.
func ParseRequestOptions(opts map[string]any, defaultModel string) RequestOptions {
	options := RequestOptions{
		MaxTokens: extractInt(opts, "max_tokens", DefaultMaxTokens, func(v int) bool { return v > 0 }),
		Model:     extractString(opts, "model", defaultModel),
		System:    extractString(opts, "system", ""),
		Extra:     make(map[string]any),
	}

	if temp, ok := extractFloat(opts, "temperature", isValidTemperature); ok {
		options.Temperature = &temp
	}
	if topP, ok := extractFloat(opts, "top_p", isValidTopP); ok {
		options.TopP = &topP
	}

	for k, v := range opts {
		switch k {
		case "max_tokens", "model", "system", "temperature", "top_p":
			// Already handled above.
		default:
			options.Extra[k] = v
		}
	}
	return options
}

func extractInt(opts map[string]any, key string, def int, valid func(int) bool) int {
	if v, ok := opts[key].(int); ok && (valid == nil || valid(v)) {
		return v
	}
	return def
}

func extractString(opts map[string]any, key, def string) string {
	if v, ok := opts[key].(string); ok && v != "" {
		return v
	}
	return def
}

func extractFloat(opts map[string]any, key string, valid func(float64) bool) (float64, bool) {
	v, ok := opts[key].(float64)
	if !ok || (valid != nil && !valid(v)) {
		return 0, false
	}
	return v, true
}

// isValidTemperature accepts the widest range any provider supports; each
// provider clamps further to its own limits.
func isValidTemperature(v float64) bool { return v >= 0.0 && v <= 2.0 }

func isValidTopP(v float64) bool { return v >= 0.0 && v <= 1.0 }

// ValidateBaseURL checks that an endpoint override is an absolute http(s)
// URL. An empty string is valid and means "use the provider default".
func ValidateBaseURL(baseURL string) (string, error) {
	if baseURL == "" {
		return "", nil
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid URL format: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("URL scheme must be http or https, got %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("URL must include a host")
	}
	return parsed.String(), nil
}

// ValidateTimeout clamps a transport timeout into [MinTimeout, MaxTimeout].
// Zero or negative means "no transport timeout" and passes through as zero.
func ValidateTimeout(timeout time.Duration) time.Duration {
	if timeout <= 0 {
		return 0
	}
	if timeout < MinTimeout {
		return MinTimeout
	}
	if timeout > MaxTimeout {
		return MaxTimeout
	}
	return timeout
}

// SafeFloat32 converts a numeric any-value to float32, rejecting values that
// would overflow or lose significant precision.
func SafeFloat32(value any) (float32, bool) {
	switch v := value.(type) {
	case float32:
		return v, true
	case float64:
		if v > 3.4e38 || v < -3.4e38 {
			return 0, false
		}
		return float32(v), true
	case int:
		return float32(v), true
	default:
		return 0, false
	}
}

// ClampFloat64 restricts val to [min, max].
func ClampFloat64(val, min, max float64) float64 {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// ClampInt restricts val to [min, max].
func ClampInt(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
