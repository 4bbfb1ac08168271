// Package llm provides the model backend implementations for the comparison
// engine. It abstracts the OpenAI, Anthropic, and Google Gemini APIs behind a
// single CoreModel interface and layers cross-cutting concerns (timeouts,
// rate limiting, metrics, tracing) on top through a middleware chain, so the
// engine can fan a prompt out to a heterogeneous fleet through one uniform
// surface.
//
// Basic usage:
//
//	client, err := llm.NewClient("openai", llm.ClientConfig{
//	    APIKey: os.Getenv("OPENAI_API_KEY"),
//	    Model:  "gpt-4o-mini",
//	})
//	advice, err := client.Complete(ctx, prompt, nil)
//
// With middleware:
//
//	client, err := llm.NewClient("anthropic", llm.ClientConfig{
//	    APIKey: os.Getenv("ANTHROPIC_API_KEY"),
//	    Model:  "claude-3-5-sonnet-20241022",
//	    Middleware: []llm.Middleware{
//	        llm.RateLimitMiddleware(10, 20),
//	        llm.MetricsMiddleware(collector),
//	    },
//	})
package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/finadvisor/modelcompare/internal/ports"
)

// CoreModel is the minimal surface a provider must implement. Middleware
// wraps any conforming implementation, so providers stay free of
// cross-cutting concerns.
type CoreModel interface {
	// DoRequest sends a prompt to the provider and returns the generated
	// text. The opts map carries provider-tunable parameters such as
	// temperature, max_tokens, or a system prompt.
	DoRequest(ctx context.Context, prompt string, opts map[string]any) (string, error)

	// GetModel returns the currently configured model name.
	GetModel() string

	// SetModel switches the model for subsequent requests.
	SetModel(model string)
}

// Middleware wraps a CoreModel to add behavior around every request.
type Middleware func(CoreModel) CoreModel

// ClientConfig holds everything needed to construct a backend client.
type ClientConfig struct {
	// APIKey authenticates requests to the provider.
	APIKey string

	// Model names the model to query. Empty selects the provider default.
	Model string

	// BaseURL overrides the provider's default endpoint when set.
	BaseURL string

	// Timeout bounds each HTTP request at the transport level.
	// Zero means no transport-level timeout.
	Timeout time.Duration

	// Middleware is applied in order: the first entry is outermost.
	Middleware []Middleware
}

// Client adapts a middleware-wrapped CoreModel to the ports.ModelClient
// interface the engine dispatches through.
type Client struct {
	core CoreModel
}

var _ ports.ModelClient = (*Client)(nil)

// NewClient builds a client for the named provider type with the middleware
// chain assembled. Unknown provider types and missing credentials fail here,
// at construction, not at dispatch time.
func NewClient(providerType string, config ClientConfig) (*Client, error) {
	if config.APIKey == "" {
		return nil, ErrEmptyAPIKey
	}

	factory, ok := providerFactories[providerType]
	if !ok {
		return nil, fmt.Errorf("unknown provider: %s", providerType)
	}

	core, err := factory(config)
	if err != nil {
		return nil, fmt.Errorf("creating %s provider: %w", providerType, err)
	}

	// Reverse application makes the first configured middleware the
	// outermost wrapper.
	for i := len(config.Middleware) - 1; i >= 0; i-- {
		core = config.Middleware[i](core)
	}

	return &Client{core: core}, nil
}

// Complete sends a prompt and returns the model's raw text response.
func (c *Client) Complete(ctx context.Context, prompt string, options map[string]any) (string, error) {
	return c.core.DoRequest(ctx, prompt, options)
}

// GetModel returns the model name of the underlying provider.
func (c *Client) GetModel() string { return c.core.GetModel() }

// ProviderFactory constructs a CoreModel from configuration.
type ProviderFactory func(ClientConfig) (CoreModel, error)

// providerFactories maps provider type names to their factories.
// Providers register themselves from init.
var providerFactories = map[string]ProviderFactory{}

// RegisterProviderFactory registers a provider factory under a type name.
// Later registrations under the same name replace earlier ones.
func RegisterProviderFactory(providerType string, factory ProviderFactory) {
	providerFactories[providerType] = factory
}
