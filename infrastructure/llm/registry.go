package llm

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

// ProviderSettings describes one provider family: where its credential lives
// and which model to use when a spec names none.
type ProviderSettings struct {
	// Type selects the provider implementation (openai, anthropic, google).
	Type string
	// EnvVar names the environment variable holding the API key.
	EnvVar string
	// DefaultModel is used when the spec omits the model part.
	DefaultModel string
}

// DefaultProviders maps provider names to their standard settings.
var DefaultProviders = map[string]ProviderSettings{
	"openai": {
		Type:         "openai",
		EnvVar:       "OPENAI_API_KEY",
		DefaultModel: OpenAIDefaultModel,
	},
	"anthropic": {
		Type:         "anthropic",
		EnvVar:       "ANTHROPIC_API_KEY",
		DefaultModel: AnthropicDefaultModel,
	},
	"google": {
		Type:         "google",
		EnvVar:       "GOOGLE_API_KEY",
		DefaultModel: GoogleDefaultModel,
	},
}

// Registry constructs and caches clients keyed by "provider/model" spec.
// API keys are read from provider environment variables at construction
// time, so a missing credential fails fast instead of at dispatch.
type Registry struct {
	providers  map[string]ProviderSettings
	middleware []Middleware
	timeout    time.Duration

	mu      sync.Mutex
	clients map[string]*Client
}

// NewRegistry creates a Registry over the given provider table.
// A nil table selects DefaultProviders. middleware is applied to every
// client the registry constructs; timeout bounds each request at the
// transport level.
func NewRegistry(providers map[string]ProviderSettings, timeout time.Duration, middleware ...Middleware) *Registry {
	if providers == nil {
		providers = DefaultProviders
	}
	return &Registry{
		providers:  providers,
		middleware: middleware,
		timeout:    timeout,
		clients:    make(map[string]*Client),
	}
}

// Client returns a client for a "provider/model" spec, constructing and
// caching it on first use. A bare "provider" spec selects the provider's
// default model.
func (r *Registry) Client(spec string) (*Client, error) {
	provider, model, err := ParseModelSpec(spec)
	if err != nil {
		return nil, err
	}

	settings, ok := r.providers[provider]
	if !ok {
		return nil, fmt.Errorf("unknown provider %q", provider)
	}
	if model == "" {
		model = settings.DefaultModel
	}

	key := provider + "/" + model

	r.mu.Lock()
	defer r.mu.Unlock()

	if client, ok := r.clients[key]; ok {
		return client, nil
	}

	apiKey := os.Getenv(settings.EnvVar)
	if apiKey == "" {
		return nil, fmt.Errorf("provider %q requires %s to be set", provider, settings.EnvVar)
	}

	client, err := NewClient(settings.Type, ClientConfig{
		APIKey:     apiKey,
		Model:      model,
		Timeout:    r.timeout,
		Middleware: r.middleware,
	})
	if err != nil {
		return nil, err
	}

	r.clients[key] = client
	return client, nil
}

// ParseModelSpec splits a "provider/model" spec. The model part is optional;
// anything after the first slash is the model, so model names containing
// slashes survive.
func ParseModelSpec(spec string) (provider, model string, err error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return "", "", fmt.Errorf("model spec cannot be empty")
	}

	provider, model, _ = strings.Cut(spec, "/")
	if provider == "" {
		return "", "", fmt.Errorf("model spec %q missing provider", spec)
	}
	return provider, model, nil
}
