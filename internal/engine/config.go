package engine

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/finadvisor/modelcompare/infrastructure/llm"
	"github.com/finadvisor/modelcompare/internal/domain"
	"github.com/finadvisor/modelcompare/internal/ports"
)

// validate is the shared validator instance for configuration structs.
var validate = validator.New()

// Config is the YAML configuration for a comparison engine deployment.
type Config struct {
	// Version identifies the configuration schema version.
	Version string `yaml:"version" validate:"required"`

	// Dispatch tunes the fan-out phase.
	Dispatch DispatchConfig `yaml:"dispatch"`

	// Scoring tunes the quality metrics.
	Scoring ScoringConfig `yaml:"scoring"`

	// Backends lists the model backends to compare. At least one is
	// required; names must be unique.
	Backends []BackendEntry `yaml:"backends" validate:"required,min=1,max=32,dive"`
}

// DispatchConfig bounds the dispatch phase and sets shared request options.
type DispatchConfig struct {
	// DeadlineMS bounds the whole fan-out in milliseconds.
	// Zero selects the default deadline.
	DeadlineMS int `yaml:"deadline_ms" validate:"omitempty,min=100,max=600000"`

	// Temperature is forwarded to every backend; nil keeps provider defaults.
	Temperature *float64 `yaml:"temperature" validate:"omitempty,min=0,max=2"`

	// MaxTokens caps generation length on every backend.
	MaxTokens int `yaml:"max_tokens" validate:"omitempty,min=1,max=100000"`
}

// ScoringConfig tunes the quality scorer.
type ScoringConfig struct {
	// Weights is the composite weight vector. All-zero selects the
	// documented defaults.
	Weights ScoringWeights `yaml:"weights"`

	// Keywords overrides the relevance vocabulary when non-empty.
	Keywords []string `yaml:"keywords"`

	// RelevanceGain scales keyword density; zero selects the default.
	RelevanceGain float64 `yaml:"relevance_gain" validate:"omitempty,min=0.1,max=1000"`
}

// BackendEntry configures one model backend.
type BackendEntry struct {
	// Name is the unique display name used in rankings.
	Name string `yaml:"name" validate:"required,min=1,max=64"`

	// Model is a "provider/model" spec, e.g. "openai/gpt-4o-mini".
	// The provider's API key is read from its environment variable.
	Model string `yaml:"model" validate:"required"`

	// TimeoutMS bounds each attempt; zero selects the default.
	TimeoutMS int `yaml:"timeout_ms" validate:"omitempty,min=100,max=600000"`

	// MaxRetries is the per-backend retry budget after the first attempt.
	MaxRetries int `yaml:"max_retries" validate:"min=0,max=10"`

	// BackoffMS is the base retry backoff; zero selects the default.
	BackoffMS int `yaml:"backoff_ms" validate:"omitempty,min=10,max=10000"`
}

// LoadConfig reads and validates a YAML configuration file. Unknown fields
// are rejected so typos fail loudly instead of silently selecting defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.NewConfigurationError("config", fmt.Errorf("reading %s: %w", path, err))
	}
	return ParseConfig(data)
}

// ParseConfig parses and validates raw YAML configuration bytes. Decoding is
// strict: fields the schema does not know are an error.
func ParseConfig(data []byte) (*Config, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	var cfg Config
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, domain.NewConfigurationError("config", fmt.Errorf("parsing YAML: %w", err))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks structural constraints, backend name uniqueness, and the
// scoring weight sum.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return domain.NewConfigurationError("config", err)
	}

	seen := make(map[string]struct{}, len(c.Backends))
	for _, b := range c.Backends {
		if _, dup := seen[b.Name]; dup {
			return domain.NewConfigurationError("config",
				fmt.Errorf("duplicate backend name %q", b.Name))
		}
		seen[b.Name] = struct{}{}

		if _, _, err := llm.ParseModelSpec(b.Model); err != nil {
			return domain.NewConfigurationError("config",
				fmt.Errorf("backend %q: %w", b.Name, err))
		}
	}

	if c.Scoring.Weights != (ScoringWeights{}) {
		if err := c.Scoring.Weights.Validate(); err != nil {
			return domain.NewConfigurationError("config", err)
		}
	}
	return nil
}

// BuildEngine constructs a ready-to-use ComparisonEngine from the
// configuration. Backend clients are built through the provider registry,
// with metrics and tracing middleware wired in; API keys come from provider
// environment variables and a missing key fails here.
func (c *Config) BuildEngine(collector ports.MetricsCollector) (*ComparisonEngine, error) {
	clientRegistry := llm.NewRegistry(nil, backendTimeout(c),
		llm.TracingMiddleware("modelcompare"),
		llm.MetricsMiddleware(collector),
	)

	backends := make([]BackendConfig, 0, len(c.Backends))
	for _, entry := range c.Backends {
		client, err := clientRegistry.Client(entry.Model)
		if err != nil {
			return nil, domain.NewConfigurationError("config",
				fmt.Errorf("backend %q: %w", entry.Name, err))
		}
		backends = append(backends, BackendConfig{
			Name:           entry.Name,
			Client:         client,
			Timeout:        time.Duration(entry.TimeoutMS) * time.Millisecond,
			MaxRetries:     entry.MaxRetries,
			RetryBaseDelay: time.Duration(entry.BackoffMS) * time.Millisecond,
		})
	}

	registry, err := NewBackendRegistry(backends)
	if err != nil {
		return nil, err
	}

	return New(registry, Options{
		Deadline:       time.Duration(c.Dispatch.DeadlineMS) * time.Millisecond,
		Weights:        c.Scoring.Weights,
		Keywords:       c.Scoring.Keywords,
		RelevanceGain:  c.Scoring.RelevanceGain,
		RequestOptions: c.requestOptions(),
		Metrics:        collector,
	})
}

// requestOptions translates the dispatch section into the shared per-call
// options map every backend receives.
func (c *Config) requestOptions() map[string]any {
	opts := make(map[string]any)
	if c.Dispatch.Temperature != nil {
		opts["temperature"] = *c.Dispatch.Temperature
	}
	if c.Dispatch.MaxTokens > 0 {
		opts["max_tokens"] = c.Dispatch.MaxTokens
	}
	return opts
}

// backendTimeout picks the largest per-backend timeout as the transport
// ceiling; per-attempt deadlines are enforced by the dispatcher.
func backendTimeout(c *Config) time.Duration {
	max := DefaultBackendTimeout
	for _, b := range c.Backends {
		if t := time.Duration(b.TimeoutMS) * time.Millisecond; t > max {
			max = t
		}
	}
	return max
}
