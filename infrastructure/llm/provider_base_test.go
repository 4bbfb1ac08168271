package llm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRequestOptions(t *testing.T) {
	tests := []struct {
		name string
		opts map[string]any
		want func(t *testing.T, got RequestOptions)
	}{
		{
			name: "nil opts use defaults",
			opts: nil,
			want: func(t *testing.T, got RequestOptions) {
				assert.Equal(t, DefaultMaxTokens, got.MaxTokens)
				assert.Equal(t, "default-model", got.Model)
				assert.Nil(t, got.Temperature)
				assert.Nil(t, got.TopP)
			},
		},
		{
			name: "standard options extracted",
			opts: map[string]any{
				"max_tokens":  512,
				"model":       "override",
				"temperature": 0.4,
				"top_p":       0.9,
				"system":      "be concise",
			},
			want: func(t *testing.T, got RequestOptions) {
				assert.Equal(t, 512, got.MaxTokens)
				assert.Equal(t, "override", got.Model)
				require.NotNil(t, got.Temperature)
				assert.InDelta(t, 0.4, *got.Temperature, 1e-9)
				require.NotNil(t, got.TopP)
				assert.InDelta(t, 0.9, *got.TopP, 1e-9)
				assert.Equal(t, "be concise", got.System)
			},
		},
		{
			name: "invalid values fall back",
			opts: map[string]any{
				"max_tokens":  -1,
				"temperature": 3.5,
				"top_p":       "high",
			},
			want: func(t *testing.T, got RequestOptions) {
				assert.Equal(t, DefaultMaxTokens, got.MaxTokens)
				assert.Nil(t, got.Temperature)
				assert.Nil(t, got.TopP)
			},
		},
		{
			name: "unrecognized keys land in extra",
			opts: map[string]any{"top_k": 5, "frequency_penalty": 0.1},
			want: func(t *testing.T, got RequestOptions) {
				assert.Equal(t, 5, got.Extra["top_k"])
				assert.Equal(t, 0.1, got.Extra["frequency_penalty"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.want(t, ParseRequestOptions(tt.opts, "default-model"))
		})
	}
}

func TestBaseProviderModelSwitch(t *testing.T) {
	base := &BaseProvider{model: "first"}
	assert.Equal(t, "first", base.GetModel())

	base.SetModel("second")
	assert.Equal(t, "second", base.GetModel())
}

func TestValidateBaseURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"empty is valid", "", false},
		{"https", "https://api.example.com/v1", false},
		{"http", "http://localhost:8080", false},
		{"missing scheme", "api.example.com", true},
		{"bad scheme", "ftp://api.example.com", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateBaseURL(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateTimeout(t *testing.T) {
	assert.Equal(t, time.Duration(0), ValidateTimeout(0))
	assert.Equal(t, MinTimeout, ValidateTimeout(time.Millisecond))
	assert.Equal(t, MaxTimeout, ValidateTimeout(time.Hour))
	assert.Equal(t, 30*time.Second, ValidateTimeout(30*time.Second))
}

func TestProviderConstructorsRequireAPIKey(t *testing.T) {
	for _, providerType := range []string{"openai", "anthropic"} {
		t.Run(providerType, func(t *testing.T) {
			_, err := NewClient(providerType, ClientConfig{Model: "m"})
			assert.ErrorIs(t, err, ErrEmptyAPIKey)
		})
	}
}

func TestOpenAIProviderDefaults(t *testing.T) {
	core, err := newOpenAIProvider(ClientConfig{APIKey: "key"})
	require.NoError(t, err)
	assert.Equal(t, OpenAIDefaultModel, core.GetModel())
}

func TestAnthropicProviderDefaults(t *testing.T) {
	core, err := newAnthropicProvider(ClientConfig{APIKey: "key"})
	require.NoError(t, err)
	assert.Equal(t, AnthropicDefaultModel, core.GetModel())
}
