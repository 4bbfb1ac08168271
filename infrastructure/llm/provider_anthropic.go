package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicDefaultModel is used when the configuration names no model.
const AnthropicDefaultModel = "claude-3-5-sonnet-20241022"

func init() {
	RegisterProviderFactory("anthropic", newAnthropicProvider)
}

// anthropicProvider implements CoreModel against Anthropic's Messages API.
type anthropicProvider struct {
	BaseProvider
	client          anthropic.Client
	errorClassifier *ErrorClassifier
}

func newAnthropicProvider(config ClientConfig) (CoreModel, error) {
	if config.APIKey == "" {
		return nil, ErrEmptyAPIKey
	}

	model := config.Model
	if model == "" {
		model = AnthropicDefaultModel
	}

	opts := []option.RequestOption{option.WithAPIKey(config.APIKey)}
	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}

	return &anthropicProvider{
		BaseProvider:    BaseProvider{model: model},
		client:          anthropic.NewClient(opts...),
		errorClassifier: &ErrorClassifier{Provider: "anthropic"},
	}, nil
}

// DoRequest sends a message request and concatenates the text blocks of the
// reply.
func (p *anthropicProvider) DoRequest(ctx context.Context, prompt string, opts map[string]any) (string, error) {
	options := ParseRequestOptions(opts, p.GetModel())

	message, err := p.client.Messages.New(ctx, p.buildParams(prompt, options))
	if err != nil {
		return "", p.handleError(err)
	}

	var text strings.Builder
	for _, block := range message.Content {
		switch content := block.AsAny().(type) {
		case anthropic.TextBlock:
			text.WriteString(content.Text)
		}
	}
	if text.Len() == 0 {
		return "", ErrEmptyResponse
	}
	return text.String(), nil
}

func (p *anthropicProvider) buildParams(prompt string, options RequestOptions) anthropic.MessageNewParams {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(options.Model),
		MaxTokens: int64(options.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}

	if options.Temperature != nil {
		// Anthropic accepts temperatures in [0.0, 1.0].
		params.Temperature = anthropic.Float(ClampFloat64(*options.Temperature, 0.0, 1.0))
	}
	if options.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: options.System}}
	}
	return params
}

func (p *anthropicProvider) handleError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return p.errorClassifier.ClassifyContextError(err)
	}

	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return p.errorClassifier.ClassifyHTTPError(apiErr.StatusCode, apiErr.Error(), err)
	}

	return NewProviderError("anthropic", ErrorTypeUnknown, 0, "request failed", err)
}
