package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIDefaultModel is used when the configuration names no model.
const OpenAIDefaultModel = "gpt-4o-mini"

func init() {
	RegisterProviderFactory("openai", newOpenAIProvider)
}

// openAIProvider implements CoreModel against the OpenAI chat completion API.
type openAIProvider struct {
	BaseProvider
	client          *openai.Client
	errorClassifier *ErrorClassifier
}

func newOpenAIProvider(config ClientConfig) (CoreModel, error) {
	if config.APIKey == "" {
		return nil, ErrEmptyAPIKey
	}

	model := config.Model
	if model == "" {
		model = OpenAIDefaultModel
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		validated, err := ValidateBaseURL(config.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid BaseURL: %w", err)
		}
		clientConfig.BaseURL = validated
	}
	if config.Timeout > 0 {
		clientConfig.HTTPClient = &http.Client{Timeout: ValidateTimeout(config.Timeout)}
	}

	return &openAIProvider{
		BaseProvider:    BaseProvider{model: model},
		client:          openai.NewClientWithConfig(clientConfig),
		errorClassifier: &ErrorClassifier{Provider: "openai"},
	}, nil
}

// DoRequest sends a chat completion request and returns the first choice.
func (p *openAIProvider) DoRequest(ctx context.Context, prompt string, opts map[string]any) (string, error) {
	options := ParseRequestOptions(opts, p.GetModel())

	resp, err := p.client.CreateChatCompletion(ctx, p.buildRequest(prompt, options))
	if err != nil {
		return "", p.handleError(err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoResponseChoice
	}
	return resp.Choices[0].Message.Content, nil
}

func (p *openAIProvider) buildRequest(prompt string, options RequestOptions) openai.ChatCompletionRequest {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if options.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: options.System,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})

	req := openai.ChatCompletionRequest{
		Model:    options.Model,
		Messages: messages,
	}

	if options.Temperature != nil {
		// OpenAI accepts temperatures in [0.0, 2.0].
		req.Temperature = float32(ClampFloat64(*options.Temperature, 0.0, 2.0))
	}
	if options.MaxTokens > 0 {
		req.MaxTokens = options.MaxTokens
	}
	if options.TopP != nil {
		req.TopP = float32(ClampFloat64(*options.TopP, 0.0, 1.0))
	}
	if raw, ok := options.Extra["frequency_penalty"]; ok {
		if penalty, valid := SafeFloat32(raw); valid {
			req.FrequencyPenalty = float32(ClampFloat64(float64(penalty), MinPenalty, MaxPenalty))
		}
	}
	if raw, ok := options.Extra["presence_penalty"]; ok {
		if penalty, valid := SafeFloat32(raw); valid {
			req.PresencePenalty = float32(ClampFloat64(float64(penalty), MinPenalty, MaxPenalty))
		}
	}
	return req
}

func (p *openAIProvider) handleError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return p.errorClassifier.ClassifyContextError(err)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		message := apiErr.Message
		if message == "" {
			message = "unknown error"
		}
		return p.errorClassifier.ClassifyHTTPError(apiErr.HTTPStatusCode, message, err)
	}

	return NewProviderError("openai", ErrorTypeUnknown, 0, "request failed", err)
}
