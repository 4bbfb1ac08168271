package llm

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"google.golang.org/api/googleapi"
	"google.golang.org/genai"
)

// GoogleDefaultModel is used when the configuration names no model.
const GoogleDefaultModel = "gemini-2.0-flash"

func init() {
	RegisterProviderFactory("google", newGoogleProvider)
}

// googleProvider implements CoreModel against the Gemini API.
type googleProvider struct {
	BaseProvider
	client          *genai.Client
	errorClassifier *ErrorClassifier
}

func newGoogleProvider(config ClientConfig) (CoreModel, error) {
	if config.APIKey == "" {
		return nil, ErrEmptyAPIKey
	}

	model := config.Model
	if model == "" {
		model = GoogleDefaultModel
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating Google client: %w", err)
	}

	return &googleProvider{
		BaseProvider:    BaseProvider{model: model},
		client:          client,
		errorClassifier: &ErrorClassifier{Provider: "google"},
	}, nil
}

// DoRequest sends a generation request and returns the response text.
func (p *googleProvider) DoRequest(ctx context.Context, prompt string, opts map[string]any) (string, error) {
	options := ParseRequestOptions(opts, p.GetModel())

	contents := p.buildContents(prompt, options)
	config := p.buildGenerationConfig(options)

	resp, err := p.client.Models.GenerateContent(ctx, options.Model, contents, config)
	if err != nil {
		return "", p.handleError(err)
	}

	content := resp.Text()
	if content == "" {
		return "", ErrEmptyResponse
	}
	return content, nil
}

// buildContents folds the system prompt into the user message; Gemini has no
// separate system role on this endpoint.
func (p *googleProvider) buildContents(prompt string, options RequestOptions) []*genai.Content {
	finalPrompt := prompt
	if options.System != "" {
		finalPrompt = fmt.Sprintf("System: %s\n\nUser: %s", options.System, prompt)
	}
	return []*genai.Content{
		genai.NewContentFromText(finalPrompt, genai.RoleUser),
	}
}

func (p *googleProvider) buildGenerationConfig(options RequestOptions) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{}

	if options.Temperature != nil {
		// Gemini accepts temperatures in [0.0, 2.0].
		config.Temperature = genai.Ptr(float32(ClampFloat64(*options.Temperature, 0.0, 2.0)))
	}
	if options.MaxTokens > 0 {
		if options.MaxTokens > math.MaxInt32 {
			config.MaxOutputTokens = math.MaxInt32
		} else {
			config.MaxOutputTokens = int32(options.MaxTokens)
		}
	}
	if options.TopP != nil {
		config.TopP = genai.Ptr(float32(ClampFloat64(*options.TopP, 0.0, 1.0)))
	}
	if topK, ok := options.Extra["top_k"].(int); ok {
		// Gemini supports top K in [1, 40].
		config.TopK = genai.Ptr(float32(ClampInt(topK, 1, 40)))
	}
	return config
}

func (p *googleProvider) handleError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return p.errorClassifier.ClassifyContextError(err)
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		message := apiErr.Message
		if message == "" && len(apiErr.Errors) > 0 {
			message = apiErr.Errors[0].Message
		}
		if isContentPolicyError(apiErr) {
			return NewProviderError("google", ErrorTypeContentPolicy, apiErr.Code,
				"request blocked by safety filters", err)
		}
		return p.errorClassifier.ClassifyHTTPError(apiErr.Code, message, err)
	}

	return NewProviderError("google", ErrorTypeUnknown, 0, "request failed", err)
}

// isContentPolicyError detects safety-filter rejections, which surface with
// varying status codes but consistent reason strings.
func isContentPolicyError(apiErr *googleapi.Error) bool {
	if apiErr.Message != "" {
		lower := strings.ToLower(apiErr.Message)
		if strings.Contains(lower, "safety") ||
			strings.Contains(lower, "policy") ||
			strings.Contains(lower, "blocked") {
			return true
		}
	}
	for _, e := range apiErr.Errors {
		if e.Reason == "SAFETY" || e.Reason == "BLOCKED" {
			return true
		}
	}
	return false
}
