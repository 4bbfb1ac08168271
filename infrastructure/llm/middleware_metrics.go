package llm

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/finadvisor/modelcompare/internal/ports"
)

// metricsModel records latency, request counts, and outcome status for every
// call to the wrapped model.
type metricsModel struct {
	next      CoreModel
	collector ports.MetricsCollector
}

// MetricsMiddleware records per-request metrics to the given collector.
// A nil collector disables recording without breaking the chain.
func MetricsMiddleware(collector ports.MetricsCollector) Middleware {
	return func(next CoreModel) CoreModel {
		return &metricsModel{next: next, collector: collector}
	}
}

func (m *metricsModel) DoRequest(ctx context.Context, prompt string, opts map[string]any) (string, error) {
	start := time.Now()
	response, err := m.next.DoRequest(ctx, prompt, opts)

	if m.collector != nil {
		labels := map[string]string{
			"provider": providerFromModel(m.next.GetModel()),
			"model":    m.next.GetModel(),
			"status":   statusLabel(ctx, err),
		}
		m.collector.RecordLatency("model_request", time.Since(start), labels)
		m.collector.RecordCounter("model_requests", 1, labels)
	}
	return response, err
}

// statusLabel maps a call outcome to the status metric label. Both the
// shared context deadline and a provider-classified timeout count as
// "timeout" so the metric matches the error taxonomy.
func statusLabel(ctx context.Context, err error) string {
	if err == nil {
		return "success"
	}
	if ctx.Err() == context.DeadlineExceeded {
		return "timeout"
	}
	var provErr *ProviderError
	if errors.As(err, &provErr) && provErr.Type == ErrorTypeTimeout {
		return "timeout"
	}
	return "error"
}

// providerFromModel infers the provider family from a model name, for
// labelling only.
func providerFromModel(model string) string {
	switch {
	case strings.Contains(model, "gpt"), strings.HasPrefix(model, "o1"), strings.HasPrefix(model, "o3"):
		return "openai"
	case strings.Contains(model, "claude"):
		return "anthropic"
	case strings.Contains(model, "gemini"):
		return "google"
	default:
		return "unknown"
	}
}

func (m *metricsModel) GetModel() string      { return m.next.GetModel() }
func (m *metricsModel) SetModel(model string) { m.next.SetModel(model) }
