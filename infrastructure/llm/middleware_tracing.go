package llm

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// tracedModel wraps every request in an OpenTelemetry span.
type tracedModel struct {
	next   CoreModel
	tracer trace.Tracer
}

// TracingMiddleware adds a span per request under the named service tracer.
func TracingMiddleware(serviceName string) Middleware {
	tracer := otel.Tracer(serviceName)
	return func(next CoreModel) CoreModel {
		return &tracedModel{next: next, tracer: tracer}
	}
}

func (t *tracedModel) DoRequest(ctx context.Context, prompt string, opts map[string]any) (string, error) {
	ctx, span := t.tracer.Start(ctx, "model.request",
		trace.WithAttributes(
			attribute.String("model.name", t.next.GetModel()),
			attribute.Int("prompt.length", len(prompt)),
		),
	)
	defer span.End()

	response, err := t.next.DoRequest(ctx, prompt, opts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetAttributes(attribute.Int("response.length", len(response)))
	}
	return response, err
}

func (t *tracedModel) GetModel() string  { return t.next.GetModel() }
func (t *tracedModel) SetModel(m string) { t.next.SetModel(m) }
