package engine

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/finadvisor/modelcompare/internal/domain"
	"github.com/finadvisor/modelcompare/internal/ports"
)

// Options tunes a ComparisonEngine. The zero value selects documented
// defaults for every field.
type Options struct {
	// Deadline bounds the entire dispatch phase.
	Deadline time.Duration

	// Weights is the composite score weight vector.
	Weights ScoringWeights

	// Keywords overrides the relevance vocabulary.
	Keywords []string

	// RelevanceGain scales keyword density into the relevance score.
	RelevanceGain float64

	// RequestOptions are forwarded verbatim to every backend call.
	RequestOptions map[string]any

	// Metrics receives operational metrics; nil disables collection.
	Metrics ports.MetricsCollector
}

// ComparisonEngine is the single public entry point of the comparison
// subsystem. It is purely functional: given an InferenceContext it produces a
// ComparisonResult and holds no state between invocations.
type ComparisonEngine struct {
	registry   *BackendRegistry
	dispatcher *Dispatcher
	normalizer *ResponseNormalizer
	scorer     *QualityScorer
	ranker     *Ranker
	assembler  *ResultAssembler
	prompts    *PromptBuilder
	metrics    ports.MetricsCollector
	tracer     trace.Tracer
}

// New creates a ComparisonEngine over the given registry.
// Configuration problems (invalid weights) surface here, before any
// comparison runs.
func New(registry *BackendRegistry, opts Options) (*ComparisonEngine, error) {
	if registry == nil || registry.Size() == 0 {
		return nil, domain.NewConfigurationError("engine", domain.ErrNoBackends)
	}

	weights := opts.Weights
	if weights == (ScoringWeights{}) {
		weights = DefaultScoringWeights()
	}
	scorer, err := NewQualityScorer(weights, opts.Keywords, opts.RelevanceGain)
	if err != nil {
		return nil, err
	}

	prompts, err := NewPromptBuilder()
	if err != nil {
		return nil, domain.NewConfigurationError("engine", err)
	}

	return &ComparisonEngine{
		registry:   registry,
		dispatcher: NewDispatcher(registry, opts.Deadline, opts.RequestOptions, opts.Metrics),
		normalizer: NewResponseNormalizer(),
		scorer:     scorer,
		ranker:     NewRanker(),
		assembler:  NewResultAssembler(),
		prompts:    prompts,
		metrics:    opts.Metrics,
		tracer:     otel.Tracer("comparison-engine"),
	}, nil
}

// Compare dispatches the context to every registered backend, scores and
// ranks the responses, and returns the assembled result. Per-backend
// failures are captured as data on the corresponding entry; the only error
// returns are configuration and context-validation problems raised before
// dispatch.
func (e *ComparisonEngine) Compare(ctx context.Context, infCtx *domain.InferenceContext) (domain.ComparisonResult, error) {
	ctx, span := e.tracer.Start(ctx, "ComparisonEngine.Compare",
		trace.WithAttributes(attribute.Int("backends.count", e.registry.Size())),
	)
	defer span.End()

	prompt, err := e.prompts.Build(infCtx)
	if err != nil {
		span.RecordError(err)
		return domain.ComparisonResult{}, err
	}

	start := time.Now()
	raws := e.dispatcher.Dispatch(ctx, prompt)

	scored := e.scoreAll(raws)
	ranked := e.ranker.Rank(scored)
	best := e.ranker.Best(ranked)
	result := e.assembler.Assemble(ranked, best)

	e.recordRun(result, time.Since(start))
	span.SetAttributes(
		attribute.Int("responses.valid", result.Metrics.ValidResponses),
		attribute.Bool("responses.all_failed", result.AllFailed()),
	)
	return result, nil
}

// scoreAll normalizes and scores every raw response. The latency factor is
// relative to the slowest valid response in the same run, so the maximum is
// computed before any entry is scored.
func (e *ComparisonEngine) scoreAll(raws []domain.RawModelResponse) []domain.ScoredResponse {
	var maxLatency time.Duration
	for _, raw := range raws {
		if !raw.Failed() && raw.Latency > maxLatency {
			maxLatency = raw.Latency
		}
	}

	scored := make([]domain.ScoredResponse, len(raws))
	for i, raw := range raws {
		entry := domain.ScoredResponse{
			Backend: raw.Backend,
			Latency: raw.Latency,
			Err:     raw.Err,
		}

		if raw.Failed() {
			// Invariant: inherited error forces composite to zero and the
			// advice to the empty fallback.
			entry.Advice = e.normalizer.Normalize("")
		} else {
			entry.Advice = e.normalizer.Normalize(raw.RawText)
			entry.Completeness, entry.Relevance, entry.Composite =
				e.scorer.Score(entry.Advice, raw.Latency, maxLatency)
		}
		scored[i] = entry
	}
	return scored
}

func (e *ComparisonEngine) recordRun(result domain.ComparisonResult, elapsed time.Duration) {
	if e.metrics == nil {
		return
	}
	labels := map[string]string{}
	e.metrics.RecordCounter("comparisons", 1, labels)
	e.metrics.RecordLatency("comparison_run", elapsed, labels)
	e.metrics.RecordGauge("valid_responses", float64(result.Metrics.ValidResponses), labels)
	for _, resp := range result.Responses {
		if resp.Valid() {
			e.metrics.RecordHistogram("composite_score", resp.Composite,
				map[string]string{"backend": resp.Backend})
		}
	}
}
