package engine

import (
	"time"

	"github.com/finadvisor/modelcompare/internal/domain"
)

// ResultAssembler packages ranked responses into the final ComparisonResult.
// It is a pure packaging step: no scoring decisions, no side effects.
type ResultAssembler struct{}

// NewResultAssembler creates a ResultAssembler.
func NewResultAssembler() *ResultAssembler { return &ResultAssembler{} }

// Assemble builds the ComparisonResult from rank-ordered responses and the
// selected best entry. Aggregate metrics are computed over error-free
// entries only; a run where everything failed reports zero averages rather
// than NaN.
func (a *ResultAssembler) Assemble(ranked []domain.ScoredResponse, best *domain.ScoredResponse) domain.ComparisonResult {
	var (
		validCount   int
		sumComposite float64
		sumLatency   time.Duration
	)
	ranking := make([]domain.RankingEntry, len(ranked))
	for i, resp := range ranked {
		ranking[i] = domain.RankingEntry{
			Position:        resp.Position,
			Name:            resp.Backend,
			CompositeScore:  resp.Composite,
			ConfidenceScore: resp.Composite,
		}
		if resp.Valid() {
			validCount++
			sumComposite += resp.Composite
			sumLatency += resp.Latency
		}
	}

	metrics := domain.AggregateMetrics{
		TotalTested:    len(ranked),
		ValidResponses: validCount,
		Ranking:        ranking,
	}
	if validCount > 0 {
		metrics.AverageConfidence = sumComposite / float64(validCount)
		metrics.AverageProcessingTime = (sumLatency / time.Duration(validCount)).Seconds()
	}

	return domain.ComparisonResult{
		Responses:    ranked,
		BestResponse: best,
		Metrics:      metrics,
		Timestamp:    time.Now().UTC(),
	}
}
