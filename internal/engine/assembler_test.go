package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finadvisor/modelcompare/internal/domain"
)

func TestAssembleAggregatesValidEntriesOnly(t *testing.T) {
	assembler := NewResultAssembler()
	ranked := []domain.ScoredResponse{
		{Backend: "a", Position: 1, Composite: 0.8, Latency: time.Second},
		{Backend: "b", Position: 2, Composite: 0.4, Latency: 3 * time.Second},
		{Backend: "c", Position: 3, Err: "timeout", Latency: 10 * time.Second},
	}
	best := &ranked[0]

	result := assembler.Assemble(ranked, best)

	assert.Equal(t, 3, result.Metrics.TotalTested)
	assert.Equal(t, 2, result.Metrics.ValidResponses)
	assert.InDelta(t, 0.6, result.Metrics.AverageConfidence, 1e-9)
	// The failed entry's latency must not drag the average.
	assert.InDelta(t, 2.0, result.Metrics.AverageProcessingTime, 1e-9)

	require.Len(t, result.Metrics.Ranking, 3)
	assert.Equal(t, 1, result.Metrics.Ranking[0].Position)
	assert.Equal(t, "a", result.Metrics.Ranking[0].Name)
	assert.Equal(t, 0.8, result.Metrics.Ranking[0].CompositeScore)
	assert.Equal(t, 0.8, result.Metrics.Ranking[0].ConfidenceScore)

	require.NotNil(t, result.BestResponse)
	assert.Equal(t, "a", result.BestResponse.Backend)
	assert.False(t, result.AllFailed())
	assert.False(t, result.Timestamp.IsZero())
}

func TestAssembleAllFailed(t *testing.T) {
	assembler := NewResultAssembler()
	ranked := []domain.ScoredResponse{
		{Backend: "a", Position: 1, Err: "boom"},
		{Backend: "b", Position: 2, Err: "bang"},
	}

	result := assembler.Assemble(ranked, nil)

	assert.Equal(t, 2, result.Metrics.TotalTested)
	assert.Zero(t, result.Metrics.ValidResponses)
	// Zero averages, never NaN.
	assert.Zero(t, result.Metrics.AverageConfidence)
	assert.Zero(t, result.Metrics.AverageProcessingTime)
	assert.Nil(t, result.BestResponse)
	assert.True(t, result.AllFailed())
	assert.Len(t, result.Metrics.Ranking, 2)
}

func TestAssembleEmptyInput(t *testing.T) {
	assembler := NewResultAssembler()
	result := assembler.Assemble(nil, nil)

	assert.Zero(t, result.Metrics.TotalTested)
	assert.Empty(t, result.Metrics.Ranking)
	assert.True(t, result.AllFailed())
}
