package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finadvisor/modelcompare/internal/domain"
	"github.com/finadvisor/modelcompare/internal/testutils"
)

const partialAdviceJSON = `{
  "summary": "Save a little more each month.",
  "recommendations_by_timeline": {
    "immediate": ["Review your subscriptions"]
  }
}`

func newEngine(t *testing.T, opts Options, backends ...BackendConfig) *ComparisonEngine {
	t.Helper()
	registry, err := NewBackendRegistry(backends)
	require.NoError(t, err)
	eng, err := New(registry, opts)
	require.NoError(t, err)
	return eng
}

func TestNewRejectsEmptyRegistry(t *testing.T) {
	_, err := New(nil, Options{})
	require.Error(t, err)

	var cfgErr *domain.ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
	assert.ErrorIs(t, err, domain.ErrNoBackends)
}

func TestNewRejectsInvalidWeights(t *testing.T) {
	registry, err := NewBackendRegistry([]BackendConfig{
		{Name: "a", Client: &testutils.MockModelClient{Response: "ok"}},
	})
	require.NoError(t, err)

	_, err = New(registry, Options{
		Weights: ScoringWeights{Completeness: 0.9, Relevance: 0.9, Latency: 0.9},
	})
	require.Error(t, err)

	var cfgErr *domain.ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestCompareRejectsInvalidContext(t *testing.T) {
	eng := newEngine(t, Options{},
		BackendConfig{Name: "a", Client: &testutils.MockModelClient{Response: "ok"}})

	_, err := eng.Compare(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrNilContext)

	_, err = eng.Compare(context.Background(), &domain.InferenceContext{})
	assert.ErrorIs(t, err, domain.ErrEmptyContext)
}

// Differentiated quality: the backend with the most complete structured
// answer must win over partial and free-text competitors.
func TestCompareDifferentiatedQuality(t *testing.T) {
	eng := newEngine(t, Options{Deadline: 5 * time.Second},
		BackendConfig{Name: "complete", Client: &testutils.MockModelClient{Response: fullAdviceJSON}},
		BackendConfig{Name: "partial", Client: &testutils.MockModelClient{Response: partialAdviceJSON}},
		BackendConfig{Name: "prose", Client: &testutils.MockModelClient{Response: "Try to spend less than you earn."}},
	)

	result, err := eng.Compare(context.Background(), sampleContext())
	require.NoError(t, err)

	require.NotNil(t, result.BestResponse)
	assert.Equal(t, "complete", result.BestResponse.Backend)

	require.Len(t, result.Responses, 3)
	assert.Equal(t, "complete", result.Responses[0].Backend)
	assert.Equal(t, 1, result.Responses[0].Position)
	assert.InDelta(t, 1.0, result.Responses[0].Completeness, 1e-9)
	assert.True(t, result.Responses[0].Advice.IsStructured())

	assert.Greater(t, result.Responses[0].Composite, result.Responses[1].Composite)

	// The prose answer survives as a fallback, never as an error.
	for _, resp := range result.Responses {
		if resp.Backend == "prose" {
			assert.Equal(t, domain.KindFallback, resp.Advice.Kind)
			assert.Empty(t, resp.Err)
		}
	}

	assert.Equal(t, 3, result.Metrics.TotalTested)
	assert.Equal(t, 3, result.Metrics.ValidResponses)
	assert.Greater(t, result.Metrics.AverageConfidence, 0.0)
}

// Mixed outcomes in one run: a full structured answer, a partial one, and a
// backend abandoned at the shared deadline. The abandoned backend counts as
// tested, carries an error, and never delays the healthy ones.
func TestCompareMixedQualityWithDeadlineAbandonment(t *testing.T) {
	eng := newEngine(t, Options{Deadline: 200 * time.Millisecond},
		BackendConfig{Name: "complete", Client: &testutils.MockModelClient{Response: fullAdviceJSON}},
		BackendConfig{Name: "partial", Client: &testutils.MockModelClient{Response: partialAdviceJSON}},
		BackendConfig{Name: "stalled", Client: &testutils.MockModelClient{
			Response: fullAdviceJSON, Latency: 5 * time.Second}},
	)

	start := time.Now()
	result, err := eng.Compare(context.Background(), sampleContext())
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 2*time.Second,
		"the run ends at the deadline, not at the stalled backend's pace")

	require.NotNil(t, result.BestResponse)
	assert.Equal(t, "complete", result.BestResponse.Backend)

	assert.Equal(t, 3, result.Metrics.TotalTested)
	assert.Equal(t, 2, result.Metrics.ValidResponses)

	require.Len(t, result.Responses, 3)
	assert.Equal(t, "complete", result.Responses[0].Backend)
	assert.Equal(t, "partial", result.Responses[1].Backend)

	stalled := result.Responses[2]
	assert.Equal(t, "stalled", stalled.Backend)
	assert.NotEmpty(t, stalled.Err)
	assert.False(t, stalled.Valid())
	assert.Zero(t, stalled.Composite)
	assert.Equal(t, 3, stalled.Position)
}

// Empty payloads: successful calls that return nothing rank but produce no
// winner.
func TestCompareAllEmptyPayloads(t *testing.T) {
	eng := newEngine(t, Options{Deadline: 5 * time.Second},
		BackendConfig{Name: "mute-a", Client: &testutils.MockModelClient{Response: ""}},
		BackendConfig{Name: "mute-b", Client: &testutils.MockModelClient{Response: "   "}},
	)

	result, err := eng.Compare(context.Background(), sampleContext())
	require.NoError(t, err)

	assert.Nil(t, result.BestResponse)
	assert.True(t, result.AllFailed())
	require.Len(t, result.Responses, 2)
	for _, resp := range result.Responses {
		assert.Zero(t, resp.Composite)
		assert.Equal(t, domain.KindFallback, resp.Advice.Kind)
	}
}

// Partial failure: one backend erroring must not affect the healthy one.
func TestComparePartialFailure(t *testing.T) {
	eng := newEngine(t, Options{Deadline: 5 * time.Second},
		BackendConfig{Name: "down", Client: &testutils.MockModelClient{Err: errors.New("connection refused")}},
		BackendConfig{Name: "healthy", Client: &testutils.MockModelClient{Response: fullAdviceJSON}},
	)

	result, err := eng.Compare(context.Background(), sampleContext())
	require.NoError(t, err, "backend failures are data, not errors")

	require.NotNil(t, result.BestResponse)
	assert.Equal(t, "healthy", result.BestResponse.Backend)

	require.Len(t, result.Responses, 2)
	assert.Equal(t, "healthy", result.Responses[0].Backend)
	assert.Equal(t, "down", result.Responses[1].Backend)
	assert.Contains(t, result.Responses[1].Err, "connection refused")
	assert.Zero(t, result.Responses[1].Composite)

	assert.Equal(t, 2, result.Metrics.TotalTested)
	assert.Equal(t, 1, result.Metrics.ValidResponses)
}

// Total failure: every backend erroring yields a complete, winnerless result.
func TestCompareAllBackendsFailed(t *testing.T) {
	eng := newEngine(t, Options{Deadline: 5 * time.Second},
		BackendConfig{Name: "a", Client: &testutils.MockModelClient{Err: errors.New("rate limited")}},
		BackendConfig{Name: "b", Client: &testutils.MockModelClient{Err: errors.New("server error")}},
	)

	result, err := eng.Compare(context.Background(), sampleContext())
	require.NoError(t, err)

	assert.Nil(t, result.BestResponse)
	assert.True(t, result.AllFailed())
	assert.Equal(t, 2, result.Metrics.TotalTested)
	assert.Zero(t, result.Metrics.ValidResponses)
	assert.Zero(t, result.Metrics.AverageConfidence)
	assert.Zero(t, result.Metrics.AverageProcessingTime)

	require.Len(t, result.Metrics.Ranking, 2)
	for i, entry := range result.Metrics.Ranking {
		assert.Equal(t, i+1, entry.Position)
		assert.Zero(t, entry.CompositeScore)
	}
}

func TestCompareFasterBackendWinsTies(t *testing.T) {
	eng := newEngine(t, Options{Deadline: 5 * time.Second},
		BackendConfig{Name: "slow", Client: &testutils.MockModelClient{
			Response: fullAdviceJSON, Latency: 120 * time.Millisecond}},
		BackendConfig{Name: "fast", Client: &testutils.MockModelClient{
			Response: fullAdviceJSON, Latency: 10 * time.Millisecond}},
	)

	result, err := eng.Compare(context.Background(), sampleContext())
	require.NoError(t, err)

	require.NotNil(t, result.BestResponse)
	assert.Equal(t, "fast", result.BestResponse.Backend)
}

func TestCompareRecordsMetrics(t *testing.T) {
	collector := testutils.NewRecordingCollector()
	eng := newEngine(t, Options{Deadline: 5 * time.Second, Metrics: collector},
		BackendConfig{Name: "a", Client: &testutils.MockModelClient{Response: fullAdviceJSON}},
		BackendConfig{Name: "b", Client: &testutils.MockModelClient{Err: errors.New("boom")}},
	)

	_, err := eng.Compare(context.Background(), sampleContext())
	require.NoError(t, err)

	assert.Equal(t, 1.0, collector.CounterValue("comparisons"))
	assert.Equal(t, 1, collector.LatencyCount("comparison_run"))
	assert.Equal(t, 1.0, collector.GaugeValue("valid_responses"))
	assert.Equal(t, 1.0, collector.CounterValue("backend_failures"))
	assert.Equal(t, 1, collector.HistogramCount("composite_score"))
}
