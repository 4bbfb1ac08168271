package domain

import (
	"time"
)

// RawModelResponse is the outcome of one backend call in a comparison run.
// Exactly one is created per configured backend, success or not, and it is
// never mutated after the dispatch barrier.
type RawModelResponse struct {
	// Backend is the registry name of the backend that produced this entry.
	Backend string `json:"backend"`

	// RawText is the unprocessed model output. Empty when the call failed.
	RawText string `json:"raw_text,omitempty"`

	// Latency measures the call end-to-end, including retries; for abandoned
	// calls it is the time elapsed until the shared deadline.
	Latency time.Duration `json:"latency"`

	// Err describes the failure, or is empty on success.
	Err string `json:"error,omitempty"`
}

// Failed reports whether the backend call produced no usable output.
func (r RawModelResponse) Failed() bool { return r.Err != "" }

// ScoredResponse pairs one backend's normalized advice with its quality
// metrics. Invariant: Err != "" implies Composite == 0 and exclusion from
// best-response candidacy.
type ScoredResponse struct {
	// Backend is the registry name of the backend.
	Backend string `json:"backend"`

	// Advice is the normalized form of the backend's output.
	Advice NormalizedAdvice `json:"advice"`

	// Completeness is the fraction of expected advice buckets present, in [0,1].
	Completeness float64 `json:"completeness_score"`

	// Relevance measures financial-keyword density, in [0,1].
	Relevance float64 `json:"relevance_score"`

	// Composite is the weighted ranking score, in [0,1].
	Composite float64 `json:"composite_score"`

	// Latency is inherited from the raw response.
	Latency time.Duration `json:"latency"`

	// Err is inherited from the raw response; empty on success.
	Err string `json:"error,omitempty"`

	// Position is the 1-based rank assigned by the ranker.
	Position int `json:"position"`
}

// Valid reports whether this entry may compete for best response.
func (s ScoredResponse) Valid() bool { return s.Err == "" }

// RankingEntry is the compact per-backend line exposed to persistence and
// dashboard collaborators.
type RankingEntry struct {
	// Position is the 1-based rank.
	Position int `json:"position"`

	// Name is the backend name.
	Name string `json:"name"`

	// CompositeScore is the entry's ranking score.
	CompositeScore float64 `json:"composite_score"`

	// ConfidenceScore mirrors the composite score in the serialized contract
	// consumed by the dashboard.
	ConfidenceScore float64 `json:"confidence_score"`
}

// AggregateMetrics summarizes one comparison run. Averages are computed over
// error-free entries only.
type AggregateMetrics struct {
	// TotalTested is the number of configured backends, always equal to the
	// registry size.
	TotalTested int `json:"total_llms_tested"`

	// ValidResponses counts entries without an error.
	ValidResponses int `json:"valid_responses"`

	// AverageConfidence is the mean composite score of valid entries.
	AverageConfidence float64 `json:"average_confidence"`

	// AverageProcessingTime is the mean latency of valid entries in seconds.
	AverageProcessingTime float64 `json:"average_processing_time"`

	// Ranking lists every backend in rank order.
	Ranking []RankingEntry `json:"ranking"`
}

// ComparisonResult is the final aggregate handed to persistence and
// dashboard collaborators. Responses are in rank order, not registry order.
type ComparisonResult struct {
	// Responses holds every backend's scored entry in rank order.
	Responses []ScoredResponse `json:"responses"`

	// BestResponse points at the top-ranked valid entry, or is nil when
	// every backend failed.
	BestResponse *ScoredResponse `json:"best_response,omitempty"`

	// Metrics aggregates the run.
	Metrics AggregateMetrics `json:"metrics"`

	// Timestamp records when the comparison completed.
	Timestamp time.Time `json:"timestamp"`
}

// AllFailed reports whether no backend produced a usable response.
func (c ComparisonResult) AllFailed() bool { return c.BestResponse == nil }
