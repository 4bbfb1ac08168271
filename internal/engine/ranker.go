package engine

import (
	"sort"

	"github.com/finadvisor/modelcompare/internal/domain"
)

// Ranker orders scored responses into a total, deterministic ranking.
// Two invocations over identical inputs always produce identical order.
type Ranker struct{}

// NewRanker creates a Ranker.
func NewRanker() *Ranker { return &Ranker{} }

// Rank sorts descending by composite score, breaking ties by ascending
// latency and finally by original registry order. Every entry receives a
// 1-based position, errored ones included; they sort to the bottom because
// their composite is zero but stay visible for transparency.
//
// The input slice must be in registry order; it is not mutated.
func (r *Ranker) Rank(scored []domain.ScoredResponse) []domain.ScoredResponse {
	ranked := make([]domain.ScoredResponse, len(scored))
	copy(ranked, scored)

	// SliceStable preserves registry order as the last tie-break.
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Composite != ranked[j].Composite {
			return ranked[i].Composite > ranked[j].Composite
		}
		return ranked[i].Latency < ranked[j].Latency
	})

	for i := range ranked {
		ranked[i].Position = i + 1
	}
	return ranked
}

// Best returns the top-ranked valid entry, or nil when every backend failed
// or scored zero. A nil best signals "no advice available" to the caller
// instead of a useless winner.
func (r *Ranker) Best(ranked []domain.ScoredResponse) *domain.ScoredResponse {
	if len(ranked) == 0 {
		return nil
	}
	top := ranked[0]
	if !top.Valid() || top.Composite <= 0 {
		return nil
	}
	return &top
}
