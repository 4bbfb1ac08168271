package engine

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"

	"github.com/finadvisor/modelcompare/internal/domain"
)

// foldCaser is a package-level Unicode case folder shared by all scorers.
var foldCaser = cases.Fold()

// Default scoring parameters. The weight vector is a tunable configuration,
// not a derived constant; it must stay identical across one comparison run so
// every backend is measured by the same yardstick.
const (
	DefaultCompletenessWeight = 0.5
	DefaultRelevanceWeight    = 0.35
	DefaultLatencyWeight      = 0.15

	// DefaultRelevanceGain scales keyword density into the [0,1] relevance
	// score: density * gain, clipped. A gain of 10 saturates at 10% keyword
	// density.
	DefaultRelevanceGain = 10.0

	// fuzzyMatchMinLen is the minimum token length for edit-distance
	// matching; short tokens only match exactly to avoid false positives.
	fuzzyMatchMinLen = 5

	// weightSumTolerance allows for floating-point drift when checking that
	// the weights sum to 1.
	weightSumTolerance = 1e-6

	// completenessBuckets is the number of advice sections completeness is
	// measured over: summary, recommendations, measurable goals, alerts,
	// and overall assessment.
	completenessBuckets = 5
)

// defaultKeywords is the built-in financial vocabulary for relevance scoring,
// covering English plus the Portuguese terms the legacy prompts elicited.
var defaultKeywords = []string{
	"budget", "savings", "save", "invest", "investment", "debt", "income",
	"expense", "expenses", "spending", "emergency", "fund", "interest",
	"retirement", "portfolio", "risk", "goal", "credit", "loan", "insurance",
	"diversify", "cash",
	"poupança", "investimento", "dívida", "renda", "gastos", "reserva",
	"juros", "aposentadoria", "risco", "meta", "crédito", "orçamento",
}

// ScoringWeights is the weight vector combining the three quality metrics
// into one composite score. Weights must sum to 1.
type ScoringWeights struct {
	// Completeness weights the structured-bucket coverage metric.
	Completeness float64 `yaml:"completeness" json:"completeness" validate:"min=0,max=1"`

	// Relevance weights the financial-keyword density metric.
	Relevance float64 `yaml:"relevance" json:"relevance" validate:"min=0,max=1"`

	// Latency weights the run-relative speed metric.
	Latency float64 `yaml:"latency" json:"latency" validate:"min=0,max=1"`
}

// DefaultScoringWeights returns the documented default weight vector.
func DefaultScoringWeights() ScoringWeights {
	return ScoringWeights{
		Completeness: DefaultCompletenessWeight,
		Relevance:    DefaultRelevanceWeight,
		Latency:      DefaultLatencyWeight,
	}
}

// Validate checks the weights individually and as a unit sum.
func (w ScoringWeights) Validate() error {
	for name, v := range map[string]float64{
		"completeness": w.Completeness,
		"relevance":    w.Relevance,
		"latency":      w.Latency,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("weight %s = %.3f outside [0,1]", name, v)
		}
	}
	sum := w.Completeness + w.Relevance + w.Latency
	if math.Abs(sum-1.0) > weightSumTolerance {
		return fmt.Errorf("weights must sum to 1, got %.6f", sum)
	}
	return nil
}

// QualityScorer computes per-response quality metrics from normalized advice
// and timing data. It is stateless after construction and safe for
// concurrent use.
type QualityScorer struct {
	weights       ScoringWeights
	keywords      []string
	relevanceGain float64
}

// NewQualityScorer creates a scorer with the given weights and keyword list.
// An empty keyword list selects the built-in financial vocabulary.
func NewQualityScorer(weights ScoringWeights, keywords []string, relevanceGain float64) (*QualityScorer, error) {
	if err := weights.Validate(); err != nil {
		return nil, domain.NewConfigurationError("scorer", err)
	}
	if len(keywords) == 0 {
		keywords = defaultKeywords
	}
	if relevanceGain <= 0 {
		relevanceGain = DefaultRelevanceGain
	}

	folded := make([]string, len(keywords))
	for i, kw := range keywords {
		folded[i] = foldCaser.String(kw)
	}

	return &QualityScorer{
		weights:       weights,
		keywords:      folded,
		relevanceGain: relevanceGain,
	}, nil
}

// Score computes completeness, relevance, and the weighted composite for one
// normalized advice. maxObservedLatency is the slowest valid latency in the
// same run, making the latency factor run-relative rather than tied to an
// absolute constant.
func (s *QualityScorer) Score(advice domain.NormalizedAdvice, latency, maxObservedLatency time.Duration) (completeness, relevance, composite float64) {
	// A fallback with nothing in it is the degenerate worst case; the
	// latency term must not manufacture confidence for an empty answer.
	if !advice.IsStructured() && strings.TrimSpace(advice.Summary) == "" {
		return 0, 0, 0
	}

	completeness = s.Completeness(advice)
	relevance = s.Relevance(advice)
	latencyFactor := LatencyFactor(latency, maxObservedLatency)

	composite = clamp01(s.weights.Completeness*completeness +
		s.weights.Relevance*relevance +
		s.weights.Latency*latencyFactor)
	return completeness, relevance, composite
}

// Completeness is the fraction of the five advice buckets that are present:
// summary, recommendations (the four timelines counted fractionally within
// the bucket), measurable goals, alerts, and overall assessment. Fallback
// advice with a populated summary therefore scores 0.2, not zero.
func (s *QualityScorer) Completeness(advice domain.NormalizedAdvice) float64 {
	var present float64
	if strings.TrimSpace(advice.Summary) != "" {
		present++
	}
	present += float64(advice.Recommendations.TimelineCount()) / 4.0
	if len(advice.MeasurableGoals) > 0 {
		present++
	}
	if len(advice.Alerts) > 0 {
		present++
	}
	if strings.TrimSpace(advice.OverallAssessment) != "" {
		present++
	}
	return present / completenessBuckets
}

// Relevance measures financial-keyword density over the advice's
// concatenated text, clipped to [0,1]. Matching is case-folded and tolerates
// an edit distance of one on longer tokens, so minor misspellings and
// missing diacritics still count.
func (s *QualityScorer) Relevance(advice domain.NormalizedAdvice) float64 {
	tokens := tokenize(advice.ConcatenatedText())
	if len(tokens) == 0 {
		return 0
	}

	hits := 0
	for _, token := range tokens {
		if s.matchesKeyword(token) {
			hits++
		}
	}

	density := float64(hits) / float64(len(tokens))
	return clamp01(density * s.relevanceGain)
}

// LatencyFactor converts a latency into a run-relative speed score:
// 1 - latency/maxObserved, clipped to [0,1]. When no valid latency exists in
// the run the factor is 1 so it cannot penalize the formula.
func LatencyFactor(latency, maxObserved time.Duration) float64 {
	if maxObserved <= 0 {
		return 1
	}
	return clamp01(1 - float64(latency)/float64(maxObserved))
}

func (s *QualityScorer) matchesKeyword(token string) bool {
	for _, kw := range s.keywords {
		if token == kw {
			return true
		}
		if len(token) >= fuzzyMatchMinLen && len(kw) >= fuzzyMatchMinLen &&
			levenshtein.ComputeDistance(token, kw) <= 1 {
			return true
		}
	}
	return false
}

// tokenize splits text into case-folded word tokens.
func tokenize(text string) []string {
	folded := foldCaser.String(text)
	return strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
