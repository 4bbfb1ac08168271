package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// AdviceKind tags the two shapes normalized advice can take.
type AdviceKind string

const (
	// KindStructured marks advice parsed from the expected JSON schema.
	// Some fields may be empty collections; that is still structured.
	KindStructured AdviceKind = "structured"

	// KindFallback marks advice whose payload could not be parsed.
	// The entire raw text is preserved in Summary.
	KindFallback AdviceKind = "fallback"
)

// Recommendations buckets advice items by the timeline on which the user
// should act. Empty slices mean the model offered nothing for that horizon.
type Recommendations struct {
	// Immediate lists actions to take right away.
	Immediate []string `json:"immediate"`

	// ShortTerm lists actions for roughly the next 30 days.
	ShortTerm []string `json:"short_term"`

	// MediumTerm lists actions for roughly the next 90 days.
	MediumTerm []string `json:"medium_term"`

	// LongTerm lists actions for the next 12 months and beyond.
	LongTerm []string `json:"long_term"`
}

// IsEmpty reports whether no timeline holds any recommendation.
func (r Recommendations) IsEmpty() bool {
	return len(r.Immediate) == 0 && len(r.ShortTerm) == 0 &&
		len(r.MediumTerm) == 0 && len(r.LongTerm) == 0
}

// TimelineCount returns how many of the four timelines are populated.
func (r Recommendations) TimelineCount() int {
	count := 0
	for _, bucket := range [][]string{r.Immediate, r.ShortTerm, r.MediumTerm, r.LongTerm} {
		if len(bucket) > 0 {
			count++
		}
	}
	return count
}

// MeasurableGoal is a quantified target attached to the advice.
// Models sometimes emit these as bare strings instead of objects, so the
// type unmarshals from either form.
type MeasurableGoal struct {
	// Goal is the human-readable goal statement.
	Goal string `json:"goal"`

	// KPI names the indicator used to track progress.
	KPI string `json:"kpi,omitempty"`

	// Target is the numeric target value for the KPI.
	Target float64 `json:"target,omitempty"`

	// TimeframeMonths is the horizon for reaching the target.
	TimeframeMonths int `json:"timeframe_months,omitempty"`
}

// UnmarshalJSON accepts either a structured goal object or a bare string.
func (g *MeasurableGoal) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		g.Goal = s
		return nil
	}

	type goalAlias MeasurableGoal
	var alias goalAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return fmt.Errorf("measurable goal must be a string or object: %w", err)
	}
	*g = MeasurableGoal(alias)
	return nil
}

// NormalizedAdvice is the canonical internal representation of one model's
// advice. Kind distinguishes a structured parse from a free-text fallback so
// downstream consumers switch on the tag instead of probing field presence.
// Instances are derived deterministically from a RawModelResponse and never
// mutated afterwards.
type NormalizedAdvice struct {
	// Kind tags the variant: structured or fallback.
	Kind AdviceKind `json:"kind"`

	// Summary is the model's overall summary. For fallback advice it holds
	// the entire raw payload.
	Summary string `json:"summary"`

	// Recommendations buckets advice items by timeline.
	Recommendations Recommendations `json:"recommendations_by_timeline"`

	// MeasurableGoals lists quantified targets, if any.
	MeasurableGoals []MeasurableGoal `json:"measurable_goals"`

	// Alerts lists warnings the model raised about the user's finances.
	Alerts []string `json:"alerts"`

	// OverallAssessment is the model's one-line verdict on financial health.
	OverallAssessment string `json:"overall_assessment"`

	// PartialParse is true when the payload could not be parsed against the
	// advice schema and the raw text was preserved as Summary.
	PartialParse bool `json:"partial_parse"`
}

// IsStructured reports whether the advice came from a successful schema parse.
func (a NormalizedAdvice) IsStructured() bool { return a.Kind == KindStructured }

// ConcatenatedText joins every textual field into one string for keyword
// analysis. Field order is fixed so scoring is deterministic.
func (a NormalizedAdvice) ConcatenatedText() string {
	var b strings.Builder
	b.WriteString(a.Summary)
	for _, bucket := range [][]string{
		a.Recommendations.Immediate,
		a.Recommendations.ShortTerm,
		a.Recommendations.MediumTerm,
		a.Recommendations.LongTerm,
		a.Alerts,
	} {
		for _, item := range bucket {
			b.WriteString(" ")
			b.WriteString(item)
		}
	}
	for _, goal := range a.MeasurableGoals {
		b.WriteString(" ")
		b.WriteString(goal.Goal)
		b.WriteString(" ")
		b.WriteString(goal.KPI)
	}
	b.WriteString(" ")
	b.WriteString(a.OverallAssessment)
	return b.String()
}
