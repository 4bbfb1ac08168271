package engine

import (
	"encoding/json"
	"strings"

	"github.com/finadvisor/modelcompare/internal/domain"
)

// ResponseNormalizer converts raw model payloads into the canonical
// NormalizedAdvice shape. Normalization always succeeds: unparsable payloads
// degrade to the fallback variant instead of surfacing an error.
//
// The normalizer accepts the canonical English schema and the legacy field
// names emitted by earlier model prompts (resumo, alertas, plano,
// metas_mensuraveis), so a mixed fleet of backends can be compared fairly.
type ResponseNormalizer struct{}

// NewResponseNormalizer creates a ResponseNormalizer.
func NewResponseNormalizer() *ResponseNormalizer { return &ResponseNormalizer{} }

// Field alias tables: canonical key first, legacy keys after.
var (
	summaryKeys         = []string{"summary", "resumo"}
	recommendationsKeys = []string{"recommendations_by_timeline", "recommendations", "plano"}
	goalsKeys           = []string{"measurable_goals", "metas_mensuraveis"}
	alertsKeys          = []string{"alerts", "alertas"}
	assessmentKeys      = []string{"overall_assessment", "avaliacao_geral"}

	immediateKeys  = []string{"immediate", "agora"}
	shortTermKeys  = []string{"short_term", "30_dias"}
	mediumTermKeys = []string{"medium_term", "90_dias"}
	longTermKeys   = []string{"long_term", "12_meses"}
)

// Normalize parses rawText against the advice schema.
//   - Empty or blank input yields a fallback with an empty summary, the
//     degenerate worst case for downstream scoring.
//   - A parse that recognizes at least one schema field yields a structured
//     advice with absent fields defaulted to empty collections.
//   - Anything else yields a fallback carrying the whole raw text as the
//     summary, flagged PartialParse.
func (n *ResponseNormalizer) Normalize(rawText string) domain.NormalizedAdvice {
	trimmed := strings.TrimSpace(rawText)
	if trimmed == "" {
		return fallbackAdvice("")
	}

	jsonStr := extractJSON(trimmed)
	if jsonStr == "" {
		return fallbackAdvice(rawText)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(jsonStr), &fields); err != nil {
		return fallbackAdvice(rawText)
	}

	// Some backends wrap the advice in an envelope ({"ok":true,"advice":{...}}).
	if inner, ok := fields["advice"]; ok {
		var unwrapped map[string]json.RawMessage
		if err := json.Unmarshal(inner, &unwrapped); err == nil {
			fields = unwrapped
		}
	}

	advice := domain.NormalizedAdvice{
		Kind:            domain.KindStructured,
		MeasurableGoals: []domain.MeasurableGoal{},
		Alerts:          []string{},
	}
	recognized := false

	if raw, ok := firstPresent(fields, summaryKeys); ok {
		if err := json.Unmarshal(raw, &advice.Summary); err == nil {
			recognized = true
		}
	}

	if raw, ok := firstPresent(fields, recommendationsKeys); ok {
		if recs, ok := decodeRecommendations(raw); ok {
			advice.Recommendations = recs
			recognized = true
		}
	}

	if raw, ok := firstPresent(fields, goalsKeys); ok {
		var goals []domain.MeasurableGoal
		if err := json.Unmarshal(raw, &goals); err == nil {
			advice.MeasurableGoals = goals
			recognized = true
		}
	}

	if raw, ok := firstPresent(fields, alertsKeys); ok {
		if alerts, ok := decodeStringList(raw); ok {
			advice.Alerts = alerts
			recognized = true
		}
	}

	if raw, ok := firstPresent(fields, assessmentKeys); ok {
		if err := json.Unmarshal(raw, &advice.OverallAssessment); err == nil {
			recognized = true
		}
	}

	// Valid JSON with no recognized advice field is no better than prose.
	if !recognized {
		return fallbackAdvice(rawText)
	}
	return advice
}

// fallbackAdvice wraps unparsable output as a flat summary.
func fallbackAdvice(rawText string) domain.NormalizedAdvice {
	return domain.NormalizedAdvice{
		Kind:            domain.KindFallback,
		Summary:         strings.TrimSpace(rawText),
		MeasurableGoals: []domain.MeasurableGoal{},
		Alerts:          []string{},
		PartialParse:    true,
	}
}

// firstPresent returns the raw value for the first alias present in fields.
func firstPresent(fields map[string]json.RawMessage, keys []string) (json.RawMessage, bool) {
	for _, key := range keys {
		if raw, ok := fields[key]; ok {
			return raw, true
		}
	}
	return nil, false
}

// decodeRecommendations parses the timeline buckets, accepting canonical and
// legacy timeline names. A flat list is bucketed as immediate actions.
func decodeRecommendations(raw json.RawMessage) (domain.Recommendations, bool) {
	var buckets map[string]json.RawMessage
	if err := json.Unmarshal(raw, &buckets); err != nil {
		// Some models emit recommendations as a flat list.
		if flat, ok := decodeStringList(raw); ok {
			return domain.Recommendations{Immediate: flat}, true
		}
		return domain.Recommendations{}, false
	}

	var recs domain.Recommendations
	any := false
	for _, bucket := range []struct {
		keys []string
		dst  *[]string
	}{
		{immediateKeys, &recs.Immediate},
		{shortTermKeys, &recs.ShortTerm},
		{mediumTermKeys, &recs.MediumTerm},
		{longTermKeys, &recs.LongTerm},
	} {
		if rawBucket, ok := firstPresent(buckets, bucket.keys); ok {
			if items, ok := decodeStringList(rawBucket); ok {
				*bucket.dst = items
				any = true
			}
		}
	}
	return recs, any
}

// decodeStringList parses a JSON array of advice items, tolerating objects
// with a description-like field in place of bare strings.
func decodeStringList(raw json.RawMessage) ([]string, bool) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			out = append(out, s)
			continue
		}
		var obj map[string]any
		if err := json.Unmarshal(item, &obj); err == nil {
			for _, key := range []string{"description", "action", "descricao", "acao", "meta"} {
				if v, ok := obj[key].(string); ok && v != "" {
					out = append(out, v)
					break
				}
			}
		}
	}
	return out, true
}

// extractJSON extracts the first JSON object from text that may wrap it in
// markdown fences or surrounding prose. Returns "" when no balanced object
// exists.
func extractJSON(response string) string {
	response = strings.TrimSpace(response)

	if idx := strings.Index(response, "```json"); idx != -1 {
		rest := response[idx+len("```json"):]
		if end := strings.Index(rest, "```"); end != -1 {
			return strings.TrimSpace(rest[:end])
		}
	}

	start := strings.Index(response, "{")
	if start == -1 {
		return ""
	}

	braceCount := 0
	inString := false
	escapeNext := false
	for i := start; i < len(response); i++ {
		ch := response[i]

		if escapeNext {
			escapeNext = false
			continue
		}
		if ch == '\\' {
			escapeNext = true
			continue
		}
		if ch == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}

		switch ch {
		case '{':
			braceCount++
		case '}':
			braceCount--
			if braceCount == 0 {
				return response[start : i+1]
			}
		}
	}
	return ""
}
