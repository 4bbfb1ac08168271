package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finadvisor/modelcompare/internal/domain"
)

const fullAdviceJSON = `{
  "summary": "Build an emergency fund while reducing debt.",
  "recommendations_by_timeline": {
    "immediate": ["Track monthly spending against a budget"],
    "short_term": ["Move savings into a higher interest account"],
    "medium_term": ["Increase retirement contributions"],
    "long_term": ["Diversify your investment portfolio"]
  },
  "measurable_goals": [
    {"goal": "Emergency fund", "kpi": "months of expenses", "target": 6, "timeframe_months": 12}
  ],
  "alerts": ["Debt to income ratio above 40%"],
  "overall_assessment": "Solid income but the savings rate needs improvement."
}`

func TestNormalizeStructured(t *testing.T) {
	n := NewResponseNormalizer()

	advice := n.Normalize(fullAdviceJSON)
	require.True(t, advice.IsStructured())
	assert.False(t, advice.PartialParse)
	assert.Equal(t, "Build an emergency fund while reducing debt.", advice.Summary)
	assert.Equal(t, 4, advice.Recommendations.TimelineCount())
	require.Len(t, advice.MeasurableGoals, 1)
	assert.Equal(t, "Emergency fund", advice.MeasurableGoals[0].Goal)
	assert.Len(t, advice.Alerts, 1)
	assert.NotEmpty(t, advice.OverallAssessment)
}

func TestNormalizeMarkdownFencedJSON(t *testing.T) {
	n := NewResponseNormalizer()
	wrapped := "Here is my advice:\n```json\n" + fullAdviceJSON + "\n```\nHope this helps!"

	advice := n.Normalize(wrapped)
	require.True(t, advice.IsStructured())
	assert.Equal(t, 4, advice.Recommendations.TimelineCount())
}

func TestNormalizeJSONEmbeddedInProse(t *testing.T) {
	n := NewResponseNormalizer()
	wrapped := `Sure! Based on your profile: {"summary": "Save more {aggressively}", "alerts": ["High spending"]} Let me know.`

	advice := n.Normalize(wrapped)
	require.True(t, advice.IsStructured())
	assert.Equal(t, "Save more {aggressively}", advice.Summary)
	assert.Equal(t, []string{"High spending"}, advice.Alerts)
}

func TestNormalizeLegacyFieldNames(t *testing.T) {
	n := NewResponseNormalizer()
	legacy := `{
	  "resumo": "Monte uma reserva de emergência.",
	  "plano": {
	    "agora": ["Corte gastos supérfluos"],
	    "30_dias": ["Abra uma conta poupança"],
	    "12_meses": ["Invista em renda fixa"]
	  },
	  "metas_mensuraveis": ["Guardar 20% da renda"],
	  "alertas": ["Dívida alta"],
	  "avaliacao_geral": "Situação recuperável."
	}`

	advice := n.Normalize(legacy)
	require.True(t, advice.IsStructured())
	assert.Equal(t, "Monte uma reserva de emergência.", advice.Summary)
	assert.Equal(t, 3, advice.Recommendations.TimelineCount())
	assert.Equal(t, []string{"Corte gastos supérfluos"}, advice.Recommendations.Immediate)
	assert.Equal(t, []string{"Invista em renda fixa"}, advice.Recommendations.LongTerm)
	require.Len(t, advice.MeasurableGoals, 1)
	assert.Len(t, advice.Alerts, 1)
}

func TestNormalizeEnvelopeUnwrap(t *testing.T) {
	n := NewResponseNormalizer()
	enveloped := `{"ok": true, "advice": {"summary": "Cut spending", "alerts": ["overdraft"]}}`

	advice := n.Normalize(enveloped)
	require.True(t, advice.IsStructured())
	assert.Equal(t, "Cut spending", advice.Summary)
}

func TestNormalizeFlatRecommendationList(t *testing.T) {
	n := NewResponseNormalizer()
	flat := `{"summary": "s", "recommendations": ["first step", "second step"]}`

	advice := n.Normalize(flat)
	require.True(t, advice.IsStructured())
	assert.Equal(t, []string{"first step", "second step"}, advice.Recommendations.Immediate)
}

func TestNormalizeObjectListItems(t *testing.T) {
	n := NewResponseNormalizer()
	objects := `{"alerts": [{"description": "High card balance"}, {"descricao": "Sem reserva"}]}`

	advice := n.Normalize(objects)
	require.True(t, advice.IsStructured())
	assert.Equal(t, []string{"High card balance", "Sem reserva"}, advice.Alerts)
}

func TestNormalizeFallbacks(t *testing.T) {
	n := NewResponseNormalizer()

	tests := []struct {
		name        string
		input       string
		wantSummary string
	}{
		{
			name:        "plain prose",
			input:       "You should save more and spend less on subscriptions.",
			wantSummary: "You should save more and spend less on subscriptions.",
		},
		{
			name:        "malformed JSON",
			input:       `{"summary": "unterminated`,
			wantSummary: `{"summary": "unterminated`,
		},
		{
			name:        "valid JSON without advice fields",
			input:       `{"status": "ok", "message": "hello"}`,
			wantSummary: `{"status": "ok", "message": "hello"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			advice := n.Normalize(tt.input)
			assert.Equal(t, domain.KindFallback, advice.Kind)
			assert.True(t, advice.PartialParse)
			assert.Equal(t, tt.wantSummary, advice.Summary)
			// Collections default to empty, never nil.
			assert.NotNil(t, advice.MeasurableGoals)
			assert.NotNil(t, advice.Alerts)
		})
	}
}

func TestNormalizeEmptyInput(t *testing.T) {
	n := NewResponseNormalizer()

	for _, input := range []string{"", "   ", "\n\t"} {
		advice := n.Normalize(input)
		assert.Equal(t, domain.KindFallback, advice.Kind)
		assert.Empty(t, advice.Summary)
	}
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"bare object", `{"a": 1}`, `{"a": 1}`},
		{"nested braces", `{"a": {"b": 2}}`, `{"a": {"b": 2}}`},
		{"braces inside strings", `{"a": "}{"}`, `{"a": "}{"}`},
		{"escaped quotes", `{"a": "say \"hi\""}`, `{"a": "say \"hi\""}`},
		{"prose prefix and suffix", `text {"a": 1} more`, `{"a": 1}`},
		{"no object", "just words", ""},
		{"unbalanced", `{"a": 1`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractJSON(tt.input))
		})
	}
}
