package engine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"text/template"

	"github.com/finadvisor/modelcompare/internal/domain"
)

// advicePromptTemplate frames the inference context for every backend.
// The schema instruction mirrors the shape the normalizer parses, so a
// cooperative model can be scored at full completeness.
const advicePromptTemplate = `You are a personal financial planner. Given the profile and categorized
spending history below, produce specific, actionable recommendations aligned
with the user's stated goal.

Respond with valid JSON only, using exactly this schema:
{
  "summary": string,
  "recommendations_by_timeline": {
    "immediate": [string],
    "short_term": [string],
    "medium_term": [string],
    "long_term": [string]
  },
  "measurable_goals": [{"goal": string, "kpi": string, "target": number, "timeframe_months": number}],
  "alerts": [string],
  "overall_assessment": string
}

Input data (JSON):
{{.ContextJSON}}`

// PromptBuilder renders the dispatch prompt from an InferenceContext.
// One prompt is built per comparison run and shared by every backend so the
// comparison is fair.
type PromptBuilder struct {
	tmpl *template.Template
}

// NewPromptBuilder compiles the advice prompt template.
func NewPromptBuilder() (*PromptBuilder, error) {
	tmpl, err := template.New("advicePrompt").Parse(advicePromptTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse advice prompt template: %w", err)
	}
	return &PromptBuilder{tmpl: tmpl}, nil
}

// Build serializes the context and renders the prompt.
func (p *PromptBuilder) Build(infCtx *domain.InferenceContext) (string, error) {
	if err := infCtx.Validate(); err != nil {
		return "", err
	}

	ctxJSON, err := json.MarshalIndent(infCtx, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal inference context: %w", err)
	}

	var buf bytes.Buffer
	if err := p.tmpl.Execute(&buf, struct{ ContextJSON string }{ContextJSON: string(ctxJSON)}); err != nil {
		return "", fmt.Errorf("execute advice prompt template: %w", err)
	}
	return buf.String(), nil
}
