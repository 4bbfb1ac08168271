// Package domain contains pure, dependency-free models and types for the
// multi-model comparison engine.
package domain

// FinancialProfile summarizes the user's demographic and financial situation.
// It is assembled by an external collaborator (profile questionnaire) and is
// treated as an opaque input by the engine.
type FinancialProfile struct {
	// Age of the user in years.
	Age int `json:"age"`

	// MonthlyIncome is the user's gross monthly income.
	MonthlyIncome float64 `json:"monthly_income"`

	// Dependents is the number of financial dependents.
	Dependents int `json:"dependents"`

	// RiskProfile classifies risk tolerance (e.g. "conservative",
	// "moderate", "aggressive").
	RiskProfile string `json:"risk_profile"`

	// DebtToIncome is the user's debt-to-income ratio.
	DebtToIncome float64 `json:"debt_to_income"`

	// LiquidAssets is the total of readily available savings.
	LiquidAssets float64 `json:"liquid_assets"`
}

// Goal describes the user's stated financial objective.
type Goal struct {
	// Description is the free-text goal statement.
	Description string `json:"description"`

	// TargetAmount is the monetary target for the goal.
	TargetAmount float64 `json:"target_amount"`

	// TimeframeMonths is the desired horizon in months.
	TimeframeMonths int `json:"timeframe_months"`
}

// TransactionSummary carries categorized spending totals produced by the
// statement-parsing collaborator. The engine never re-categorizes; it only
// forwards these totals into the model prompt.
type TransactionSummary struct {
	// CategoryTotals maps spending category names to their summed amounts.
	CategoryTotals map[string]float64 `json:"category_totals"`

	// NetFlow is income minus expenses over the statement period.
	NetFlow float64 `json:"net_flow"`
}

// InferenceContext is the normalized input handed to every backend in a
// comparison run. It is an immutable value; the engine null-checks it but
// does not validate business semantics.
type InferenceContext struct {
	// Profile is the user's financial profile summary.
	Profile FinancialProfile `json:"profile"`

	// Goal is the user's stated objective.
	Goal Goal `json:"goal"`

	// Transactions holds the categorized spending totals.
	Transactions TransactionSummary `json:"transactions"`
}

// Validate performs the engine's minimal null-checking on the context.
// Business semantics are owned by the upstream collaborator.
func (c *InferenceContext) Validate() error {
	if c == nil {
		return ErrNilContext
	}
	if c.Profile == (FinancialProfile{}) && c.Goal == (Goal{}) {
		return ErrEmptyContext
	}
	return nil
}
