package domain

import (
	"time"
)

// RiskLevel is the fused rule-engine risk classification.
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// ModelLabel is the binary output of the statistical outlier model.
type ModelLabel string

const (
	ModelNormal    ModelLabel = "NORMAL"
	ModelAnomalous ModelLabel = "ANOMALOUS"
)

// Confidence qualifies how the statistical score was produced.
type Confidence string

const (
	// ConfidenceModel means the fitted outlier model produced the score.
	ConfidenceModel Confidence = "model"
	// ConfidenceHeuristic means the model fit failed and the score is a
	// raw growth-rate fallback.
	ConfidenceHeuristic Confidence = "heuristic"
)

// AnalysisReport is the single aggregate result of one analysis request.
// It is read-only for consumers; the renderer must not mutate it.
type AnalysisReport struct {
	ID          string            `json:"id"`
	GeneratedAt time.Time         `json:"generated_at"`
	Company     CompanyProfile    `json:"company"`
	Snapshot    InputSnapshot     `json:"snapshot"`
	Totals      map[string]float64 `json:"totals"`
	Horizontal  []HorizontalEntry `json:"horizontal"`
	Vertical    *VerticalAnalysis `json:"vertical,omitempty"`
	Ratios      map[string]float64 `json:"ratios"`
	BreakEven   *BreakEvenResult  `json:"breakeven,omitempty"`
	Risk        RiskVerdict       `json:"risk"`
	Projection  []ProjectedPeriod `json:"risk_projection"`
	Forecast    *Forecast         `json:"forecast,omitempty"`
	Insights    Insights          `json:"insights"`
	Warnings    []Warning         `json:"warnings"`
}

// CompanyProfile holds the descriptive fields from the company-info table.
type CompanyProfile struct {
	Name         string `json:"name"`
	BusinessType string `json:"business_type"`
	Currency     string `json:"currency"`
}

// InputSnapshot is the headline view of the normalized input, shown to the
// user for confirmation before the detailed sections.
type InputSnapshot struct {
	RevenueCurrent      float64 `json:"revenue_current"`
	NetIncomeCurrent    float64 `json:"net_income_current"`
	TotalAssetsCurrent  float64 `json:"total_assets_current"`
	TotalEquityCurrent  float64 `json:"total_equity_current"`
	ContributionMargin  float64 `json:"contribution_margin"`
}

// HorizontalEntry is the period-over-period variance for one line item.
type HorizontalEntry struct {
	Concept     string  `json:"concept"`
	Prior       float64 `json:"prior"`
	Current     float64 `json:"current"`
	VarianceAbs float64 `json:"variance_abs"`
	VariancePct float64 `json:"variance_pct"`
}

// VerticalAnalysis expresses statement components as percentages of their
// base total. Nil when the bases are not positive.
type VerticalAnalysis struct {
	IncomeStatement  map[string]float64 `json:"income_statement"`
	BalanceSheet     map[string]float64 `json:"balance_sheet"`
	CapitalStructure CapitalStructure   `json:"capital_structure"`
}

// CapitalStructure is the liabilities/equity split of total assets.
type CapitalStructure struct {
	LiabilitiesPct float64 `json:"liabilities_pct"`
	EquityPct      float64 `json:"equity_pct"`
}

// BreakEvenResult holds the break-even computation. Nil when the
// preconditions (price > variable cost > 0) fail.
type BreakEvenResult struct {
	ContributionMargin float64 `json:"contribution_margin"`
	BreakEvenUnits     float64 `json:"breakeven_units"`
	BreakEvenRevenue   float64 `json:"breakeven_revenue"`
	ActualRevenue      float64 `json:"actual_revenue"`
	SafetyMargin       float64 `json:"safety_margin"`
	SafetyMarginPct    float64 `json:"safety_margin_pct"`
	UnitPrice          float64 `json:"unit_price"`
	UnitVariableCost   float64 `json:"unit_variable_cost"`
	FixedCosts         float64 `json:"fixed_costs"`
	UnitsSold          float64 `json:"units_sold"`
}

// RiskVerdict fuses the deterministic rule engine with the statistical
// outlier model.
type RiskVerdict struct {
	RuleLevel  RiskLevel          `json:"rule_level"`
	Alerts     []string           `json:"alerts"`
	ModelLabel ModelLabel         `json:"model_label"`
	ModelScore float64            `json:"model_score"`
	Final      RiskLevel          `json:"final"`
	Confidence Confidence         `json:"confidence"`
	Features   map[string]float64 `json:"features"`
}

// ProjectedPeriod is the risk assessment of one linearly extrapolated
// future period.
type ProjectedPeriod struct {
	Offset             int                `json:"offset"`
	Predicted          map[string]float64 `json:"predicted"`
	AnomalyProbability float64            `json:"anomaly_probability"`
	Risk               string             `json:"risk"`
}

// Projected risk labels. These are presentation labels, distinct from the
// rule engine's RiskLevel values.
const (
	ProjectedRiskLow    = "Low"
	ProjectedRiskMedium = "Medium"
	ProjectedRiskHigh   = "High"
)

// Forecast is the revenue/cost projection over the requested horizon.
type Forecast struct {
	Method             string    `json:"method"`
	Horizon            int       `json:"horizon"`
	Revenue            []float64 `json:"revenue"`
	Costs              []float64 `json:"costs"`
	// AvgAnnualGrowthPct is the geometric average annual growth implied by
	// the revenue forecast. Nil when the last observed value is zero.
	AvgAnnualGrowthPct *float64  `json:"avg_annual_growth_pct,omitempty"`
	LastRevenue        float64   `json:"last_revenue"`
	LastCosts          float64   `json:"last_costs"`
}

// Insights are the derived human-readable findings and recommendations.
type Insights struct {
	Summary         string    `json:"summary"`
	Findings        []Finding `json:"findings"`
	Recommendations []string  `json:"recommendations"`
}

// Finding is a single titled observation about the analyzed data.
type Finding struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

// Warning records a recovered data-quality issue encountered while
// producing the report. Warnings never abort an analysis.
type Warning struct {
	Source  string `json:"source"`
	Message string `json:"message"`
}
