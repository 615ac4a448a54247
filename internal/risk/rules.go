package risk

import (
	"finsight/pkg/contracts/domain"
)

// rule is one independent check contributing risk points and an
// explanatory alert when triggered.
type rule struct {
	points  int
	message string
	applies func(Features) bool
}

// rules are evaluated in fixed order; alerts are returned in evaluation
// order, not sorted by severity.
var rules = []rule{
	{2, "Current revenue is negative: values are not plausible.",
		func(f Features) bool { return f.RevenueCurrent < 0 }},
	{2, "Severe losses: net income below -30% of revenue.",
		func(f Features) bool { return f.NetIncomeCurrent < -0.3*f.RevenueCurrent }},
	{2, "High leverage (>3): liabilities far exceed equity.",
		func(f Features) bool { return f.Leverage > 3 }},
	{1, "Limited liquidity (<0.7): possible payment risk.",
		func(f Features) bool { return f.Liquidity < 0.7 }},
	{1, "Sharp revenue decline (>30%).",
		func(f Features) bool { return f.RevenueGrowth < -0.3 }},
	{1, "Low net margin (<2%): limited profitability.",
		func(f Features) bool { return f.NetMargin < 0.02 }},
}

// RuleResult is the outcome of the deterministic rule engine.
type RuleResult struct {
	Level  domain.RiskLevel
	Alerts []string
	Points int
}

// EvaluateRules runs the six checks against the feature vector. Three or
// more points classify HIGH, exactly two MEDIUM, anything less LOW.
func EvaluateRules(f Features) RuleResult {
	result := RuleResult{Alerts: []string{}}
	for _, r := range rules {
		if r.applies(f) {
			result.Points += r.points
			result.Alerts = append(result.Alerts, r.message)
		}
	}
	switch {
	case result.Points >= 3:
		result.Level = domain.RiskHigh
	case result.Points == 2:
		result.Level = domain.RiskMedium
	default:
		result.Level = domain.RiskLow
	}
	return result
}
