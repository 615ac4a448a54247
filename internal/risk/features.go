// Package risk combines a deterministic financial rule engine with a
// statistical outlier model into a fused risk verdict, and re-scores
// linearly projected future periods against the same fitted model.
package risk

import (
	"math"

	"finsight/internal/analysis"
)

// epsilon pads every denominator so feature ratios are finite by
// construction, including for all-zero totals. A zero denominator yields a
// large but bounded value instead of an infinity or a branch.
const epsilon = 1e-9

// Features is the fixed-schema vector of ratios and growth rates the rule
// engine and the outlier model operate on. Derived fields are fractions,
// not percentages.
type Features struct {
	RevenueGrowth float64
	ProfitGrowth  float64
	NetMargin     float64
	Leverage      float64
	Liquidity     float64

	// Raw current-period values consulted by the rule engine.
	RevenueCurrent   float64
	NetIncomeCurrent float64
}

// NewFeatures derives the feature vector from a totals snapshot.
func NewFeatures(t analysis.Totals) Features {
	return Features{
		RevenueGrowth:    (t.Revenue.Current - t.Revenue.Prior) / (t.Revenue.Prior + epsilon),
		ProfitGrowth:     (t.NetIncome.Current - t.NetIncome.Prior) / (t.NetIncome.Prior + epsilon),
		NetMargin:        t.NetIncome.Current / (t.Revenue.Current + epsilon),
		Leverage:         t.Liabilities.Current / (t.Equity.Current + epsilon),
		Liquidity:        t.CurrentAssets.Current / (t.Liabilities.Current + epsilon),
		RevenueCurrent:   t.Revenue.Current,
		NetIncomeCurrent: t.NetIncome.Current,
	}.sanitized()
}

// sanitized replaces any non-finite derived ratio with 0. The epsilon pad
// handles zero denominators, but a component of exactly -epsilon still
// divides by zero, and the model cannot score Inf or NaN.
func (f Features) sanitized() Features {
	f.RevenueGrowth = finite(f.RevenueGrowth)
	f.ProfitGrowth = finite(f.ProfitGrowth)
	f.NetMargin = finite(f.NetMargin)
	f.Leverage = finite(f.Leverage)
	f.Liquidity = finite(f.Liquidity)
	return f
}

func finite(v float64) float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0
	}
	return v
}

// Vector returns the derived features in their fixed model order.
func (f Features) Vector() []float64 {
	return []float64{f.RevenueGrowth, f.ProfitGrowth, f.NetMargin, f.Leverage, f.Liquidity}
}

// Map returns the derived features keyed for the report.
func (f Features) Map() map[string]float64 {
	return map[string]float64{
		"revenue_growth": f.RevenueGrowth,
		"profit_growth":  f.ProfitGrowth,
		"net_margin":     f.NetMargin,
		"leverage":       f.Leverage,
		"liquidity":      f.Liquidity,
	}
}
