package risk

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"finsight/internal/analysis"
)

func healthyTotals() analysis.Totals {
	return analysis.Totals{
		Revenue:       analysis.PeriodValues{Prior: 102000, Current: 123000},
		NetIncome:     analysis.PeriodValues{Prior: 23000, Current: 33500},
		Assets:        analysis.PeriodValues{Prior: 74000, Current: 78000},
		Liabilities:   analysis.PeriodValues{Prior: 29000, Current: 28000},
		Equity:        analysis.PeriodValues{Prior: 45000, Current: 50000},
		CurrentAssets: analysis.PeriodValues{Prior: 24000, Current: 30000},
	}
}

func distressedTotals() analysis.Totals {
	return analysis.Totals{
		Revenue:       analysis.PeriodValues{Prior: 100000, Current: 60000},
		NetIncome:     analysis.PeriodValues{Prior: 5000, Current: -25000},
		Assets:        analysis.PeriodValues{Prior: 90000, Current: 85000},
		Liabilities:   analysis.PeriodValues{Prior: 70000, Current: 80000},
		Equity:        analysis.PeriodValues{Prior: 25000, Current: 20000},
		CurrentAssets: analysis.PeriodValues{Prior: 35000, Current: 30000},
	}
}

func TestNewFeatures(t *testing.T) {
	f := NewFeatures(healthyTotals())

	assert.InDelta(t, 21000.0/102000, f.RevenueGrowth, 1e-6)
	assert.InDelta(t, 10500.0/23000, f.ProfitGrowth, 1e-6)
	assert.InDelta(t, 33500.0/123000, f.NetMargin, 1e-6)
	assert.InDelta(t, 28000.0/50000, f.Leverage, 1e-6)
	assert.InDelta(t, 30000.0/28000, f.Liquidity, 1e-6)
	assert.InDelta(t, 123000, f.RevenueCurrent, 1e-9)
	assert.InDelta(t, 33500, f.NetIncomeCurrent, 1e-9)
}

func TestNewFeaturesAllZeroTotalsStayFinite(t *testing.T) {
	f := NewFeatures(analysis.Totals{})

	for key, v := range f.Map() {
		assert.False(t, math.IsNaN(v), "feature %s is NaN", key)
		assert.False(t, math.IsInf(v, 0), "feature %s is infinite", key)
	}
}

func TestNewFeaturesCancelledDenominatorsStayFinite(t *testing.T) {
	// A component of exactly -epsilon cancels the denominator pad.
	tests := []struct {
		name   string
		totals analysis.Totals
	}{
		{
			name: "prior revenue cancels pad",
			totals: analysis.Totals{
				Revenue: analysis.PeriodValues{Prior: -1e-9, Current: 5},
			},
		},
		{
			name: "prior net income cancels pad",
			totals: analysis.Totals{
				NetIncome: analysis.PeriodValues{Prior: -1e-9, Current: 3},
			},
		},
		{
			name: "zero over zero denominator",
			totals: analysis.Totals{
				Revenue: analysis.PeriodValues{Prior: -1e-9, Current: -1e-9},
			},
		},
		{
			name: "negative equity cancels pad",
			totals: analysis.Totals{
				Liabilities: analysis.PeriodValues{Current: 80000},
				Equity:      analysis.PeriodValues{Current: -1e-9},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFeatures(tt.totals)
			for key, v := range f.Map() {
				assert.False(t, math.IsNaN(v), "feature %s is NaN", key)
				assert.False(t, math.IsInf(v, 0), "feature %s is infinite", key)
			}
		})
	}
}

func TestProjectedFeaturesStayFinite(t *testing.T) {
	totals := analysis.Totals{
		Revenue: analysis.PeriodValues{Prior: 100, Current: -1e-9},
		Equity:  analysis.PeriodValues{Current: -1e-9},
	}

	f := projectedFeatures(totals, 50, 10)
	for key, v := range f.Map() {
		assert.False(t, math.IsNaN(v), "feature %s is NaN", key)
		assert.False(t, math.IsInf(v, 0), "feature %s is infinite", key)
	}
}

func TestFeaturesVectorOrder(t *testing.T) {
	f := Features{RevenueGrowth: 1, ProfitGrowth: 2, NetMargin: 3, Leverage: 4, Liquidity: 5}

	assert.Equal(t, []float64{1, 2, 3, 4, 5}, f.Vector())

	m := f.Map()
	assert.Len(t, m, 5)
	assert.Equal(t, 1.0, m["revenue_growth"])
	assert.Equal(t, 5.0, m["liquidity"])
}
