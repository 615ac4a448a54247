package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFixtureAnalyzer(t *testing.T) (*Analyzer, *Warnings) {
	t.Helper()
	ds := fixtureDataset()
	var w Warnings
	totals := ComputeTotals(ds, &w)
	return NewAnalyzer(ds, totals, &w, nil), &w
}

func TestHorizontal(t *testing.T) {
	a, _ := newFixtureAnalyzer(t)

	entries := a.Horizontal()
	require.Len(t, entries, 7)

	sales := entries[0]
	assert.Equal(t, ItemTotalSales, sales.Concept)
	assert.InDelta(t, 100000, sales.Prior, 1e-9)
	assert.InDelta(t, 120000, sales.Current, 1e-9)
	assert.InDelta(t, 20000, sales.VarianceAbs, 1e-9)
	assert.InDelta(t, 20, sales.VariancePct, 1e-9)

	net := entries[6]
	assert.Equal(t, "Net income", net.Concept)
	assert.InDelta(t, 10500, net.VarianceAbs, 1e-9)
}

func TestHorizontalNonPositivePrior(t *testing.T) {
	ds := makeDataset(
		[][]string{{"Total sales", "0", "120000"}},
		nil, nil, nil,
	)
	var w Warnings
	a := NewAnalyzer(ds, ComputeTotals(ds, &w), &w, nil)

	entries := a.Horizontal()
	sales := entries[0]
	assert.Zero(t, sales.VarianceAbs)
	assert.Zero(t, sales.VariancePct)
	assert.InDelta(t, 120000, sales.Current, 1e-9)
}

func TestVertical(t *testing.T) {
	a, _ := newFixtureAnalyzer(t)

	v := a.Vertical()
	require.NotNil(t, v)

	assert.InDelta(t, 45000.0/123000*100, v.IncomeStatement[ItemCostOfSales], 1e-9)
	assert.InDelta(t, 12000.0/78000*100, v.BalanceSheet[ItemCash], 1e-9)
	assert.InDelta(t, 28000.0/78000*100, v.CapitalStructure.LiabilitiesPct, 1e-9)
	assert.InDelta(t, 50000.0/78000*100, v.CapitalStructure.EquityPct, 1e-9)
}

func TestVerticalSkippedWhenBaseNotPositive(t *testing.T) {
	ds := makeDataset(
		[][]string{{"Total sales", "100", "0"}},
		[][]string{{"Cash and banks", "100", "200"}},
		nil, nil,
	)
	var w Warnings
	a := NewAnalyzer(ds, ComputeTotals(ds, &w), &w, nil)

	before := len(w.List())
	assert.Nil(t, a.Vertical())
	require.Len(t, w.List(), before+1)
	assert.Equal(t, "vertical", w.List()[before].Source)
}

func TestRatios(t *testing.T) {
	a, _ := newFixtureAnalyzer(t)

	ratios := a.Ratios()
	require.Len(t, ratios, 5)
	assert.InDelta(t, 3.0, ratios[RatioCurrentRatio], 1e-9)
	assert.InDelta(t, 33500.0/78000*100, ratios[RatioROA], 1e-9)
	assert.InDelta(t, 33500.0/50000*100, ratios[RatioROE], 1e-9)
	assert.InDelta(t, (123000.0-45000-33000)/123000*100, ratios[RatioOperatingMargin], 1e-9)
	assert.InDelta(t, 28000.0/78000*100, ratios[RatioLeverage], 1e-9)
}

func TestRatiosOmittedOnGuardFailure(t *testing.T) {
	ds := makeDataset(
		[][]string{{"Total sales", "0", "0"}},
		nil, nil, nil,
	)
	var w Warnings
	a := NewAnalyzer(ds, ComputeTotals(ds, &w), &w, nil)

	ratios := a.Ratios()
	_, hasROA := ratios[RatioROA]
	_, hasCurrent := ratios[RatioCurrentRatio]
	_, hasMargin := ratios[RatioOperatingMargin]
	assert.False(t, hasROA, "roa must be absent when assets are zero")
	assert.False(t, hasCurrent)
	assert.False(t, hasMargin)
	assert.Empty(t, ratios)
}

func TestBreakEven(t *testing.T) {
	a, _ := newFixtureAnalyzer(t)

	be := a.BreakEven()
	require.NotNil(t, be)

	assert.InDelta(t, 40, be.ContributionMargin, 1e-9)
	assert.InDelta(t, 100, be.BreakEvenUnits, 1e-9)
	assert.InDelta(t, 10000, be.BreakEvenRevenue, 1e-9)
	assert.InDelta(t, 15000, be.ActualRevenue, 1e-9)
	assert.InDelta(t, 5000, be.SafetyMargin, 1e-9)
	assert.InDelta(t, 33.33, be.SafetyMarginPct, 0.01)
}

func TestBreakEvenSkipped(t *testing.T) {
	tests := []struct {
		name     string
		price    string
		variable string
	}{
		{name: "zero price", price: "0", variable: "60"},
		{name: "variable above price", price: "50", variable: "60"},
		{name: "zero variable cost", price: "100", variable: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds := makeDataset(nil, nil, [][]string{
				{"Unit selling price", tt.price},
				{"Unit variable cost", tt.variable},
				{"Monthly fixed costs", "4000"},
				{"Monthly units sold", "150"},
			}, nil)
			var w Warnings
			a := NewAnalyzer(ds, ComputeTotals(ds, &w), &w, nil)

			before := len(w.List())
			assert.Nil(t, a.BreakEven())
			require.Greater(t, len(w.List()), before)
			assert.Equal(t, "breakeven", w.List()[len(w.List())-1].Source)
		})
	}
}

func TestCompany(t *testing.T) {
	a, _ := newFixtureAnalyzer(t)

	c := a.Company()
	assert.Equal(t, "ACME Trading", c.Name)
	assert.Equal(t, "Retail", c.BusinessType)
	assert.Equal(t, "USD", c.Currency)
}

func TestCompanyFallback(t *testing.T) {
	ds := makeDataset(nil, nil, nil, nil)
	var w Warnings
	a := NewAnalyzer(ds, ComputeTotals(ds, &w), &w, nil)

	c := a.Company()
	assert.Equal(t, "Not available", c.Name)
	assert.Equal(t, "Not available", c.BusinessType)
	assert.Equal(t, "Not available", c.Currency)
}

func TestSnapshot(t *testing.T) {
	a, _ := newFixtureAnalyzer(t)

	s := a.Snapshot()
	assert.InDelta(t, 123000, s.RevenueCurrent, 1e-9)
	assert.InDelta(t, 33500, s.NetIncomeCurrent, 1e-9)
	assert.InDelta(t, 78000, s.TotalAssetsCurrent, 1e-9)
	assert.InDelta(t, 50000, s.TotalEquityCurrent, 1e-9)
	assert.InDelta(t, 40, s.ContributionMargin, 1e-9)
}
