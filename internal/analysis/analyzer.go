package analysis

import (
	"log/slog"

	"finsight/internal/workbook"
	"finsight/pkg/contracts/domain"
)

// Analyzer derives the financial diagnostics from a dataset and its totals
// snapshot. One analyzer serves exactly one request.
type Analyzer struct {
	ds       workbook.Dataset
	totals   Totals
	warnings *Warnings
	logger   *slog.Logger
}

// NewAnalyzer creates an analyzer over an already-computed totals snapshot.
func NewAnalyzer(ds workbook.Dataset, totals Totals, warnings *Warnings, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{ds: ds, totals: totals, warnings: warnings, logger: logger}
}

// Totals exposes the snapshot the analyzer was built over.
func (a *Analyzer) Totals() Totals {
	return a.totals
}

// horizontalConcepts fixes the tracked line items and their display order.
var horizontalConcepts = []struct {
	label  string
	values func(Totals) PeriodValues
}{
	{ItemTotalSales, func(t Totals) PeriodValues { return t.Sales }},
	{ItemOtherIncome, func(t Totals) PeriodValues { return t.OtherIncome }},
	{ItemCostOfSales, func(t Totals) PeriodValues { return t.CostOfSales }},
	{ItemOperatingExpenses, func(t Totals) PeriodValues { return t.OperatingExpenses }},
	{ItemFinancialExpenses, func(t Totals) PeriodValues { return t.FinancialExpenses }},
	{ItemTaxes, func(t Totals) PeriodValues { return t.Taxes }},
	{"Net income", func(t Totals) PeriodValues { return t.NetIncome }},
}

// Horizontal computes the period-over-period variance for each tracked
// concept. A non-positive prior value means there is no meaningful growth
// rate; both variances report as 0 rather than undefined.
func (a *Analyzer) Horizontal() []domain.HorizontalEntry {
	entries := make([]domain.HorizontalEntry, 0, len(horizontalConcepts))
	for _, c := range horizontalConcepts {
		v := c.values(a.totals)
		entry := domain.HorizontalEntry{
			Concept: c.label,
			Prior:   v.Prior,
			Current: v.Current,
		}
		if v.Prior > 0 {
			entry.VarianceAbs = v.Current - v.Prior
			entry.VariancePct = entry.VarianceAbs / v.Prior * 100
		}
		entries = append(entries, entry)
	}
	return entries
}

// Vertical expresses income-statement components as percentages of current
// total revenue and balance-sheet components as percentages of current
// total assets. Returns nil when either base is not positive: percentages
// of a non-positive base are undefined.
func (a *Analyzer) Vertical() *domain.VerticalAnalysis {
	revenue := a.totals.Revenue.Current
	assets := a.totals.Assets.Current
	if revenue <= 0 || assets <= 0 {
		a.warnings.Addf("vertical", "skipped: revenue (%.2f) or total assets (%.2f) not positive", revenue, assets)
		return nil
	}

	is := map[string]float64{
		ItemOtherIncome:       a.totals.OtherIncome.Current / revenue * 100,
		ItemCostOfSales:       a.totals.CostOfSales.Current / revenue * 100,
		ItemOperatingExpenses: a.totals.OperatingExpenses.Current / revenue * 100,
		ItemFinancialExpenses: a.totals.FinancialExpenses.Current / revenue * 100,
		ItemTaxes:             a.totals.Taxes.Current / revenue * 100,
	}
	bs := map[string]float64{
		ItemCash:        a.totals.Cash.Current / assets * 100,
		ItemReceivables: a.totals.Receivables.Current / assets * 100,
		ItemInventory:   a.totals.Inventory.Current / assets * 100,
		ItemFixedAssets: a.totals.FixedAssets.Current / assets * 100,
	}

	return &domain.VerticalAnalysis{
		IncomeStatement: is,
		BalanceSheet:    bs,
		CapitalStructure: domain.CapitalStructure{
			LiabilitiesPct: a.totals.Liabilities.Current / assets * 100,
			EquityPct:      a.totals.Equity.Current / assets * 100,
		},
	}
}

// Ratio keys in the ratios mapping.
const (
	RatioCurrentRatio    = "current_ratio"
	RatioROA             = "roa"
	RatioROE             = "roe"
	RatioOperatingMargin = "operating_margin"
	RatioLeverage        = "leverage"
)

// Ratios computes the liquidity, profitability and leverage ratios. A ratio
// whose denominator guard fails is omitted from the mapping entirely;
// absence means "not computable", which callers must treat as distinct from
// a computed zero.
func (a *Analyzer) Ratios() map[string]float64 {
	t := a.totals
	ratios := make(map[string]float64, 5)

	if debt := t.ShortTermDebt.Current; debt > 0 {
		ratios[RatioCurrentRatio] = t.CurrentAssets.Current / debt
	}
	if t.Assets.Current > 0 {
		ratios[RatioROA] = t.NetIncome.Current / t.Assets.Current * 100
		ratios[RatioLeverage] = t.Liabilities.Current / t.Assets.Current * 100
	}
	if t.Equity.Current > 0 {
		ratios[RatioROE] = t.NetIncome.Current / t.Equity.Current * 100
	}
	if revenue := t.Revenue.Current; revenue > 0 {
		operating := revenue - t.CostOfSales.Current - t.OperatingExpenses.Current
		ratios[RatioOperatingMargin] = operating / revenue * 100
	}

	return ratios
}

// BreakEven computes the break-even point from the break-even inputs table.
// Requires unit price > unit variable cost > 0; otherwise the computation
// is skipped and nil is returned.
func (a *Analyzer) BreakEven() *domain.BreakEvenResult {
	eq := a.ds.Table(workbook.TableBreakEven)

	price := resolveTracked(eq, ItemUnitPrice, PeriodValue, workbook.TableBreakEven, a.warnings)
	variable := resolveTracked(eq, ItemUnitVariableCost, PeriodValue, workbook.TableBreakEven, a.warnings)
	fixed := resolveTracked(eq, ItemFixedCosts, PeriodValue, workbook.TableBreakEven, a.warnings)
	units := resolveTracked(eq, ItemUnitsSold, PeriodValue, workbook.TableBreakEven, a.warnings)

	if price <= 0 || variable <= 0 || price <= variable {
		a.warnings.Addf("breakeven", "skipped: requires unit price > unit variable cost > 0 (price=%.2f, variable=%.2f)", price, variable)
		return nil
	}

	margin := price - variable
	beUnits := fixed / margin
	beRevenue := beUnits * price
	actual := units * price
	safety := actual - beRevenue

	result := &domain.BreakEvenResult{
		ContributionMargin: margin,
		BreakEvenUnits:     beUnits,
		BreakEvenRevenue:   beRevenue,
		ActualRevenue:      actual,
		SafetyMargin:       safety,
		UnitPrice:          price,
		UnitVariableCost:   variable,
		FixedCosts:         fixed,
		UnitsSold:          units,
	}
	if actual > 0 {
		result.SafetyMarginPct = safety / actual * 100
	}
	return result
}

// Company resolves the descriptive company fields.
func (a *Analyzer) Company() domain.CompanyProfile {
	info := a.ds.Table(workbook.TableCompanyInfo)
	const unavailable = "Not available"
	return domain.CompanyProfile{
		Name:         ResolveText(info, ItemCompanyName, unavailable),
		BusinessType: ResolveText(info, ItemBusinessType, unavailable),
		Currency:     ResolveText(info, ItemCurrency, unavailable),
	}
}

// Snapshot builds the headline input view shown for confirmation.
func (a *Analyzer) Snapshot() domain.InputSnapshot {
	eq := a.ds.Table(workbook.TableBreakEven)
	price, _ := Resolve(eq, ItemUnitPrice, PeriodValue)
	variable, _ := Resolve(eq, ItemUnitVariableCost, PeriodValue)

	return domain.InputSnapshot{
		RevenueCurrent:     a.totals.Revenue.Current,
		NetIncomeCurrent:   a.totals.NetIncome.Current,
		TotalAssetsCurrent: a.totals.Assets.Current,
		TotalEquityCurrent: a.totals.Equity.Current,
		ContributionMargin: price - variable,
	}
}
