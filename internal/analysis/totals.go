package analysis

import (
	"finsight/internal/workbook"
)

// Canonical line-item labels. Matching is substring-tolerant, so templates
// with noisier labels still resolve.
const (
	ItemTotalSales        = "Total sales"
	ItemOtherIncome       = "Other income"
	ItemCostOfSales       = "Cost of sales"
	ItemOperatingExpenses = "Operating expenses"
	ItemFinancialExpenses = "Financial expenses"
	ItemTaxes             = "Taxes"

	ItemCash              = "Cash and banks"
	ItemReceivables       = "Accounts receivable"
	ItemInventory         = "Inventory"
	ItemFixedAssets       = "Fixed assets"
	ItemShortTermDebt     = "Short-term debt"
	ItemLongTermDebt      = "Long-term debt"
	ItemCapital           = "Capital"
	ItemRetainedEarnings  = "Retained earnings"

	ItemUnitPrice         = "Unit selling price"
	ItemUnitVariableCost  = "Unit variable cost"
	ItemFixedCosts        = "Monthly fixed costs"
	ItemUnitsSold         = "Monthly units sold"

	ItemCompanyName  = "Company name"
	ItemBusinessType = "Business type"
	ItemCurrency     = "Currency"
)

// PeriodValues holds one line item's resolved prior and current values.
type PeriodValues struct {
	Prior   float64
	Current float64
}

// Totals is the immutable snapshot of derived aggregates for both periods.
// All downstream analysis reads from it; it is computed exactly once per
// request.
type Totals struct {
	Revenue       PeriodValues
	NetIncome     PeriodValues
	Assets        PeriodValues
	Liabilities   PeriodValues
	Equity        PeriodValues
	CurrentAssets PeriodValues

	// Resolved components retained for the analyzer, so each line item is
	// resolved (and warned about) once.
	Sales             PeriodValues
	OtherIncome       PeriodValues
	CostOfSales       PeriodValues
	OperatingExpenses PeriodValues
	FinancialExpenses PeriodValues
	Taxes             PeriodValues
	Cash              PeriodValues
	Receivables       PeriodValues
	Inventory         PeriodValues
	FixedAssets       PeriodValues
	ShortTermDebt     PeriodValues
	LongTermDebt      PeriodValues
	Capital           PeriodValues
	RetainedEarnings  PeriodValues
}

// Map flattens the aggregate totals into the report snapshot form.
func (t Totals) Map() map[string]float64 {
	return map[string]float64{
		"total_revenue_prior":       t.Revenue.Prior,
		"total_revenue_current":     t.Revenue.Current,
		"net_income_prior":          t.NetIncome.Prior,
		"net_income_current":        t.NetIncome.Current,
		"total_assets_prior":        t.Assets.Prior,
		"total_assets_current":      t.Assets.Current,
		"total_liabilities_prior":   t.Liabilities.Prior,
		"total_liabilities_current": t.Liabilities.Current,
		"total_equity_prior":        t.Equity.Prior,
		"total_equity_current":      t.Equity.Current,
		"current_assets_prior":      t.CurrentAssets.Prior,
		"current_assets_current":    t.CurrentAssets.Current,
	}
}

// ComputeTotals resolves the fixed list of line items from the income
// statement and balance sheet for both periods and derives the aggregate
// totals. The result is always complete: unresolvable items contribute 0
// and a warning, never a partial snapshot.
func ComputeTotals(ds workbook.Dataset, w *Warnings) Totals {
	is := ds.Table(workbook.TableIncomeStatement)
	bs := ds.Table(workbook.TableBalanceSheet)

	both := func(t workbook.RawTable, concept, table string) PeriodValues {
		return PeriodValues{
			Prior:   resolveTracked(t, concept, PeriodPrior, table, w),
			Current: resolveTracked(t, concept, PeriodCurrent, table, w),
		}
	}

	totals := Totals{
		Sales:             both(is, ItemTotalSales, workbook.TableIncomeStatement),
		OtherIncome:       both(is, ItemOtherIncome, workbook.TableIncomeStatement),
		CostOfSales:       both(is, ItemCostOfSales, workbook.TableIncomeStatement),
		OperatingExpenses: both(is, ItemOperatingExpenses, workbook.TableIncomeStatement),
		FinancialExpenses: both(is, ItemFinancialExpenses, workbook.TableIncomeStatement),
		Taxes:             both(is, ItemTaxes, workbook.TableIncomeStatement),
		Cash:              both(bs, ItemCash, workbook.TableBalanceSheet),
		Receivables:       both(bs, ItemReceivables, workbook.TableBalanceSheet),
		Inventory:         both(bs, ItemInventory, workbook.TableBalanceSheet),
		FixedAssets:       both(bs, ItemFixedAssets, workbook.TableBalanceSheet),
		ShortTermDebt:     both(bs, ItemShortTermDebt, workbook.TableBalanceSheet),
		LongTermDebt:      both(bs, ItemLongTermDebt, workbook.TableBalanceSheet),
		Capital:           both(bs, ItemCapital, workbook.TableBalanceSheet),
		RetainedEarnings:  both(bs, ItemRetainedEarnings, workbook.TableBalanceSheet),
	}

	derive := func(f func(prior bool) float64) PeriodValues {
		return PeriodValues{Prior: f(true), Current: f(false)}
	}
	pick := func(v PeriodValues, prior bool) float64 {
		if prior {
			return v.Prior
		}
		return v.Current
	}

	totals.Revenue = derive(func(p bool) float64 {
		return pick(totals.Sales, p) + pick(totals.OtherIncome, p)
	})
	totals.NetIncome = derive(func(p bool) float64 {
		return pick(totals.Revenue, p) - pick(totals.CostOfSales, p) -
			pick(totals.OperatingExpenses, p) - pick(totals.FinancialExpenses, p) - pick(totals.Taxes, p)
	})
	totals.Assets = derive(func(p bool) float64 {
		return pick(totals.Cash, p) + pick(totals.Receivables, p) +
			pick(totals.Inventory, p) + pick(totals.FixedAssets, p)
	})
	totals.Liabilities = derive(func(p bool) float64 {
		return pick(totals.ShortTermDebt, p) + pick(totals.LongTermDebt, p)
	})
	totals.Equity = derive(func(p bool) float64 {
		return pick(totals.Capital, p) + pick(totals.RetainedEarnings, p)
	})
	totals.CurrentAssets = derive(func(p bool) float64 {
		return pick(totals.Cash, p) + pick(totals.Receivables, p) + pick(totals.Inventory, p)
	})

	return totals
}
