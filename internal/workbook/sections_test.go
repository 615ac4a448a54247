package workbook

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tableFromStrings(grid [][]string) RawTable {
	return RawTable{Rows: parseRows(grid)}
}

func TestExtractSectionsKeywordAnchoring(t *testing.T) {
	grid := [][]string{
		{"ACME TRADING LLC"},
		{"Company name", "ACME Trading"},
		{"Business type", "Retail"},
		{"Currency", "USD"},
		{""},
		{"INCOME STATEMENT"},
		{"Item", "Prior period", "Current period"},
		{"Total sales", "100000", "120000"},
		{"Cost of sales", "40000", "45000"},
		{""},
		{"BALANCE SHEET"},
		{"Cash and banks", "5000", "8000"},
		{"Accounts receivable", "3000", "3500"},
		{""},
		{"BREAK-EVEN INPUTS"},
		{"Unit selling price", "100"},
		{"Unit variable cost", "60"},
		{"Monthly fixed costs", "4000"},
	}

	ds := ExtractSections(tableFromStrings(grid), newDataset(ModeSingleTable), nil)

	income := ds.Table(TableIncomeStatement)
	require.NotEmpty(t, income.Rows)
	// Anchor at "Total sales" row, window starts one row above it.
	assert.Contains(t, income.Rows[0].Joined(), "Item")
	assert.Contains(t, income.Rows[1].Joined(), "Total sales")

	balance := ds.Table(TableBalanceSheet)
	require.NotEmpty(t, balance.Rows)
	assert.Contains(t, balance.Rows[1].Joined(), "Cash and banks")

	breakeven := ds.Table(TableBreakEven)
	require.NotEmpty(t, breakeven.Rows)
	assert.Contains(t, breakeven.Rows[1].Joined(), "Unit selling price")

	company := ds.Table(TableCompanyInfo)
	require.NotEmpty(t, company.Rows)
	assert.Contains(t, company.Rows[1].Joined(), "Company name")
}

func TestExtractSectionsWindowSize(t *testing.T) {
	grid := [][]string{{"header"}, {"Total sales", "100", "120"}}
	for i := 0; i < 30; i++ {
		grid = append(grid, []string{fmt.Sprintf("line %d", i), "1", "2"})
	}

	ds := ExtractSections(tableFromStrings(grid), newDataset(ModeSingleTable), nil)

	// One row above the anchor plus the window of twelve.
	income := ds.Table(TableIncomeStatement)
	assert.Len(t, income.Rows, 13)
	assert.Equal(t, "header", income.Rows[0].Joined())
}

func TestExtractSectionsStatementFallback(t *testing.T) {
	grid := [][]string{
		{"Item", "Prior period", "Current period"},
		{"Widgets sold", "100", "120"},
		{""},
		{"Returns", "5", "3"},
	}

	ds := ExtractSections(tableFromStrings(grid), newDataset(ModeSingleTable), nil)

	// No income keywords match, but the period header enables the
	// column-based fallback which drops blank rows.
	income := ds.Table(TableIncomeStatement)
	require.Len(t, income.Rows, 3)
	assert.Contains(t, income.Rows[0].Joined(), "Prior period")
	assert.Contains(t, income.Rows[2].Joined(), "Returns")

	balance := ds.Table(TableBalanceSheet)
	assert.Len(t, balance.Rows, 3)
}

func TestExtractSectionsCompanyFallback(t *testing.T) {
	grid := [][]string{
		{"Some header"},
		{"Unrelated", "1"},
		{"More", "2"},
	}

	ds := ExtractSections(tableFromStrings(grid), newDataset(ModeSingleTable), nil)

	// Company info always falls back to the top of the table.
	assert.Len(t, ds.Table(TableCompanyInfo).Rows, 3)
	// Break-even has no fallback and stays empty.
	assert.True(t, ds.Table(TableBreakEven).Empty())
	// No period markers, so the statements stay empty too.
	assert.True(t, ds.Table(TableIncomeStatement).Empty())
	assert.True(t, ds.Table(TableBalanceSheet).Empty())
}
