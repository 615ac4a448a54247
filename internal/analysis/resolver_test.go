package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"finsight/internal/workbook"
)

func makeTable(grid [][]string) workbook.RawTable {
	rows := make([]workbook.Row, len(grid))
	for i, raw := range grid {
		row := make(workbook.Row, len(raw))
		for j, s := range raw {
			row[j] = workbook.ParseCell(s)
		}
		rows[i] = row
	}
	return workbook.RawTable{Rows: rows}
}

func TestResolve(t *testing.T) {
	table := makeTable([][]string{
		{"Item", "Prior period", "Current period"},
		{"Total sales", "100000", "120000"},
		{"Total sales (net)", "90000", "110000"},
		{"Cost of sales", "", "45000"},
		{"Taxes", "TBD", "pending"},
		{"Operating expenses", "USD 20000", "USD 22000"},
	})

	tests := []struct {
		name       string
		concept    string
		period     Period
		wantValue  float64
		wantStatus ResolveStatus
	}{
		{
			name:       "exact label current period",
			concept:    "Total sales",
			period:     PeriodCurrent,
			wantValue:  120000,
			wantStatus: ResolvedExact,
		},
		{
			name:       "exact label prior period",
			concept:    "Total sales",
			period:     PeriodPrior,
			wantValue:  100000,
			wantStatus: ResolvedExact,
		},
		{
			name:       "substring match is case-insensitive",
			concept:    "total sales (NET)",
			period:     PeriodCurrent,
			wantValue:  110000,
			wantStatus: ResolvedSubstring,
		},
		{
			name:       "blank cell defaults",
			concept:    "Cost of sales",
			period:     PeriodPrior,
			wantValue:  0,
			wantStatus: DefaultedBlank,
		},
		{
			name:       "non-numeric text defaults",
			concept:    "Taxes",
			period:     PeriodCurrent,
			wantValue:  0,
			wantStatus: DefaultedNonNumeric,
		},
		{
			name:       "numeric substring extracted from text",
			concept:    "Operating expenses",
			period:     PeriodCurrent,
			wantValue:  22000,
			wantStatus: ResolvedFromText,
		},
		{
			name:       "missing concept defaults",
			concept:    "Depreciation",
			period:     PeriodCurrent,
			wantValue:  0,
			wantStatus: DefaultedMissing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, status := Resolve(table, tt.concept, tt.period)
			assert.Equal(t, tt.wantStatus, status)
			assert.InDelta(t, tt.wantValue, value, 1e-9)
		})
	}
}

func TestResolveValuePeriodReadsColumnOne(t *testing.T) {
	table := makeTable([][]string{
		{"Unit selling price", "100"},
		{"Unit variable cost", "60"},
	})

	value, status := Resolve(table, "Unit selling price", PeriodValue)
	assert.Equal(t, ResolvedExact, status)
	assert.InDelta(t, 100, value, 1e-9)
}

func TestResolveText(t *testing.T) {
	table := makeTable([][]string{
		{"Company name", "ACME Trading"},
		{"Business type", ""},
	})

	assert.Equal(t, "ACME Trading", ResolveText(table, "Company name", "Not available"))
	assert.Equal(t, "Not available", ResolveText(table, "Business type", "Not available"))
	assert.Equal(t, "Not available", ResolveText(table, "Currency", "Not available"))
}

func TestWarnings(t *testing.T) {
	var w Warnings
	assert.NotNil(t, w.List())
	assert.Empty(t, w.List())

	w.Addf("resolver", "item %q defaulted", "Taxes")
	w.Addf("vertical", "skipped")

	list := w.List()
	assert.Len(t, list, 2)
	assert.Equal(t, "resolver", list[0].Source)
	assert.Equal(t, `item "Taxes" defaulted`, list[0].Message)
	assert.Equal(t, "vertical", list[1].Source)
}

func TestResolveTrackedWarnsOnDefault(t *testing.T) {
	table := makeTable([][]string{{"Total sales", "100", "120"}})
	var w Warnings

	got := resolveTracked(table, "Total sales", PeriodCurrent, "income_statement", &w)
	assert.InDelta(t, 120, got, 1e-9)
	assert.Empty(t, w.List())

	got = resolveTracked(table, "Inventory", PeriodCurrent, "balance_sheet", &w)
	assert.Zero(t, got)
	assert.Len(t, w.List(), 1)
	assert.Contains(t, w.List()[0].Message, "Inventory")
}
