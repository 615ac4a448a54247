package workbook

import (
	"log/slog"
	"strings"
)

// sectionKeywords anchors each canonical section inside a consolidated
// single table. A row matches when its concatenated text contains any
// keyword for the section.
var sectionKeywords = map[string][]string{
	TableCompanyInfo:     {"COMPANY NAME", "BUSINESS TYPE", "CURRENCY"},
	TableIncomeStatement: {"TOTAL SALES", "REVENUE", "COST OF SALES", "OPERATING EXPENSES"},
	TableBalanceSheet:    {"CASH AND BANKS", "ACCOUNTS RECEIVABLE", "INVENTOR"},
	TableBreakEven:       {"UNIT SELLING PRICE", "UNIT VARIABLE COST", "FIXED COSTS"},
}

// periodMarkers identify statement column headers in the column-based
// fallback when no section keyword matches.
var periodMarkers = []string{"PRIOR PERIOD", "CURRENT PERIOD", "PRIOR_PERIOD", "CURRENT_PERIOD"}

const (
	// sectionWindow is the number of rows taken from the anchor row.
	sectionWindow = 12
	// fallbackStatementRows caps the column-based fallback extraction.
	fallbackStatementRows = 20
	// fallbackCompanyRows is the unconditional company-info fallback.
	fallbackCompanyRows = 8
)

// ExtractSections splits a consolidated single table into the four
// canonical sections using keyword anchoring with windowed extraction.
// Missing anchors recover via fallbacks; extraction never fails.
func ExtractSections(single RawTable, ds Dataset, logger *slog.Logger) Dataset {
	if logger == nil {
		logger = slog.Default()
	}

	for _, name := range CanonicalTables {
		if section, ok := extractByKeywords(single, sectionKeywords[name]); ok {
			ds.Tables[name] = section
			logger.Debug("section anchored by keyword",
				slog.String("section", name),
				slog.Int("rows", len(section.Rows)))
			continue
		}

		// No keyword anchor; fall back rather than fail the load.
		switch name {
		case TableIncomeStatement, TableBalanceSheet:
			ds.Tables[name] = statementFallback(single)
		case TableCompanyInfo:
			ds.Tables[name] = single.Slice(0, fallbackCompanyRows)
		}
		logger.Debug("section fell back",
			slog.String("section", name),
			slog.Int("rows", len(ds.Tables[name].Rows)))
	}
	return ds
}

// extractByKeywords scans rows top to bottom for the first row whose
// concatenated text contains any section keyword, then extracts the window
// [i-1, i+12) clamped to table bounds.
func extractByKeywords(t RawTable, keywords []string) (RawTable, bool) {
	if len(keywords) == 0 {
		return RawTable{}, false
	}
	for i, row := range t.Rows {
		text := strings.ToUpper(row.Joined())
		for _, kw := range keywords {
			if strings.Contains(text, kw) {
				return t.Slice(i-1, i+sectionWindow), true
			}
		}
	}
	return RawTable{}, false
}

// statementFallback detects statement layout by period-marker column
// headers and takes up to the first 20 non-blank rows.
func statementFallback(t RawTable) RawTable {
	if !hasPeriodHeader(t) {
		return RawTable{}
	}
	rows := make([]Row, 0, fallbackStatementRows)
	for _, row := range t.Rows {
		if row.IsBlank() {
			continue
		}
		rows = append(rows, row)
		if len(rows) == fallbackStatementRows {
			break
		}
	}
	return RawTable{Rows: rows}
}

func hasPeriodHeader(t RawTable) bool {
	for _, row := range t.Rows {
		text := strings.ToUpper(row.Joined())
		for _, marker := range periodMarkers {
			if strings.Contains(text, marker) {
				return true
			}
		}
	}
	return false
}
