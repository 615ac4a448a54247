// Package analysis normalizes a loaded workbook dataset into validated
// numeric totals and derives the financial diagnostics: horizontal and
// vertical analysis, ratios, and break-even metrics.
package analysis

import (
	"fmt"
	"strings"

	"finsight/internal/workbook"
	"finsight/pkg/contracts/domain"
)

// Period selects which value column of a matched line-item row to read.
type Period int

const (
	// PeriodPrior reads the prior-period column.
	PeriodPrior Period = iota
	// PeriodCurrent reads the current-period column.
	PeriodCurrent
	// PeriodValue reads the single-value column of key/value tables.
	PeriodValue
)

// column returns the fixed column index for the period. Concept labels live
// in column 0; prior and single values in column 1; current values in
// column 2.
func (p Period) column() int {
	if p == PeriodCurrent {
		return 2
	}
	return 1
}

// String names the period for warnings and logs.
func (p Period) String() string {
	switch p {
	case PeriodPrior:
		return "prior"
	case PeriodCurrent:
		return "current"
	default:
		return "value"
	}
}

// ResolveStatus reports how a line-item resolution concluded. Resolution
// never fails; defaulted statuses surface through the warnings list so the
// report stays complete while data-quality issues remain visible.
type ResolveStatus int

const (
	// ResolvedExact means the concept matched a row label verbatim and the
	// cell held a clean number.
	ResolvedExact ResolveStatus = iota
	// ResolvedSubstring means the concept matched by case-insensitive
	// substring rather than exactly.
	ResolvedSubstring
	// ResolvedFromText means the cell was textual and a numeric substring
	// was extracted from it.
	ResolvedFromText
	// DefaultedMissing means no row matched the concept; value is 0.
	DefaultedMissing
	// DefaultedBlank means the matched cell was empty; value is 0.
	DefaultedBlank
	// DefaultedNonNumeric means the matched cell held text with no numeric
	// substring; value is 0.
	DefaultedNonNumeric
)

// Defaulted reports whether resolution fell back to the zero default.
func (s ResolveStatus) Defaulted() bool {
	return s == DefaultedMissing || s == DefaultedBlank || s == DefaultedNonNumeric
}

// Resolve looks up a named financial line item in a table and coerces it to
// a number. Matching tries the exact label in column 0 first, then a
// case-insensitive substring match. Absent concepts and malformed cells
// resolve to 0 with a defaulted status; Resolve never returns an error.
func Resolve(t workbook.RawTable, concept string, period Period) (float64, ResolveStatus) {
	row, exact, found := findRow(t, concept)
	if !found {
		return 0, DefaultedMissing
	}

	cell := t.Cell(row, period.column())
	if cell.IsEmpty() {
		return 0, DefaultedBlank
	}

	value, numeric := cell.Float()
	switch {
	case !numeric:
		return 0, DefaultedNonNumeric
	case cell.Kind == workbook.CellText:
		return value, ResolvedFromText
	case exact:
		return value, ResolvedExact
	default:
		return value, ResolvedSubstring
	}
}

// ResolveText looks up a concept and returns the adjacent cell's text,
// for company-info fields. Absent concepts return fallback.
func ResolveText(t workbook.RawTable, concept, fallback string) string {
	row, _, found := findRow(t, concept)
	if !found {
		return fallback
	}
	cell := t.Cell(row, 1)
	if cell.IsEmpty() {
		return fallback
	}
	return cell.String()
}

// findRow locates the first row whose label column matches the concept,
// exact label first and case-insensitive substring second.
func findRow(t workbook.RawTable, concept string) (row int, exact, found bool) {
	for i := range t.Rows {
		if t.Cell(i, 0).String() == concept {
			return i, true, true
		}
	}
	needle := strings.ToLower(concept)
	for i := range t.Rows {
		label := strings.ToLower(t.Cell(i, 0).String())
		if label != "" && strings.Contains(label, needle) {
			return i, false, true
		}
	}
	return 0, false, false
}

// Warnings accumulates recovered data-quality issues across an analysis.
// It is request-scoped and threaded explicitly through the pipeline.
type Warnings struct {
	list []domain.Warning
}

// Addf appends a formatted warning.
func (w *Warnings) Addf(source, format string, args ...any) {
	w.list = append(w.list, domain.Warning{
		Source:  source,
		Message: fmt.Sprintf(format, args...),
	})
}

// List returns the accumulated warnings in insertion order. The returned
// slice is never nil so the report field marshals as [].
func (w *Warnings) List() []domain.Warning {
	if w.list == nil {
		return []domain.Warning{}
	}
	return w.list
}

// resolveTracked resolves a line item and records a warning when the value
// was defaulted.
func resolveTracked(t workbook.RawTable, concept string, period Period, table string, w *Warnings) float64 {
	value, status := Resolve(t, concept, period)
	if status.Defaulted() && w != nil {
		w.Addf("resolver", "%s %q (%s) not found or not numeric, defaulted to 0", table, concept, period)
	}
	return value
}
