// Package workbook loads heterogeneous financial workbooks (multi-sheet
// Excel, single-sheet Excel, delimited text) into a canonical dataset of
// typed raw tables.
package workbook

import (
	"regexp"
	"strconv"
	"strings"
)

// CellKind discriminates the Cell tagged union.
type CellKind int

const (
	// CellEmpty marks a missing or blank cell.
	CellEmpty CellKind = iota
	// CellNumber marks a cell that parsed cleanly as a number.
	CellNumber
	// CellText marks a non-numeric textual cell.
	CellText
)

// Cell is a single typed spreadsheet cell. Loaders sniff the value once at
// load time; downstream code never re-inspects raw strings.
type Cell struct {
	Kind   CellKind
	Number float64
	Text   string
}

// numberPattern matches the first decimal or integer substring inside text,
// decimal preferred at the same position.
var numberPattern = regexp.MustCompile(`[-+]?\d*\.\d+|\d+`)

// ParseCell sniffs a raw string into a typed cell. Thousands separators are
// tolerated in otherwise-numeric values.
func ParseCell(raw string) Cell {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Cell{Kind: CellEmpty}
	}
	if n, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64); err == nil {
		return Cell{Kind: CellNumber, Number: n}
	}
	return Cell{Kind: CellText, Text: s}
}

// IsEmpty reports whether the cell carries no value.
func (c Cell) IsEmpty() bool {
	return c.Kind == CellEmpty
}

// Float coerces the cell to a number. Empty cells coerce to 0. Text cells
// yield the first embedded numeric substring, or 0 when none exists. The
// boolean reports whether a real numeric value was recovered.
func (c Cell) Float() (float64, bool) {
	switch c.Kind {
	case CellNumber:
		return c.Number, true
	case CellText:
		if m := numberPattern.FindString(c.Text); m != "" {
			if n, err := strconv.ParseFloat(m, 64); err == nil {
				return n, true
			}
		}
		return 0, false
	default:
		return 0, false
	}
}

// String returns the textual content of the cell. Numbers format with
// minimal precision; empty cells return "".
func (c Cell) String() string {
	switch c.Kind {
	case CellNumber:
		return strconv.FormatFloat(c.Number, 'f', -1, 64)
	case CellText:
		return c.Text
	default:
		return ""
	}
}

// Row is one ordered row of cells.
type Row []Cell

// IsBlank reports whether every cell in the row is empty.
func (r Row) IsBlank() bool {
	for _, c := range r {
		if !c.IsEmpty() {
			return false
		}
	}
	return true
}

// Joined concatenates the non-empty cell text of the row, space separated.
// Used for keyword anchoring during section extraction.
func (r Row) Joined() string {
	parts := make([]string, 0, len(r))
	for _, c := range r {
		if !c.IsEmpty() {
			parts = append(parts, c.String())
		}
	}
	return strings.Join(parts, " ")
}

// RawTable is an ordered sequence of rows. It is immutable after load;
// extraction produces new tables.
type RawTable struct {
	Rows []Row
}

// Empty reports whether the table has no rows.
func (t RawTable) Empty() bool {
	return len(t.Rows) == 0
}

// Cell returns the cell at (row, col), or an empty cell when out of bounds.
func (t RawTable) Cell(row, col int) Cell {
	if row < 0 || row >= len(t.Rows) {
		return Cell{Kind: CellEmpty}
	}
	r := t.Rows[row]
	if col < 0 || col >= len(r) {
		return Cell{Kind: CellEmpty}
	}
	return r[col]
}

// Slice returns a new table containing rows [from, to), clamped to bounds.
func (t RawTable) Slice(from, to int) RawTable {
	if from < 0 {
		from = 0
	}
	if to > len(t.Rows) {
		to = len(t.Rows)
	}
	if from >= to {
		return RawTable{}
	}
	rows := make([]Row, to-from)
	copy(rows, t.Rows[from:to])
	return RawTable{Rows: rows}
}

// Table names of the canonical dataset.
const (
	TableIncomeStatement = "income_statement"
	TableBalanceSheet    = "balance_sheet"
	TableBreakEven       = "breakeven_inputs"
	TableCompanyInfo     = "company_info"
)

// CanonicalTables lists the four dataset keys in canonical order.
var CanonicalTables = []string{
	TableIncomeStatement,
	TableBalanceSheet,
	TableBreakEven,
	TableCompanyInfo,
}

// Dataset maps the four canonical table names to their raw tables. All four
// keys are always present, possibly with empty tables.
type Dataset struct {
	Tables map[string]RawTable
	// Mode records how the input classified at load time.
	Mode Mode
}

// Table returns the named table, or an empty table for unknown names.
func (d Dataset) Table(name string) RawTable {
	return d.Tables[name]
}

// newDataset builds a dataset with all canonical keys present.
func newDataset(mode Mode) Dataset {
	tables := make(map[string]RawTable, len(CanonicalTables))
	for _, name := range CanonicalTables {
		tables[name] = RawTable{}
	}
	return Dataset{Tables: tables, Mode: mode}
}

// Mode is the detected input layout.
type Mode string

const (
	// ModeMultiTable means the container exposed at least three of the four
	// canonical named tables.
	ModeMultiTable Mode = "multi_table"
	// ModeSingleTable means a single consolidated table requiring section
	// extraction. Delimited-text input is also single-table.
	ModeSingleTable Mode = "single_table"
)

// parseRows converts a raw string grid into typed rows.
func parseRows(grid [][]string) []Row {
	rows := make([]Row, len(grid))
	for i, raw := range grid {
		row := make(Row, len(raw))
		for j, s := range raw {
			row[j] = ParseCell(s)
		}
		rows[i] = row
	}
	return rows
}
