package workbook

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// LoadError marks an input that could not be read or whose shape was not
// recognized. It is the only fatal error class: the caller must abandon the
// analysis instead of working from empty tables.
type LoadError struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load workbook %s: %v", e.Path, e.Err)
}

// Unwrap exposes the underlying cause.
func (e *LoadError) Unwrap() error {
	return e.Err
}

// sheetAliases maps each canonical table to the sheet names accepted for it
// in multi-table workbooks. Matching is case-insensitive on the trimmed name.
var sheetAliases = map[string][]string{
	TableIncomeStatement: {"income_statement", "income statement"},
	TableBalanceSheet:    {"balance_sheet", "balance sheet"},
	TableBreakEven:       {"breakeven_inputs", "breakeven inputs", "break_even", "break-even"},
	TableCompanyInfo:     {"company_info", "company info", "company"},
}

// Loader classifies and loads financial workbooks.
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a loader. A nil logger falls back to slog.Default.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// Load reads the file at path into a canonical dataset. Excel containers
// exposing at least three of the four expected named sheets load verbatim in
// multi-table mode; anything else loads its single table and is marked for
// section extraction. Unreadable or unrecognized input returns a *LoadError.
func (l *Loader) Load(path string) (Dataset, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return l.loadCSV(path)
	case ".xlsx", ".xls":
		return l.loadExcel(path)
	default:
		return Dataset{}, &LoadError{Path: path, Err: fmt.Errorf("unsupported file extension %q", filepath.Ext(path))}
	}
}

func (l *Loader) loadExcel(path string) (Dataset, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return Dataset{}, &LoadError{Path: path, Err: err}
	}
	defer f.Close()

	matched := l.matchSheets(f)
	l.logger.Debug("classified workbook",
		slog.String("path", path),
		slog.Int("matched_sheets", len(matched)),
		slog.Any("sheet_list", f.GetSheetList()))

	if len(matched) >= 3 {
		return l.loadMultiTable(f, path, matched)
	}
	return l.loadSingleTable(f, path)
}

// matchSheets maps canonical table names to the actual sheet names found.
func (l *Loader) matchSheets(f *excelize.File) map[string]string {
	matched := make(map[string]string)
	for _, sheet := range f.GetSheetList() {
		normalized := strings.ToLower(strings.TrimSpace(sheet))
		for table, aliases := range sheetAliases {
			if _, done := matched[table]; done {
				continue
			}
			for _, alias := range aliases {
				if normalized == alias {
					matched[table] = sheet
					break
				}
			}
		}
	}
	return matched
}

func (l *Loader) loadMultiTable(f *excelize.File, path string, matched map[string]string) (Dataset, error) {
	ds := newDataset(ModeMultiTable)
	for table, sheet := range matched {
		grid, err := f.GetRows(sheet)
		if err != nil {
			return Dataset{}, &LoadError{Path: path, Err: fmt.Errorf("reading sheet %q: %w", sheet, err)}
		}
		ds.Tables[table] = RawTable{Rows: parseRows(grid)}
	}
	l.logger.Info("loaded multi-table workbook",
		slog.String("path", path),
		slog.Int("tables", len(matched)))
	return ds, nil
}

// loadSingleTable loads the first non-empty sheet; the section extractor
// splits it into the canonical tables afterwards.
func (l *Loader) loadSingleTable(f *excelize.File, path string) (Dataset, error) {
	var grid [][]string
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil || len(rows) == 0 {
			continue
		}
		grid = rows
		break
	}
	if len(grid) == 0 {
		return Dataset{}, &LoadError{Path: path, Err: fmt.Errorf("workbook contains no readable data")}
	}

	ds := newDataset(ModeSingleTable)
	single := RawTable{Rows: parseRows(grid)}
	ds = ExtractSections(single, ds, l.logger)
	l.logger.Info("loaded single-table workbook",
		slog.String("path", path),
		slog.Int("rows", len(grid)))
	return ds, nil
}

func (l *Loader) loadCSV(path string) (Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return Dataset{}, &LoadError{Path: path, Err: err}
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	grid, err := reader.ReadAll()
	if err != nil {
		return Dataset{}, &LoadError{Path: path, Err: err}
	}
	if len(grid) == 0 {
		return Dataset{}, &LoadError{Path: path, Err: fmt.Errorf("csv file is empty")}
	}

	ds := newDataset(ModeSingleTable)
	single := RawTable{Rows: parseRows(grid)}
	ds = ExtractSections(single, ds, l.logger)
	l.logger.Info("loaded csv workbook",
		slog.String("path", path),
		slog.Int("rows", len(grid)))
	return ds, nil
}
