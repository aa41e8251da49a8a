// Package tabular reads and writes the CSV and XLSX files used by bulk user
// workflows. Cells are addressed by header name and 1-based row number, where
// row 1 is the header row. Blank rows are skipped in both formats and do not
// take a row number.
package tabular

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
	"github.com/samber/lo"
	"github.com/xuri/excelize/v2"
)

var (
	// ErrColumnNotFound is returned when a header name is not present.
	ErrColumnNotFound = errors.New("column not found")
	// ErrRowOutOfRange is returned when reading a row that does not exist.
	ErrRowOutOfRange = errors.New("row out of range")
)

const utf8BOM = "\ufeff"

// Format of a table file, derived from its extension.
type Format int

const (
	CSV Format = iota
	XLSX
)

// FormatOf returns the format for path.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return CSV, nil
	case ".xlsx", ".xlsm":
		return XLSX, nil
	default:
		return 0, fmt.Errorf("unsupported table file %s", path)
	}
}

// Options for Open.
type Options struct {
	// Sheet selects the worksheet of an XLSX file.
	// Default: the first sheet
	Sheet string
	// NoHeader treats every row as data. Header based access fails.
	NoHeader bool
}

// Table is an in-memory copy of a CSV file or one worksheet.
type Table struct {
	path     string
	format   Format
	sheet    string
	noHeader bool
	rows     [][]string
	// sheetRows holds the worksheet row number of each entry in rows.
	sheetRows []int

	xlsx *excelize.File
}

// Open reads the table at path.
func Open(path string, opts Options) (*Table, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	t := &Table{path: path, format: format, sheet: opts.Sheet, noHeader: opts.NoHeader}

	switch format {
	case CSV:
		t.rows, err = readCSV(path)
	case XLSX:
		err = t.openXLSX()
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return t, nil
}

func readCSV(path string) ([][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte(utf8BOM))))
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	kept, _ := dropBlank(rows)
	return kept, nil
}

func (t *Table) openXLSX() error {
	f, err := excelize.OpenFile(t.path)
	if err != nil {
		return err
	}
	if t.sheet == "" {
		t.sheet = f.GetSheetName(0)
	} else if idx, err := f.GetSheetIndex(t.sheet); err != nil || idx < 0 {
		_ = f.Close()
		return fmt.Errorf("sheet %q not found", t.sheet)
	}
	rows, err := f.GetRows(t.sheet)
	if err != nil {
		_ = f.Close()
		return err
	}
	t.xlsx = f
	t.rows, t.sheetRows = dropBlank(rows)
	return nil
}

func isBlank(row []string) bool {
	return lo.EveryBy(row, func(c string) bool { return strings.TrimSpace(c) == "" })
}

// dropBlank removes blank rows and returns the 1-based source line of each
// kept row.
func dropBlank(rows [][]string) ([][]string, []int) {
	kept := make([][]string, 0, len(rows))
	lines := make([]int, 0, len(rows))
	for i, row := range rows {
		if isBlank(row) {
			continue
		}
		kept = append(kept, row)
		lines = append(lines, i+1)
	}
	return kept, lines
}

// sheetRow maps a table row to its worksheet row. Rows past the end follow
// the last kept row.
func (t *Table) sheetRow(row int) int {
	if row <= len(t.sheetRows) {
		return t.sheetRows[row-1]
	}
	last := 0
	if n := len(t.sheetRows); n > 0 {
		last = t.sheetRows[n-1]
	}
	return last + row - len(t.sheetRows)
}

// Path returns the file path.
func (t *Table) Path() string { return t.path }

// Sheet returns the worksheet name, empty for CSV.
func (t *Table) Sheet() string { return t.sheet }

// Header returns the header row, nil for tables without one.
func (t *Table) Header() []string {
	if t.noHeader || len(t.rows) == 0 {
		return nil
	}
	return lo.Map(t.rows[0], func(h string, _ int) string { return strings.TrimSpace(h) })
}

// RowCount returns the number of non-blank rows including the header.
func (t *Table) RowCount() int {
	return len(t.rows)
}

// DataRows returns the number of rows excluding the header.
func (t *Table) DataRows() int {
	if t.noHeader {
		return len(t.rows)
	}
	return max(len(t.rows)-1, 0)
}

// ColumnIndex returns the 0-based index of the named column.
func (t *Table) ColumnIndex(column string) (int, error) {
	_, idx, ok := lo.FindIndexOf(t.Header(), func(h string) bool {
		return strings.EqualFold(h, strings.TrimSpace(column))
	})
	if !ok {
		return -1, fmt.Errorf("%w: %q in %s", ErrColumnNotFound, column, t.path)
	}
	return idx, nil
}

// Cell returns the value in column at the 1-based row. Missing trailing
// cells read as empty.
func (t *Table) Cell(column string, row int) (string, error) {
	col, err := t.ColumnIndex(column)
	if err != nil {
		return "", err
	}
	return t.CellAt(col, row)
}

// CellAt returns the value at the 0-based column and 1-based row.
func (t *Table) CellAt(col, row int) (string, error) {
	if row < 1 || row > len(t.rows) {
		return "", fmt.Errorf("%w: %d of %d", ErrRowOutOfRange, row, len(t.rows))
	}
	r := t.rows[row-1]
	if col < 0 || col >= len(r) {
		return "", nil
	}
	return strings.TrimSpace(r[col]), nil
}

// SetCell writes value into column at the 1-based row. Rows are appended as
// needed. Call Save to persist.
func (t *Table) SetCell(column string, row int, value string) error {
	col, err := t.ColumnIndex(column)
	if err != nil {
		return err
	}
	if row < 1 {
		return fmt.Errorf("%w: %d", ErrRowOutOfRange, row)
	}
	for len(t.rows) < row {
		t.rows = append(t.rows, nil)
		if t.xlsx != nil {
			t.sheetRows = append(t.sheetRows, t.sheetRow(len(t.sheetRows)+1))
		}
	}
	for len(t.rows[row-1]) <= col {
		t.rows[row-1] = append(t.rows[row-1], "")
	}
	t.rows[row-1][col] = value

	if t.xlsx != nil {
		cell, err := excelize.CoordinatesToCellName(col+1, t.sheetRow(row))
		if err != nil {
			return err
		}
		return t.xlsx.SetCellValue(t.sheet, cell, value)
	}
	return nil
}

// Column returns the values of column for all data rows.
func (t *Table) Column(column string) ([]string, error) {
	col, err := t.ColumnIndex(column)
	if err != nil {
		return nil, err
	}
	return t.ColumnAt(col), nil
}

// ColumnAt returns the values at the 0-based column for all data rows.
func (t *Table) ColumnAt(col int) []string {
	values := make([]string, 0, t.DataRows())
	for row := t.firstDataRow(); row <= len(t.rows); row++ {
		v, _ := t.CellAt(col, row)
		values = append(values, v)
	}
	return values
}

// Index maps every non-empty value of column to its 1-based row number.
// Later duplicates win.
func (t *Table) Index(column string) (map[string]int, error) {
	col, err := t.ColumnIndex(column)
	if err != nil {
		return nil, err
	}
	index := make(map[string]int, t.DataRows())
	for row := t.firstDataRow(); row <= len(t.rows); row++ {
		if v, _ := t.CellAt(col, row); v != "" {
			index[v] = row
		}
	}
	return index, nil
}

// Records returns the data rows keyed by header.
func (t *Table) Records() []map[string]string {
	header := t.Header()
	if header == nil {
		return nil
	}
	records := make([]map[string]string, 0, t.DataRows())
	for row := 2; row <= len(t.rows); row++ {
		rec := make(map[string]string, len(header))
		for col, h := range header {
			rec[h], _ = t.CellAt(col, row)
		}
		records = append(records, rec)
	}
	return records
}

func (t *Table) firstDataRow() int {
	if t.noHeader {
		return 1
	}
	return 2
}

// Save writes the table back to its file.
func (t *Table) Save() error {
	switch t.format {
	case XLSX:
		if err := t.xlsx.Save(); err != nil {
			return fmt.Errorf("saving %s: %w", t.path, err)
		}
		return nil
	default:
		return writeCSV(t.path, t.rows)
	}
}

// Close releases the workbook of XLSX tables.
func (t *Table) Close() error {
	if t.xlsx == nil {
		return nil
	}
	return t.xlsx.Close()
}

// Write creates a table file at path. For XLSX, sheet names the worksheet.
func Write(path, sheet string, rows [][]string) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if format == CSV {
		return writeCSV(path, rows)
	}

	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()
	if sheet == "" {
		sheet = "Sheet1"
	}
	if sheet != f.GetSheetName(0) {
		if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
			return err
		}
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := lo.Map(row, func(v string, _ int) any { return v })
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func writeCSV(path string, rows [][]string) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := atomic.WriteFile(path, &buf); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
