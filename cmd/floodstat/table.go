package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/couchcryptid/flood-data-analytics/internal/domain"
	"github.com/xuri/excelize/v2"
)

// table is a rectangular sheet of cells with a header row.
type table struct {
	headers []string
	rows    [][]string
}

// loadTable reads a CSV or XLSX file. For workbooks, sheet selects the sheet;
// empty means the first one.
func loadTable(path, sheet string) (*table, error) {
	var (
		rows [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		rows, err = readCSV(path)
	case ".xlsx", ".xlsm":
		rows, err = readXLSX(path, sheet)
	default:
		return nil, fmt.Errorf("unsupported file type %q: want .csv or .xlsx", filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, errors.New("file must have a header row and at least one data row")
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(h)
	}
	return &table{headers: headers, rows: rows[1:]}, nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return rows, nil
}

func readXLSX(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return rows, nil
}

// column returns the cells of the named column parsed as numbers. Short rows,
// blanks and gap markers yield nil entries so row alignment is preserved.
func (t *table) column(name string) ([]*float64, error) {
	idx := -1
	for i, h := range t.headers {
		if strings.EqualFold(h, name) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("column %q not found (have %s)", name, strings.Join(t.headers, ", "))
	}

	out := make([]*float64, len(t.rows))
	for i, row := range t.rows {
		if idx < len(row) {
			out[i] = domain.ParseValue(row[idx])
		}
	}
	return out, nil
}

// numericColumns lists the headers with at least one parseable value.
func (t *table) numericColumns() []string {
	var names []string
	for _, h := range t.headers {
		values, err := t.column(h)
		if err != nil {
			continue
		}
		for _, v := range values {
			if v != nil {
				names = append(names, h)
				break
			}
		}
	}
	return names
}

// completePairs keeps the rows where both columns carry a value.
func completePairs(xs, ys []*float64) (x, y []float64) {
	for i := range xs {
		if i >= len(ys) || xs[i] == nil || ys[i] == nil {
			continue
		}
		x = append(x, *xs[i])
		y = append(y, *ys[i])
	}
	return x, y
}
