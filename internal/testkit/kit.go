// Package testkit builds spreadsheet fixtures and tables for tests.
package testkit

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"testing"

	"tabreport/adapters/datareadiness"
	"tabreport/domain/table"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// Sheet is one worksheet of a fixture workbook.
type Sheet struct {
	Name    string
	Headers []string
	Rows    [][]string
}

// WorkbookBytes writes the sheets into an in-memory xlsx file. Cells that
// parse as numbers are stored as numeric cells, empty strings are left blank.
func WorkbookBytes(sheets ...Sheet) ([]byte, error) {
	if len(sheets) == 0 {
		return nil, fmt.Errorf("at least one sheet is required")
	}

	f := excelize.NewFile()
	defer f.Close()

	defaultSheet := f.GetSheetName(0)
	for i, sheet := range sheets {
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, sheet.Name); err != nil {
				return nil, err
			}
		} else if _, err := f.NewSheet(sheet.Name); err != nil {
			return nil, err
		}

		if err := writeRow(f, sheet.Name, 1, sheet.Headers); err != nil {
			return nil, err
		}
		for r, row := range sheet.Rows {
			if err := writeRow(f, sheet.Name, r+2, row); err != nil {
				return nil, err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeRow(f *excelize.File, sheet string, rowNum int, cells []string) error {
	values := make([]interface{}, len(cells))
	for i, cell := range cells {
		switch {
		case cell == "":
			values[i] = nil
		default:
			if v, err := strconv.ParseFloat(cell, 64); err == nil {
				values[i] = v
			} else {
				values[i] = cell
			}
		}
	}
	axis, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, axis, &values)
}

// CSVBytes renders a header and rows as CSV.
func CSVBytes(headers []string, rows [][]string) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write(headers)
	_ = w.WriteAll(rows)
	return buf.Bytes()
}

// NewTable builds a table through the default schema inference, failing
// the test on error.
func NewTable(t testing.TB, headers []string, rows [][]string) *table.Table {
	t.Helper()
	tbl, err := datareadiness.NewSchemaAdapter(nil).BuildTable(&table.RawSheet{
		Name:    "Sheet1",
		Headers: headers,
		Rows:    rows,
	})
	require.NoError(t, err)
	return tbl
}

// Column turns a list of values into single-column rows.
func Column(values ...string) [][]string {
	rows := make([][]string, len(values))
	for i, v := range values {
		rows[i] = []string{v}
	}
	return rows
}

// SalesTable returns the default generated sales table.
func SalesTable(t testing.TB) *table.Table {
	t.Helper()
	return NewTable(t, SalesColumns, NewSalesDataGenerator(DefaultSalesConfig()).GenerateRows())
}

// RegionSales is the small region/sales table used across packages.
func RegionSales(t testing.TB) *table.Table {
	t.Helper()
	return NewTable(t, []string{"region", "sales", "units"}, [][]string{
		{"North", "10", "1"},
		{"South", "20", "3"},
		{"North", "30", "2"},
	})
}
