package testkit

import (
	"bytes"
	"testing"

	"tabreport/domain/table"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestSalesDataGenerator_Deterministic(t *testing.T) {
	a := NewSalesDataGenerator(DefaultSalesConfig()).GenerateRows()
	b := NewSalesDataGenerator(DefaultSalesConfig()).GenerateRows()

	require.Len(t, a, 100)
	assert.Equal(t, a, b, "same seed must give the same rows")
	assert.Equal(t, "SP001", a[0][0])
	assert.Equal(t, "SP100", a[99][0])
	for _, row := range a {
		assert.Len(t, row, len(SalesColumns))
	}
}

func TestSalesTable_Schema(t *testing.T) {
	tbl := SalesTable(t)

	assert.Equal(t, 100, tbl.Rows())
	assert.Equal(t, []string{"Price", "Quantity", "Revenue", "Cost", "Profit"}, tbl.Schema().NumericColumns())
	assert.Equal(t, []string{"Product ID", "Category", "Month", "Region"}, tbl.Schema().CategoricalColumns())
	kind, _ := tbl.Kind("Profit")
	assert.Equal(t, table.KindNumeric, kind)
}

func TestWorkbookBytes_MultipleSheets(t *testing.T) {
	data, err := WorkbookBytes(
		Sheet{Name: "Data", Headers: []string{"x"}, Rows: Column("1", "2")},
		Sheet{Name: "Notes", Headers: []string{"note"}, Rows: Column("hello")},
	)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Data", "Notes"}, f.GetSheetList())
	rows, err := f.GetRows("Data", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"x"}, {"1"}, {"2"}}, rows)
}

func TestWorkbookBytes_RequiresSheet(t *testing.T) {
	_, err := WorkbookBytes()
	assert.Error(t, err)
}
