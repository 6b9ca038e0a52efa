package report

import (
	"encoding/csv"
	"strings"
	"testing"

	"tabreport/domain/stats"
	"tabreport/internal/analysis"
	"tabreport/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readCSV(t *testing.T, data []byte) [][]string {
	t.Helper()
	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	require.NoError(t, err)
	return records
}

func TestGroupCSV(t *testing.T) {
	g, err := analysis.GroupReduce(testkit.RegionSales(t), "region", "sales", stats.OpSum)
	require.NoError(t, err)

	data, err := GroupCSV(g)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"region", "sum_sales", "rows"},
		{"North", "40", "2"},
		{"South", "20", "1"},
	}, readCSV(t, data))
}

func TestDescriptionCSV(t *testing.T) {
	tbl := testkit.NewTable(t, []string{"x", "y"}, [][]string{{"1", "7"}, {"2", ""}, {"3", ""}, {"4", ""}, {"5", ""}})

	data, err := DescriptionCSV(analysis.Describe(tbl))
	require.NoError(t, err)
	records := readCSV(t, data)

	require.Len(t, records, 3)
	assert.Equal(t, []string{"x", "5", "3", "1.5811388300841898", "2.5", "1", "2", "3", "4", "5", "15", "0", "5", "5"}, records[1])
	assert.Equal(t, "", records[2][3], "undefined std exports as an empty cell")
}

func TestResultCSV_AllOperations(t *testing.T) {
	tbl := testkit.RegionSales(t)
	cmds := []analysis.Command{
		{Op: analysis.OpDescribe},
		{Op: analysis.OpColumnDetail, Column: "sales"},
		{Op: analysis.OpGroupReduce, GroupColumn: "region", ValueColumn: "units", Agg: "max"},
		{Op: analysis.OpCorrelation},
		{Op: analysis.OpTrend, Column: "sales"},
		{Op: analysis.OpCompare, ColumnA: "sales", ColumnB: "units"},
	}

	for _, cmd := range cmds {
		t.Run(string(cmd.Op), func(t *testing.T) {
			r, err := analysis.Execute(tbl, cmd)
			require.NoError(t, err)
			data, err := ResultCSV(r)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, len(readCSV(t, data)), 2)
		})
	}
}

func TestCompareCSV_UndefinedRatio(t *testing.T) {
	data, err := CompareCSV(stats.CompareResult{ColumnA: "a", ColumnB: "b", MeanA: stats.Value(15), MeanB: stats.Value(0), SumA: 30})
	require.NoError(t, err)
	records := readCSV(t, data)
	assert.Equal(t, []string{"a", "15", "30", ""}, records[1])
}
