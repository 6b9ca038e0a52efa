package report

import (
	"strings"
	"testing"

	"tabreport/domain/stats"
	"tabreport/internal/analysis"
	"tabreport/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummary(t *testing.T) {
	tbl := testkit.RegionSales(t)

	md := Summary("sales.xlsx", tbl)

	assert.Contains(t, md, "# sales.xlsx")
	assert.Contains(t, md, "- Rows: 3")
	assert.Contains(t, md, "- Cells: 9")
	assert.Contains(t, md, "- Numeric columns: sales, units")
	assert.Contains(t, md, "| sales | 3 | 20.00 | 10.00 | 10.00 | 15.00 | 20.00 | 25.00 | 30.00 | 60.00 | 0 | 3 |")
	assert.Contains(t, md, "## Correlation")
}

func TestSummary_NoNumericColumns(t *testing.T) {
	tbl := testkit.NewTable(t, []string{"name"}, testkit.Column("a"))

	md := Summary("names", tbl)
	assert.Contains(t, md, "No numeric columns.")
	assert.NotContains(t, md, "## Correlation")
}

func TestResultMarkdown(t *testing.T) {
	tbl := testkit.RegionSales(t)

	r, err := analysis.Execute(tbl, analysis.Command{Op: analysis.OpGroupReduce, GroupColumn: "region", ValueColumn: "sales", Agg: "sum"})
	require.NoError(t, err)
	md := ResultMarkdown(r)
	assert.Contains(t, md, "| region | sum(sales) | Rows |")
	assert.Less(t, strings.Index(md, "North"), strings.Index(md, "South"))

	md = CompareMarkdown(stats.CompareResult{ColumnA: "a", ColumnB: "b", MeanA: stats.Value(15), MeanB: stats.Value(0)})
	assert.Contains(t, md, "Ratio of means: **undefined**")

	cs, err := analysis.ColumnDetail(tbl, "sales")
	require.NoError(t, err)
	assert.Contains(t, ColumnStatsMarkdown(cs), "| Non-zero | 3 |")
}

func TestToHTML(t *testing.T) {
	html := string(ToHTML(Summary("Report <1>", testkit.RegionSales(t))))

	assert.Contains(t, html, "<h1")
	assert.Contains(t, html, "<table>")
	assert.Contains(t, html, "<td>sales</td>")
	assert.NotContains(t, html, "<1>", "titles are escaped")
}
