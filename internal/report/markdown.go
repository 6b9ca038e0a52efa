package report

import (
	"fmt"
	"strings"

	"tabreport/domain/stats"
	"tabreport/domain/table"
	"tabreport/internal/analysis"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// Overview holds the headline metrics of a table.
type Overview struct {
	Rows        int      `json:"rows"`
	Columns     int      `json:"columns"`
	Cells       int      `json:"cells"`
	Numeric     []string `json:"numeric"`
	Categorical []string `json:"categorical"`
}

// NewOverview computes the headline metrics of t.
func NewOverview(t *table.Table) Overview {
	schema := t.Schema()
	return Overview{
		Rows:        t.Rows(),
		Columns:     t.Width(),
		Cells:       t.Rows() * t.Width(),
		Numeric:     schema.NumericColumns(),
		Categorical: schema.CategoricalColumns(),
	}
}

// Summary writes a markdown report for a table: overview, descriptive
// statistics and, when there are at least two numeric columns, the
// correlation matrix.
func Summary(title string, t *table.Table) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", escape(title))

	ov := NewOverview(t)
	b.WriteString("## Overview\n\n")
	fmt.Fprintf(&b, "- Rows: %s\n", FormatCount(ov.Rows))
	fmt.Fprintf(&b, "- Columns: %s\n", FormatCount(ov.Columns))
	fmt.Fprintf(&b, "- Cells: %s\n", FormatCount(ov.Cells))
	fmt.Fprintf(&b, "- Numeric columns: %s\n", joinOrNone(ov.Numeric))
	fmt.Fprintf(&b, "- Categorical columns: %s\n\n", joinOrNone(ov.Categorical))

	d := analysis.Describe(t)
	b.WriteString("## Descriptive statistics\n\n")
	if len(d.Columns) == 0 {
		b.WriteString("No numeric columns.\n\n")
	} else {
		b.WriteString(DescriptionMarkdown(d))
		b.WriteString("\n")
	}

	if m, err := analysis.Correlation(t); err == nil {
		b.WriteString("## Correlation\n\n")
		b.WriteString(CorrelationMarkdown(m))
		b.WriteString("\n")
	}
	return b.String()
}

// ResultMarkdown renders one command result as markdown.
func ResultMarkdown(r *analysis.Result) string {
	switch {
	case r.Description != nil:
		return DescriptionMarkdown(*r.Description)
	case r.ColumnStats != nil:
		return ColumnStatsMarkdown(*r.ColumnStats)
	case r.Group != nil:
		return GroupMarkdown(*r.Group)
	case r.Correlation != nil:
		return CorrelationMarkdown(*r.Correlation)
	case r.Trend != nil:
		return TrendMarkdown(*r.Trend)
	case r.Compare != nil:
		return CompareMarkdown(*r.Compare)
	}
	return ""
}

var describeHeader = []string{"Column", "Count", "Mean", "Std", "Min", "25%", "50%", "75%", "Max", "Sum", "Missing", "Distinct"}

// DescriptionMarkdown renders one row per described column.
func DescriptionMarkdown(d stats.Description) string {
	var b strings.Builder
	writeRow(&b, describeHeader)
	writeSeparator(&b, len(describeHeader))
	for _, name := range d.Columns {
		writeRow(&b, describeRow(d.Stats[name]))
	}
	return b.String()
}

func describeRow(cs stats.ColumnStats) []string {
	return []string{
		cs.Column,
		FormatCount(cs.Count),
		FormatOptional(cs.Mean),
		FormatOptional(cs.Std),
		FormatOptional(cs.Min),
		FormatOptional(cs.Q25),
		FormatOptional(cs.Median),
		FormatOptional(cs.Q75),
		FormatOptional(cs.Max),
		FormatNumber(cs.Sum),
		FormatCount(cs.MissingCount),
		FormatCount(cs.DistinctCount),
	}
}

// ColumnStatsMarkdown renders a single column's statistics as a
// two-column table.
func ColumnStatsMarkdown(cs stats.ColumnStats) string {
	var b strings.Builder
	writeRow(&b, []string{"Statistic", cs.Column})
	writeSeparator(&b, 2)
	row := describeRow(cs)
	for i := 1; i < len(describeHeader); i++ {
		writeRow(&b, []string{describeHeader[i], row[i]})
	}
	writeRow(&b, []string{"Variance", FormatOptional(cs.Variance)})
	writeRow(&b, []string{"Non-zero", FormatCount(cs.NonZeroCount)})
	return b.String()
}

// GroupMarkdown renders a group aggregation in result order.
func GroupMarkdown(g stats.GroupAggregation) string {
	var b strings.Builder
	writeRow(&b, []string{g.GroupColumn, fmt.Sprintf("%s(%s)", g.Op, g.ValueColumn), "Rows"})
	writeSeparator(&b, 3)
	for _, r := range g.Rows {
		writeRow(&b, []string{r.Key, FormatOptional(r.Value), FormatCount(r.RowCount)})
	}
	return b.String()
}

// CorrelationMarkdown renders the matrix with column names on both axes.
func CorrelationMarkdown(m stats.CorrelationMatrix) string {
	var b strings.Builder
	writeRow(&b, append([]string{""}, m.Columns...))
	writeSeparator(&b, len(m.Columns)+1)
	for i, name := range m.Columns {
		row := []string{name}
		for _, v := range m.Values[i] {
			row = append(row, FormatOptional(v))
		}
		writeRow(&b, row)
	}
	return b.String()
}

// TrendMarkdown renders the trend summary.
func TrendMarkdown(tr stats.TrendResult) string {
	var b strings.Builder
	writeRow(&b, []string{"Trend", tr.Column})
	writeSeparator(&b, 2)
	writeRow(&b, []string{"Mean change", FormatOptional(tr.MeanDelta)})
	writeRow(&b, []string{"Largest increase", FormatOptional(tr.MaxDelta)})
	writeRow(&b, []string{"Largest decrease", FormatOptional(tr.MinDelta)})
	writeRow(&b, []string{"Slope per row", FormatOptional(tr.Slope)})
	return b.String()
}

// CompareMarkdown renders both columns side by side with the ratio.
func CompareMarkdown(c stats.CompareResult) string {
	var b strings.Builder
	writeRow(&b, []string{"", c.ColumnA, c.ColumnB})
	writeSeparator(&b, 3)
	writeRow(&b, []string{"Mean", FormatOptional(c.MeanA), FormatOptional(c.MeanB)})
	writeRow(&b, []string{"Sum", FormatNumber(c.SumA), FormatNumber(c.SumB)})
	b.WriteString("\n")
	fmt.Fprintf(&b, "Ratio of means: **%s**\n", FormatOptional(c.Ratio))
	return b.String()
}

// ToHTML renders markdown to an HTML fragment.
func ToHTML(md string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.ToHTML([]byte(md), p, renderer)
}

func writeRow(b *strings.Builder, cells []string) {
	b.WriteString("|")
	for _, c := range cells {
		b.WriteString(" ")
		b.WriteString(escape(c))
		b.WriteString(" |")
	}
	b.WriteString("\n")
}

func writeSeparator(b *strings.Builder, n int) {
	b.WriteString("|")
	for i := 0; i < n; i++ {
		b.WriteString(" --- |")
	}
	b.WriteString("\n")
}

var markdownEscaper = strings.NewReplacer("|", `\|`, "*", `\*`, "_", `\_`, "<", "&lt;", ">", "&gt;")

func escape(s string) string {
	return markdownEscaper.Replace(s)
}

func joinOrNone(names []string) string {
	if len(names) == 0 {
		return "none"
	}
	escaped := make([]string, len(names))
	for i, n := range names {
		escaped[i] = escape(n)
	}
	return strings.Join(escaped, ", ")
}
