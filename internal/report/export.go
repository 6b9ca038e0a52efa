package report

import (
	"bytes"
	"fmt"
	"strconv"

	"tabreport/domain/stats"
	"tabreport/internal/analysis"
	"tabreport/internal/errors"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// ResultCSV exports a command result as CSV. Undefined values are empty
// cells; numbers are written at full precision.
func ResultCSV(r *analysis.Result) ([]byte, error) {
	switch {
	case r.Description != nil:
		return DescriptionCSV(*r.Description)
	case r.ColumnStats != nil:
		return DescriptionCSV(stats.Description{
			Columns: []string{r.ColumnStats.Column},
			Stats:   map[string]stats.ColumnStats{r.ColumnStats.Column: *r.ColumnStats},
		})
	case r.Group != nil:
		return GroupCSV(*r.Group)
	case r.Correlation != nil:
		return CorrelationCSV(*r.Correlation)
	case r.Trend != nil:
		return TrendCSV(*r.Trend)
	case r.Compare != nil:
		return CompareCSV(*r.Compare)
	}
	return nil, errors.InvalidOperation(string(r.Op))
}

// DescriptionCSV writes one row per described column.
func DescriptionCSV(d stats.Description) ([]byte, error) {
	headers := []string{"column", "count", "mean", "std", "variance", "min", "q25", "median", "q75", "max", "sum", "missing", "distinct", "non_zero"}
	rows := make([][]string, 0, len(d.Columns))
	for _, name := range d.Columns {
		cs := d.Stats[name]
		rows = append(rows, []string{
			cs.Column,
			strconv.Itoa(cs.Count),
			exact(cs.Mean),
			exact(cs.Std),
			exact(cs.Variance),
			exact(cs.Min),
			exact(cs.Q25),
			exact(cs.Median),
			exact(cs.Q75),
			exact(cs.Max),
			exact(stats.Value(cs.Sum)),
			strconv.Itoa(cs.MissingCount),
			strconv.Itoa(cs.DistinctCount),
			strconv.Itoa(cs.NonZeroCount),
		})
	}
	return writeFrame(headers, rows)
}

// GroupCSV writes the group aggregation in result order.
func GroupCSV(g stats.GroupAggregation) ([]byte, error) {
	headers := []string{g.GroupColumn, fmt.Sprintf("%s_%s", g.Op, g.ValueColumn), "rows"}
	rows := make([][]string, 0, len(g.Rows))
	for _, r := range g.Rows {
		rows = append(rows, []string{r.Key, exact(r.Value), strconv.Itoa(r.RowCount)})
	}
	return writeFrame(headers, rows)
}

// CorrelationCSV writes the matrix with a leading column of names.
func CorrelationCSV(m stats.CorrelationMatrix) ([]byte, error) {
	headers := append([]string{"column"}, m.Columns...)
	rows := make([][]string, 0, len(m.Columns))
	for i, name := range m.Columns {
		row := []string{name}
		for _, v := range m.Values[i] {
			row = append(row, exact(v))
		}
		rows = append(rows, row)
	}
	return writeFrame(headers, rows)
}

// TrendCSV writes the per-row deltas.
func TrendCSV(tr stats.TrendResult) ([]byte, error) {
	rows := make([][]string, 0, len(tr.Deltas))
	for i, d := range tr.Deltas {
		rows = append(rows, []string{strconv.Itoa(i), exact(d)})
	}
	return writeFrame([]string{"row", "delta"}, rows)
}

// CompareCSV writes one row per compared column; the ratio sits on the
// first row.
func CompareCSV(c stats.CompareResult) ([]byte, error) {
	return writeFrame([]string{"column", "mean", "sum", "ratio"}, [][]string{
		{c.ColumnA, exact(c.MeanA), exact(stats.Value(c.SumA)), exact(c.Ratio)},
		{c.ColumnB, exact(c.MeanB), exact(stats.Value(c.SumB)), ""},
	})
}

// writeFrame assembles string series column by column into a dataframe and
// writes it as CSV. String series keep the exact text of every cell.
func writeFrame(headers []string, rows [][]string) ([]byte, error) {
	list := make([]series.Series, len(headers))
	for j, name := range headers {
		values := make([]string, len(rows))
		for i, row := range rows {
			values[i] = row[j]
		}
		list[j] = series.New(values, series.String, name)
	}

	df := dataframe.New(list...)
	if df.Err != nil {
		return nil, errors.Wrap(df.Err, "failed to build export frame")
	}

	var buf bytes.Buffer
	if err := df.WriteCSV(&buf); err != nil {
		return nil, errors.Wrap(err, "failed to write CSV")
	}
	return buf.Bytes(), nil
}
