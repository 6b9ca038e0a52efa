package analysis

import (
	"slices"

	"tabreport/domain/stats"
	"tabreport/domain/table"

	mstats "github.com/montanaflynn/stats"
)

// Describe computes ColumnStats for every numeric column, in table order.
// A table without numeric columns yields an empty description.
func Describe(t *table.Table) stats.Description {
	columns := t.Schema().NumericColumns()
	d := stats.Description{
		Columns: columns,
		Stats:   make(map[string]stats.ColumnStats, len(columns)),
	}
	for _, name := range columns {
		d.Stats[name] = columnStats(t, name)
	}
	return d
}

// ColumnDetail computes ColumnStats for a single numeric column. The result
// is identical to the column's entry in Describe.
func ColumnDetail(t *table.Table, column string) (stats.ColumnStats, error) {
	if err := requireNumeric(t, column); err != nil {
		return stats.ColumnStats{}, err
	}
	return columnStats(t, column), nil
}

func columnStats(t *table.Table, name string) stats.ColumnStats {
	values, _ := t.Numbers(name)

	cs := stats.ColumnStats{
		Column:        name,
		Count:         len(values),
		MissingCount:  t.Rows() - len(values),
		DistinctCount: distinct(values),
		NonZeroCount:  nonZero(values),
	}
	if len(values) == 0 {
		return cs
	}

	cs.Sum, _ = mstats.Sum(values)
	mean, _ := mstats.Mean(values)
	median, _ := mstats.Median(values)
	min, _ := mstats.Min(values)
	max, _ := mstats.Max(values)

	cs.Mean = stats.Value(mean)
	cs.Median = stats.Value(median)
	cs.Min = stats.Value(min)
	cs.Max = stats.Value(max)

	if len(values) >= 2 {
		variance, _ := mstats.SampleVariance(values)
		std, _ := mstats.StandardDeviationSample(values)
		cs.Variance = stats.Value(variance)
		cs.Std = stats.Value(std)
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)
	cs.Q25 = stats.Value(quantile(sorted, 0.25))
	cs.Q75 = stats.Value(quantile(sorted, 0.75))

	return cs
}

func nonZero(values []float64) int {
	n := 0
	for _, v := range values {
		if v != 0 {
			n++
		}
	}
	return n
}

func distinct(values []float64) int {
	seen := make(map[float64]struct{}, len(values))
	for _, v := range values {
		seen[v] = struct{}{}
	}
	return len(seen)
}
