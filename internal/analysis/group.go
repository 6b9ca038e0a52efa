package analysis

import (
	"strconv"

	"tabreport/domain/stats"
	"tabreport/domain/table"
	"tabreport/internal/errors"
)

// NoneGroupKey labels the group of rows whose group column is missing.
const NoneGroupKey = "None"

type partition struct {
	key    string
	isNone bool
	rows   []int
}

// GroupReduce partitions rows by groupCol and reduces valueCol within each
// partition. Groups appear in order of first occurrence. Rows with a missing
// group value form a single None group. OpCount counts rows and accepts a
// column of any kind; every other op requires a numeric valueCol and skips
// missing values.
func GroupReduce(t *table.Table, groupCol, valueCol string, op stats.AggregationOp) (stats.GroupAggregation, error) {
	if err := requireColumn(t, groupCol); err != nil {
		return stats.GroupAggregation{}, err
	}
	if err := requireColumn(t, valueCol); err != nil {
		return stats.GroupAggregation{}, err
	}
	parsed, ok := stats.ParseAggregationOp(string(op))
	if !ok {
		return stats.GroupAggregation{}, errors.InvalidOperation(string(op))
	}
	op = parsed
	if op != stats.OpCount {
		if err := requireNumeric(t, valueCol); err != nil {
			return stats.GroupAggregation{}, err
		}
	}

	parts := partitionRows(t, groupCol)
	values, present := series(t, valueCol)

	result := stats.GroupAggregation{
		GroupColumn: groupCol,
		ValueColumn: valueCol,
		Op:          op,
		Rows:        make([]stats.GroupRow, 0, len(parts)),
	}
	for _, p := range parts {
		result.Rows = append(result.Rows, stats.GroupRow{
			Key:      p.key,
			IsNone:   p.isNone,
			Value:    reduce(op, p.rows, values, present),
			RowCount: len(p.rows),
		})
	}
	return result, nil
}

// partitionRows groups row indices by key in first-seen order. Numeric
// group columns are keyed by value so "10" and "10.0" land together.
func partitionRows(t *table.Table, groupCol string) []*partition {
	cells, _ := t.Column(groupCol)
	kind, _ := t.Kind(groupCol)

	var parts []*partition
	index := make(map[string]*partition)
	var none *partition

	for row, c := range cells {
		if c.Missing {
			if none == nil {
				none = &partition{key: NoneGroupKey, isNone: true}
				parts = append(parts, none)
			}
			none.rows = append(none.rows, row)
			continue
		}

		key := c.Raw
		if kind == table.KindNumeric {
			key = strconv.FormatFloat(c.Number, 'f', -1, 64)
		}
		p, ok := index[key]
		if !ok {
			p = &partition{key: key}
			index[key] = p
			parts = append(parts, p)
		}
		p.rows = append(p.rows, row)
	}
	return parts
}

func reduce(op stats.AggregationOp, rows []int, values []float64, present []bool) stats.Optional {
	if op == stats.OpCount {
		return stats.Value(float64(len(rows)))
	}

	var (
		sum      float64
		n        int
		min, max float64
	)
	for _, r := range rows {
		if !present[r] {
			continue
		}
		v := values[r]
		if n == 0 || v < min {
			min = v
		}
		if n == 0 || v > max {
			max = v
		}
		sum += v
		n++
	}

	switch op {
	case stats.OpSum:
		return stats.Value(sum)
	case stats.OpMean:
		if n == 0 {
			return stats.Undefined()
		}
		return stats.Value(sum / float64(n))
	case stats.OpMax:
		if n == 0 {
			return stats.Undefined()
		}
		return stats.Value(max)
	case stats.OpMin:
		if n == 0 {
			return stats.Undefined()
		}
		return stats.Value(min)
	}
	return stats.Undefined()
}
