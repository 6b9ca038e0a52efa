package analysis

import (
	"fmt"

	"tabreport/domain/stats"
	"tabreport/domain/table"
	"tabreport/internal/errors"

	"gonum.org/v1/gonum/stat"
)

// Correlation computes the Pearson correlation matrix over all numeric
// columns using pairwise-complete observations. Pairs with fewer than two
// shared observations, or where either side is constant, are undefined.
func Correlation(t *table.Table) (stats.CorrelationMatrix, error) {
	columns := t.Schema().NumericColumns()
	if len(columns) < 2 {
		return stats.CorrelationMatrix{}, errors.InsufficientData(
			fmt.Sprintf("correlation needs at least 2 numeric columns, table has %d", len(columns)))
	}

	type col struct {
		values  []float64
		present []bool
	}
	data := make([]col, len(columns))
	for i, name := range columns {
		v, p := series(t, name)
		data[i] = col{values: v, present: p}
	}

	m := stats.CorrelationMatrix{
		Columns: columns,
		Values:  make([][]stats.Optional, len(columns)),
	}
	for i := range columns {
		m.Values[i] = make([]stats.Optional, len(columns))
	}

	for i := range columns {
		m.Values[i][i] = selfCorrelation(data[i].values, data[i].present)
		for j := i + 1; j < len(columns); j++ {
			x, y := pairwiseComplete(data[i].values, data[i].present, data[j].values, data[j].present)
			r := stats.Undefined()
			if len(x) >= 2 {
				r = stats.Value(stat.Correlation(x, y, nil))
			}
			m.Values[i][j] = r
			m.Values[j][i] = r
		}
	}
	return m, nil
}

func pairwiseComplete(a []float64, pa []bool, b []float64, pb []bool) (x, y []float64) {
	for r := range a {
		if pa[r] && pb[r] {
			x = append(x, a[r])
			y = append(y, b[r])
		}
	}
	return x, y
}

// selfCorrelation is 1 for a column with variation, undefined otherwise.
func selfCorrelation(values []float64, present []bool) stats.Optional {
	first, seen := 0.0, false
	for r, v := range values {
		if !present[r] {
			continue
		}
		if !seen {
			first, seen = v, true
			continue
		}
		if v != first {
			return stats.Value(1)
		}
	}
	return stats.Undefined()
}
