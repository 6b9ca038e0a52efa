package analysis

import (
	"tabreport/domain/stats"
	"tabreport/domain/table"

	"github.com/sajari/regression"
)

// Trend computes the first difference of a numeric column against row
// order. A delta is undefined for the first row and wherever either
// neighbour is missing. The summary and the least-squares slope over row
// index ignore undefined values.
func Trend(t *table.Table, column string) (stats.TrendResult, error) {
	if err := requireNumeric(t, column); err != nil {
		return stats.TrendResult{}, err
	}

	values, present := series(t, column)
	result := stats.TrendResult{
		Column: column,
		Deltas: make([]stats.Optional, len(values)),
	}

	var sum float64
	var n int
	var min, max float64
	for i := 1; i < len(values); i++ {
		if !present[i] || !present[i-1] {
			continue
		}
		d := values[i] - values[i-1]
		result.Deltas[i] = stats.Value(d)
		if n == 0 || d < min {
			min = d
		}
		if n == 0 || d > max {
			max = d
		}
		sum += d
		n++
	}
	if n > 0 {
		result.MeanDelta = stats.Value(sum / float64(n))
		result.MinDelta = stats.Value(min)
		result.MaxDelta = stats.Value(max)
	}

	result.Slope = slope(column, values, present)
	return result, nil
}

// slope fits value = a + b*row and returns b.
func slope(column string, values []float64, present []bool) stats.Optional {
	r := new(regression.Regression)
	r.SetObserved(column)
	r.SetVar(0, "row")

	n := 0
	for i, v := range values {
		if !present[i] {
			continue
		}
		r.Train(regression.DataPoint(v, []float64{float64(i)}))
		n++
	}
	if n < 2 {
		return stats.Undefined()
	}
	if err := r.Run(); err != nil {
		return stats.Undefined()
	}
	return stats.Value(r.Coeff(1))
}
