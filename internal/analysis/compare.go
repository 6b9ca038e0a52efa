package analysis

import (
	"tabreport/domain/stats"
	"tabreport/domain/table"

	mstats "github.com/montanaflynn/stats"
)

// Compare contrasts two numeric columns. The ratio MeanA/MeanB is the
// undefined marker when MeanB is zero or either mean is undefined; it is
// never an infinity and never an error.
func Compare(t *table.Table, columnA, columnB string) (stats.CompareResult, error) {
	if err := requireNumeric(t, columnA); err != nil {
		return stats.CompareResult{}, err
	}
	if err := requireNumeric(t, columnB); err != nil {
		return stats.CompareResult{}, err
	}

	result := stats.CompareResult{ColumnA: columnA, ColumnB: columnB}
	result.MeanA, result.SumA = meanAndSum(t, columnA)
	result.MeanB, result.SumB = meanAndSum(t, columnB)

	meanA, okA := result.MeanA.Float()
	meanB, okB := result.MeanB.Float()
	if okA && okB && meanB != 0 {
		result.Ratio = stats.Value(meanA / meanB)
	}
	return result, nil
}

func meanAndSum(t *table.Table, column string) (stats.Optional, float64) {
	values, _ := t.Numbers(column)
	if len(values) == 0 {
		return stats.Undefined(), 0
	}
	sum, _ := mstats.Sum(values)
	mean, _ := mstats.Mean(values)
	return stats.Value(mean), sum
}
