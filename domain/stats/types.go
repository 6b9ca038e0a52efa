package stats

import (
	"strings"
)

// ============================================================================
// DESCRIPTIVE STATISTICS
// ============================================================================

// ColumnStats summarises one numeric column. Count is the number of
// non-missing values, so Mean*Count == Sum whenever Mean is defined.
// Std and Variance use the n-1 denominator and are undefined for n < 2.
type ColumnStats struct {
	Column        string   `json:"column"`
	Count         int      `json:"count"`
	Sum           float64  `json:"sum"`
	Mean          Optional `json:"mean"`
	Median        Optional `json:"median"`
	Std           Optional `json:"std"`
	Variance      Optional `json:"variance"`
	Min           Optional `json:"min"`
	Max           Optional `json:"max"`
	Q25           Optional `json:"q25"`
	Q75           Optional `json:"q75"`
	MissingCount  int      `json:"missing_count"`
	DistinctCount int      `json:"distinct_count"`
	NonZeroCount  int      `json:"non_zero_count"`
}

// Description is the result of describing every numeric column of a table.
// Columns preserves table order; Stats is keyed by column name.
type Description struct {
	Columns []string               `json:"columns"`
	Stats   map[string]ColumnStats `json:"stats"`
}

// ============================================================================
// GROUP AGGREGATION
// ============================================================================

// AggregationOp is a reduction applied within each group.
type AggregationOp string

const (
	OpSum   AggregationOp = "sum"
	OpMean  AggregationOp = "mean"
	OpMax   AggregationOp = "max"
	OpMin   AggregationOp = "min"
	OpCount AggregationOp = "count"
)

// AggregationOps lists the supported reductions in UI order.
var AggregationOps = []AggregationOp{OpSum, OpMean, OpMax, OpMin, OpCount}

// ParseAggregationOp accepts an op name case-insensitively.
func ParseAggregationOp(s string) (AggregationOp, bool) {
	op := AggregationOp(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AggregationOps {
		if op == known {
			return op, true
		}
	}
	return "", false
}

// GroupRow is one partition of a GroupAggregation. IsNone marks the group
// of rows whose group column is missing.
type GroupRow struct {
	Key      string   `json:"key"`
	IsNone   bool     `json:"is_none,omitempty"`
	Value    Optional `json:"value"`
	RowCount int      `json:"row_count"`
}

// GroupAggregation holds one row per distinct group key, in order of the
// key's first occurrence in the table. The order is part of the contract.
type GroupAggregation struct {
	GroupColumn string        `json:"group_column"`
	ValueColumn string        `json:"value_column"`
	Op          AggregationOp `json:"op"`
	Rows        []GroupRow    `json:"rows"`
}

// Keys returns the group keys in result order.
func (g GroupAggregation) Keys() []string {
	keys := make([]string, len(g.Rows))
	for i, r := range g.Rows {
		keys[i] = r.Key
	}
	return keys
}

// Lookup returns the reduced value for a key.
func (g GroupAggregation) Lookup(key string) (Optional, bool) {
	for _, r := range g.Rows {
		if r.Key == key {
			return r.Value, true
		}
	}
	return Undefined(), false
}

// ============================================================================
// CORRELATION
// ============================================================================

// CorrelationMatrix is the Pearson correlation between every pair of
// numeric columns. Values[i][j] == Values[j][i]; the diagonal is 1 unless
// the column has zero variance, in which case the whole row is undefined.
type CorrelationMatrix struct {
	Columns []string     `json:"columns"`
	Values  [][]Optional `json:"values"`
}

// At returns the coefficient for a pair of column names.
func (m CorrelationMatrix) At(a, b string) (Optional, bool) {
	i, j := -1, -1
	for k, c := range m.Columns {
		if c == a {
			i = k
		}
		if c == b {
			j = k
		}
	}
	if i < 0 || j < 0 {
		return Undefined(), false
	}
	return m.Values[i][j], true
}

// ============================================================================
// TREND AND COMPARISON
// ============================================================================

// TrendResult is the first difference of a column against row order.
// Deltas[0] is always undefined. The summary covers defined deltas only.
type TrendResult struct {
	Column    string     `json:"column"`
	Deltas    []Optional `json:"deltas"`
	MeanDelta Optional   `json:"mean_delta"`
	MaxDelta  Optional   `json:"max_delta"`
	MinDelta  Optional   `json:"min_delta"`
	Slope     Optional   `json:"slope"`
}

// CompareResult contrasts two numeric columns. Ratio is MeanA/MeanB and is
// undefined when MeanB is zero or either mean is undefined.
type CompareResult struct {
	ColumnA string   `json:"column_a"`
	ColumnB string   `json:"column_b"`
	MeanA   Optional `json:"mean_a"`
	MeanB   Optional `json:"mean_b"`
	SumA    float64  `json:"sum_a"`
	SumB    float64  `json:"sum_b"`
	Ratio   Optional `json:"ratio"`
}
