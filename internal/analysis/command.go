package analysis

import (
	"strings"

	"tabreport/domain/stats"
	"tabreport/domain/table"
	"tabreport/internal/errors"
)

// Operation names one aggregator call.
type Operation string

const (
	OpDescribe     Operation = "describe"
	OpColumnDetail Operation = "column_detail"
	OpGroupReduce  Operation = "group_reduce"
	OpCorrelation  Operation = "correlation"
	OpTrend        Operation = "trend"
	OpCompare      Operation = "compare"
)

// Operations lists every supported operation.
var Operations = []Operation{OpDescribe, OpColumnDetail, OpGroupReduce, OpCorrelation, OpTrend, OpCompare}

// Command describes one request against a table. Only the fields the
// operation needs are read.
type Command struct {
	Op          Operation `json:"op"`
	Column      string    `json:"column,omitempty"`
	GroupColumn string    `json:"group_column,omitempty"`
	ValueColumn string    `json:"value_column,omitempty"`
	Agg         string    `json:"agg,omitempty"`
	ColumnA     string    `json:"column_a,omitempty"`
	ColumnB     string    `json:"column_b,omitempty"`
}

// Result carries the output of exactly one operation; the field matching
// Op is set and the rest are nil.
type Result struct {
	Op          Operation                `json:"op"`
	Description *stats.Description       `json:"description,omitempty"`
	ColumnStats *stats.ColumnStats       `json:"column_stats,omitempty"`
	Group       *stats.GroupAggregation  `json:"group,omitempty"`
	Correlation *stats.CorrelationMatrix `json:"correlation,omitempty"`
	Trend       *stats.TrendResult       `json:"trend,omitempty"`
	Compare     *stats.CompareResult     `json:"compare,omitempty"`
}

// ParseOperation accepts an operation name case-insensitively.
func ParseOperation(s string) (Operation, bool) {
	op := Operation(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Operations {
		if op == known {
			return op, true
		}
	}
	return "", false
}

// Execute runs cmd against t.
func Execute(t *table.Table, cmd Command) (*Result, error) {
	op, ok := ParseOperation(string(cmd.Op))
	if !ok {
		return nil, errors.InvalidOperation(string(cmd.Op))
	}

	result := &Result{Op: op}
	switch op {
	case OpDescribe:
		d := Describe(t)
		result.Description = &d

	case OpColumnDetail:
		cs, err := ColumnDetail(t, cmd.Column)
		if err != nil {
			return nil, err
		}
		result.ColumnStats = &cs

	case OpGroupReduce:
		agg := stats.AggregationOp(cmd.Agg)
		if parsed, ok := stats.ParseAggregationOp(cmd.Agg); ok {
			agg = parsed
		}
		g, err := GroupReduce(t, cmd.GroupColumn, cmd.ValueColumn, agg)
		if err != nil {
			return nil, err
		}
		result.Group = &g

	case OpCorrelation:
		m, err := Correlation(t)
		if err != nil {
			return nil, err
		}
		result.Correlation = &m

	case OpTrend:
		tr, err := Trend(t, cmd.Column)
		if err != nil {
			return nil, err
		}
		result.Trend = &tr

	case OpCompare:
		c, err := Compare(t, cmd.ColumnA, cmd.ColumnB)
		if err != nil {
			return nil, err
		}
		result.Compare = &c
	}
	return result, nil
}
