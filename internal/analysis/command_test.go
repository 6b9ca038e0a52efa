package analysis

import (
	"encoding/json"
	"testing"

	"tabreport/internal/errors"
	"tabreport/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecute_PopulatesOnePayload(t *testing.T) {
	tbl := testkit.RegionSales(t)

	tests := []struct {
		cmd   Command
		check func(t *testing.T, r *Result)
	}{
		{Command{Op: OpDescribe}, func(t *testing.T, r *Result) { assert.NotNil(t, r.Description) }},
		{Command{Op: OpColumnDetail, Column: "sales"}, func(t *testing.T, r *Result) { assert.NotNil(t, r.ColumnStats) }},
		{Command{Op: OpGroupReduce, GroupColumn: "region", ValueColumn: "sales", Agg: "SUM"}, func(t *testing.T, r *Result) { assert.NotNil(t, r.Group) }},
		{Command{Op: OpCorrelation}, func(t *testing.T, r *Result) { assert.NotNil(t, r.Correlation) }},
		{Command{Op: OpTrend, Column: "sales"}, func(t *testing.T, r *Result) { assert.NotNil(t, r.Trend) }},
		{Command{Op: OpCompare, ColumnA: "sales", ColumnB: "units"}, func(t *testing.T, r *Result) { assert.NotNil(t, r.Compare) }},
	}

	for _, tt := range tests {
		t.Run(string(tt.cmd.Op), func(t *testing.T) {
			r, err := Execute(tbl, tt.cmd)
			require.NoError(t, err)
			assert.Equal(t, tt.cmd.Op, r.Op)
			tt.check(t, r)

			raw, err := json.Marshal(r)
			require.NoError(t, err)
			var fields map[string]json.RawMessage
			require.NoError(t, json.Unmarshal(raw, &fields))
			assert.Len(t, fields, 2, "op plus one payload")
		})
	}
}

func TestExecute_Errors(t *testing.T) {
	tbl := testkit.RegionSales(t)

	_, err := Execute(tbl, Command{Op: "pivot"})
	assert.True(t, errors.IsCode(err, errors.CodeInvalidOperation))

	_, err = Execute(tbl, Command{Op: OpGroupReduce, GroupColumn: "region", ValueColumn: "sales", Agg: "median"})
	assert.True(t, errors.IsCode(err, errors.CodeInvalidOperation))

	_, err = Execute(tbl, Command{Op: OpTrend, Column: "ghost"})
	assert.True(t, errors.IsCode(err, errors.CodeInvalidColumn))
}

func TestExecute_Idempotent(t *testing.T) {
	tbl := testkit.SalesTable(t)
	cmds := []Command{
		{Op: OpDescribe},
		{Op: OpGroupReduce, GroupColumn: "Region", ValueColumn: "Revenue", Agg: "mean"},
		{Op: OpCorrelation},
		{Op: OpTrend, Column: "Profit"},
		{Op: OpCompare, ColumnA: "Revenue", ColumnB: "Cost"},
	}

	for _, cmd := range cmds {
		first, err := Execute(tbl, cmd)
		require.NoError(t, err)
		second, err := Execute(tbl, cmd)
		require.NoError(t, err)
		assert.Equal(t, first, second, string(cmd.Op))
	}
}
