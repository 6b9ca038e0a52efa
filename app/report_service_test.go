package app

import (
	"context"
	"strings"
	"testing"
	"time"

	"tabreport/adapters/datareadiness/coercer"
	"tabreport/adapters/excel"
	"tabreport/internal/analysis"
	"tabreport/internal/charts"
	"tabreport/internal/errors"
	"tabreport/internal/session"
	"tabreport/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService() *ReportService {
	return NewReportService(
		excel.NewTableLoader(excel.DefaultExcelConfig(), coercer.DefaultCoercionConfig()),
		session.NewMemoryStore(time.Hour, 0),
		charts.NewRenderer(charts.DefaultConfig()),
	)
}

func salesWorkbook(t *testing.T) []byte {
	t.Helper()
	data, err := testkit.WorkbookBytes(
		testkit.Sheet{Name: "Sales", Headers: []string{"region", "sales"}, Rows: [][]string{{"North", "10"}, {"South", "20"}, {"North", "30"}}},
		testkit.Sheet{Name: "Targets", Headers: []string{"region", "target", "stretch"}, Rows: [][]string{{"North", "50", "60"}, {"South", "25", "20"}}},
	)
	require.NoError(t, err)
	return data
}

func TestReportService_UploadAndExecute(t *testing.T) {
	svc := newService()

	sess, err := svc.Upload(context.Background(), "sales.xlsx", salesWorkbook(t), "")
	require.NoError(t, err)
	assert.Equal(t, "Sales", sess.Sheet)
	assert.Equal(t, []string{"Sales", "Targets"}, sess.Sheets)

	result, err := svc.Execute(sess.ID.String(), analysis.Command{
		Op: analysis.OpGroupReduce, GroupColumn: "region", ValueColumn: "sales", Agg: "sum",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"North", "South"}, result.Group.Keys())

	overview, err := svc.Overview(sess.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 6, overview.Cells)
}

func TestReportService_SelectSheet(t *testing.T) {
	svc := newService()
	sess, err := svc.Upload(context.Background(), "sales.xlsx", salesWorkbook(t), "")
	require.NoError(t, err)

	updated, err := svc.SelectSheet(context.Background(), sess.ID.String(), "Targets")
	require.NoError(t, err)
	assert.Equal(t, "Targets", updated.Sheet)
	assert.Equal(t, sess.ID, updated.ID)

	result, err := svc.Execute(sess.ID.String(), analysis.Command{Op: analysis.OpCompare, ColumnA: "target", ColumnB: "stretch"})
	require.NoError(t, err)
	assert.InDelta(t, 37.5/40, result.Compare.Ratio.Or(0), 1e-12)

	_, err = svc.SelectSheet(context.Background(), sess.ID.String(), "Nope")
	assert.True(t, errors.IsCode(err, errors.CodeParseError))
}

func TestReportService_ReuploadReplacesTable(t *testing.T) {
	svc := newService()
	sess, err := svc.Upload(context.Background(), "sales.xlsx", salesWorkbook(t), "")
	require.NoError(t, err)

	csv := testkit.CSVBytes([]string{"x", "y"}, [][]string{{"1", "2"}, {"3", "4"}})
	replaced, err := svc.Reupload(context.Background(), sess.ID.String(), "points.csv", csv, "")
	require.NoError(t, err)
	assert.Equal(t, sess.ID, replaced.ID)
	assert.Equal(t, []string{"x", "y"}, replaced.Table.Columns())

	_, err = svc.Execute(sess.ID.String(), analysis.Command{Op: analysis.OpTrend, Column: "sales"})
	assert.True(t, errors.IsCode(err, errors.CodeInvalidColumn), "old table is gone")
}

func TestReportService_FailedUploadKeepsNothing(t *testing.T) {
	svc := newService()

	_, err := svc.Upload(context.Background(), "empty.csv", nil, "")
	assert.True(t, errors.IsCode(err, errors.CodeParseError))
}

func TestReportService_ErrorsDoNotAffectSession(t *testing.T) {
	svc := newService()
	sess, err := svc.Upload(context.Background(), "sales.xlsx", salesWorkbook(t), "")
	require.NoError(t, err)
	id := sess.ID.String()

	_, err = svc.Execute(id, analysis.Command{Op: analysis.OpCorrelation})
	assert.True(t, errors.IsCode(err, errors.CodeInsufficientData))

	result, err := svc.Execute(id, analysis.Command{Op: analysis.OpColumnDetail, Column: "sales"})
	require.NoError(t, err)
	assert.Equal(t, 60.0, result.ColumnStats.Sum)
}

func TestReportService_SummaryChartExport(t *testing.T) {
	svc := newService()
	sess, err := svc.Upload(context.Background(), "sales.xlsx", salesWorkbook(t), "")
	require.NoError(t, err)
	id := sess.ID.String()

	md, err := svc.Summary(id)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(md, "# sales.xlsx (Sales)"))

	chart, err := svc.Chart(id, charts.ChartRequest{Type: charts.ChartPie, GroupBy: "region", Value: "sales"})
	require.NoError(t, err)
	assert.NotEmpty(t, chart.Data)

	csv, err := svc.Export(id, analysis.Command{Op: analysis.OpDescribe})
	require.NoError(t, err)
	assert.Contains(t, string(csv), "sales,3,20")
}

func TestReportService_ResultChart(t *testing.T) {
	svc := newService()
	sess, err := svc.Upload(context.Background(), "sales.xlsx", salesWorkbook(t), "")
	require.NoError(t, err)
	id := sess.ID.String()

	chart, err := svc.ResultChart(id, analysis.Command{Op: analysis.OpGroupReduce, GroupColumn: "region", ValueColumn: "sales", Agg: "sum"})
	require.NoError(t, err)
	assert.Equal(t, charts.ChartBar, chart.Type)
	assert.Contains(t, string(chart.Data), "Sum of sales by region")

	_, err = svc.ResultChart(id, analysis.Command{Op: analysis.OpCompare, ColumnA: "sales", ColumnB: "ghost"})
	assert.True(t, errors.IsCode(err, errors.CodeInvalidColumn))

	_, err = svc.ResultChart("not-a-uuid", analysis.Command{Op: analysis.OpDescribe})
	assert.True(t, errors.IsCode(err, errors.CodeSessionNotFound))
}

func TestReportService_UnknownSession(t *testing.T) {
	svc := newService()

	for _, id := range []string{"not-a-uuid", "0190a9b2-0000-7000-8000-000000000000"} {
		_, err := svc.Session(id)
		assert.True(t, errors.IsCode(err, errors.CodeSessionNotFound), id)
		assert.True(t, errors.IsCode(svc.Close(id), errors.CodeSessionNotFound), id)
	}
}

func TestReportService_Close(t *testing.T) {
	svc := newService()
	sess, err := svc.Upload(context.Background(), "sales.xlsx", salesWorkbook(t), "")
	require.NoError(t, err)

	require.NoError(t, svc.Close(sess.ID.String()))
	_, err = svc.Session(sess.ID.String())
	assert.True(t, errors.IsCode(err, errors.CodeSessionNotFound))
}
