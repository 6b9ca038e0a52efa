package charts

import (
	"tabreport/domain/stats"
	"tabreport/domain/table"
	"tabreport/internal/analysis"
	"tabreport/internal/errors"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// RenderResult draws the chart that accompanies a command result. Group and
// compare results become bar charts, a trend becomes a line of values and
// deltas, and the remaining operations reuse the matching table chart.
func (r *Renderer) RenderResult(t *table.Table, result *analysis.Result) (*Chart, error) {
	if result == nil {
		return nil, errors.InvalidInput("no result to chart")
	}

	var (
		chartType ChartType
		p         *plot.Plot
		err       error
	)
	switch {
	case result.Group != nil:
		chartType = ChartBar
		p, err = groupBars(*result.Group)
	case result.Compare != nil:
		chartType = ChartBar
		p, err = compareBars(*result.Compare)
	case result.Trend != nil:
		chartType = ChartLine
		p, err = trendLines(t, *result.Trend)
	case result.ColumnStats != nil:
		chartType = ChartHistogram
		p, err = r.histogram(t, ChartRequest{Columns: []string{result.ColumnStats.Column}})
	case result.Correlation != nil:
		chartType = ChartHeatmap
		p, err = r.heatmap(t)
	case result.Description != nil:
		if len(result.Description.Columns) == 0 {
			return nil, errors.InsufficientData("no numeric columns to chart")
		}
		chartType = ChartBox
		p, err = r.box(t, ChartRequest{Columns: result.Description.Columns})
	default:
		return nil, errors.InvalidOperation(string(result.Op))
	}
	if err != nil {
		return nil, err
	}
	return r.chart(chartType, p)
}

func groupBars(g stats.GroupAggregation) (*plot.Plot, error) {
	if len(g.Rows) == 0 {
		return nil, errors.InsufficientData("group result has no rows")
	}
	values := make(plotter.Values, len(g.Rows))
	for i, row := range g.Rows {
		values[i] = row.Value.Or(0)
	}
	bars, err := plotter.NewBarChart(values, barWidth)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build group chart")
	}
	bars.Color = plotutil.Color(0)

	p := plot.New()
	p.Title.Text = aggLabel(g.Op) + " of " + g.ValueColumn + " by " + g.GroupColumn
	p.X.Label.Text = g.GroupColumn
	p.Y.Label.Text = aggLabel(g.Op)
	p.Add(bars)
	p.NominalX(g.Keys()...)
	return p, nil
}

func compareBars(c stats.CompareResult) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = c.ColumnA + " vs " + c.ColumnB

	series := []struct {
		label  string
		values plotter.Values
	}{
		{"sum", plotter.Values{c.SumA, c.SumB}},
		{"mean", plotter.Values{c.MeanA.Or(0), c.MeanB.Or(0)}},
	}
	for i, s := range series {
		bars, err := plotter.NewBarChart(s.values, barWidth)
		if err != nil {
			return nil, errors.Wrap(err, "failed to build compare chart")
		}
		bars.Color = plotutil.Color(i)
		bars.LineStyle.Width = vg.Length(0)
		bars.Offset = vg.Length(float64(i)-0.5) * barWidth
		p.Add(bars)
		p.Legend.Add(s.label, bars)
	}
	p.NominalX(c.ColumnA, c.ColumnB)
	p.Legend.Top = true
	return p, nil
}

func trendLines(t *table.Table, tr stats.TrendResult) (*plot.Plot, error) {
	values := rowSeries(t, tr.Column)
	deltas := make(plotter.XYs, 0, len(tr.Deltas))
	for i, d := range tr.Deltas {
		if v, ok := d.Float(); ok {
			deltas = append(deltas, plotter.XY{X: float64(i), Y: v})
		}
	}
	if len(values) == 0 {
		return nil, errors.InsufficientData("trend column has no values")
	}

	p := plot.New()
	p.Title.Text = "Trend of " + tr.Column
	p.X.Label.Text = "Row"
	p.Add(plotter.NewGrid())

	for i, s := range []struct {
		label string
		xys   plotter.XYs
	}{
		{tr.Column, values},
		{"delta", deltas},
	} {
		if len(s.xys) == 0 {
			continue
		}
		l, err := plotter.NewLine(s.xys)
		if err != nil {
			return nil, errors.Wrap(err, "failed to build trend chart")
		}
		l.Color = plotutil.Color(i)
		p.Add(l)
		p.Legend.Add(s.label, l)
	}
	p.Legend.Top = true
	return p, nil
}
