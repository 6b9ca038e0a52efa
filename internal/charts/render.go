// Package charts maps a chart request and a table to an image rendered
// with gonum/plot. Every chart is derived from aggregator output; nothing
// here holds state between calls.
package charts

import (
	"bytes"
	"fmt"
	"image/color"

	"tabreport/domain/stats"
	"tabreport/domain/table"
	"tabreport/internal"
	"tabreport/internal/analysis"
	"tabreport/internal/errors"

	"gonum.org/v1/gonum/stat/distuv"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

var barWidth = vg.Points(18)

// Renderer draws charts with a fixed size and output format.
type Renderer struct {
	config Config
	logger *internal.Logger
}

// NewRenderer creates a renderer, filling zero config fields with defaults.
func NewRenderer(config Config) *Renderer {
	def := DefaultConfig()
	if config.WidthInches <= 0 {
		config.WidthInches = def.WidthInches
	}
	if config.HeightInches <= 0 {
		config.HeightInches = def.HeightInches
	}
	if config.Format == "" {
		config.Format = def.Format
	}
	if config.HistogramBins <= 0 {
		config.HistogramBins = def.HistogramBins
	}
	return &Renderer{config: config, logger: internal.DefaultLogger.With("Charts")}
}

// Render builds the requested chart from t and encodes it.
func (r *Renderer) Render(t *table.Table, req ChartRequest) (*Chart, error) {
	chartType, ok := ParseChartType(string(req.Type))
	if !ok {
		return nil, errors.InvalidOperation(string(req.Type))
	}

	var (
		p   *plot.Plot
		err error
	)
	switch chartType {
	case ChartBar:
		p, err = r.bar(t, req)
	case ChartLine:
		p, err = r.line(t, req)
	case ChartPie:
		p, err = r.pie(t, req)
	case ChartScatter:
		p, err = r.scatter(t, req)
	case ChartBox:
		p, err = r.box(t, req)
	case ChartHeatmap:
		p, err = r.heatmap(t)
	case ChartCombined:
		p, err = r.combined(t, req)
	case ChartHistogram:
		p, err = r.histogram(t, req)
	}
	if err != nil {
		return nil, err
	}

	return r.chart(chartType, p)
}

func (r *Renderer) chart(chartType ChartType, p *plot.Plot) (*Chart, error) {
	data, err := r.encode(p)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("rendered %s chart (%d bytes)", chartType, len(data))

	return &Chart{
		Type:        chartType,
		Format:      r.config.Format,
		ContentType: contentType(r.config.Format),
		Data:        data,
	}, nil
}

func (r *Renderer) encode(p *plot.Plot) ([]byte, error) {
	w, err := p.WriterTo(vg.Length(r.config.WidthInches)*vg.Inch, vg.Length(r.config.HeightInches)*vg.Inch, r.config.Format)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode chart")
	}
	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		return nil, errors.Wrap(err, "failed to write chart")
	}
	return buf.Bytes(), nil
}

// numericColumns validates a selection of numeric columns. An empty
// selection means every numeric column.
func numericColumns(t *table.Table, columns []string, min int) ([]string, error) {
	if len(columns) == 0 {
		columns = t.Schema().NumericColumns()
	}
	for _, name := range columns {
		kind, ok := t.Kind(name)
		if !ok {
			return nil, errors.InvalidColumn(name, "")
		}
		if kind != table.KindNumeric {
			return nil, errors.InvalidColumn(name, "is not numeric")
		}
	}
	if len(columns) < min {
		return nil, errors.InsufficientData(fmt.Sprintf("chart needs at least %d numeric column(s)", min))
	}
	return columns, nil
}

func (r *Renderer) bar(t *table.Table, req ChartRequest) (*plot.Plot, error) {
	columns, err := numericColumns(t, req.Columns, 1)
	if err != nil {
		return nil, err
	}
	op := stats.OpSum
	if req.Agg != "" {
		parsed, ok := stats.ParseAggregationOp(req.Agg)
		if !ok {
			return nil, errors.InvalidOperation(req.Agg)
		}
		op = parsed
	}

	p := plot.New()
	p.Y.Label.Text = aggLabel(op)

	if req.GroupBy == "" {
		totals := make(plotter.Values, len(columns))
		for i, name := range columns {
			cs, err := analysis.ColumnDetail(t, name)
			if err != nil {
				return nil, err
			}
			totals[i] = columnAggregate(cs, op)
		}
		bars, err := plotter.NewBarChart(totals, barWidth)
		if err != nil {
			return nil, errors.Wrap(err, "failed to build bar chart")
		}
		bars.Color = plotutil.Color(0)
		p.Add(bars)
		p.NominalX(columns...)
		p.Title.Text = aggLabel(op) + " per column"
		return p, nil
	}

	var keys []string
	for i, name := range columns {
		g, err := analysis.GroupReduce(t, req.GroupBy, name, op)
		if err != nil {
			return nil, err
		}
		if keys == nil {
			keys = g.Keys()
		}
		values := make(plotter.Values, len(g.Rows))
		for j, row := range g.Rows {
			values[j] = row.Value.Or(0)
		}
		bars, err := plotter.NewBarChart(values, barWidth)
		if err != nil {
			return nil, errors.Wrap(err, "failed to build bar chart")
		}
		bars.Color = plotutil.Color(i)
		bars.LineStyle.Width = vg.Length(0)
		bars.Offset = vg.Length(float64(i)-float64(len(columns)-1)/2) * barWidth
		p.Add(bars)
		p.Legend.Add(name, bars)
	}
	p.NominalX(keys...)
	p.X.Label.Text = req.GroupBy
	p.Title.Text = aggLabel(op) + " by " + req.GroupBy
	p.Legend.Top = true
	return p, nil
}

// columnAggregate applies op to a whole column. Undefined values plot as 0.
func columnAggregate(cs stats.ColumnStats, op stats.AggregationOp) float64 {
	switch op {
	case stats.OpMean:
		return cs.Mean.Or(0)
	case stats.OpMax:
		return cs.Max.Or(0)
	case stats.OpMin:
		return cs.Min.Or(0)
	case stats.OpCount:
		return float64(cs.Count)
	default:
		return cs.Sum
	}
}

func aggLabel(op stats.AggregationOp) string {
	switch op {
	case stats.OpMean:
		return "Mean"
	case stats.OpMax:
		return "Max"
	case stats.OpMin:
		return "Min"
	case stats.OpCount:
		return "Count"
	default:
		return "Sum"
	}
}

func (r *Renderer) line(t *table.Table, req ChartRequest) (*plot.Plot, error) {
	columns, err := numericColumns(t, req.Columns, 1)
	if err != nil {
		return nil, err
	}

	p := plot.New()
	p.Title.Text = "Values by row"
	p.X.Label.Text = "Row"
	p.Add(plotter.NewGrid())

	for i, name := range columns {
		xys := rowSeries(t, name)
		if len(xys) == 0 {
			continue
		}
		l, err := plotter.NewLine(xys)
		if err != nil {
			return nil, errors.Wrap(err, "failed to build line chart")
		}
		l.Color = plotutil.Color(i)
		p.Add(l)
		p.Legend.Add(name, l)
	}
	p.Legend.Top = true
	return p, nil
}

// rowSeries pairs each present value of a column with its row index.
func rowSeries(t *table.Table, column string) plotter.XYs {
	cells, _ := t.Column(column)
	xys := make(plotter.XYs, 0, len(cells))
	for i, c := range cells {
		if !c.Missing {
			xys = append(xys, plotter.XY{X: float64(i), Y: c.Number})
		}
	}
	return xys
}

func (r *Renderer) pie(t *table.Table, req ChartRequest) (*plot.Plot, error) {
	if req.GroupBy == "" {
		return nil, errors.InvalidInput("pie chart needs a category column")
	}

	var (
		g   stats.GroupAggregation
		err error
	)
	if req.Value == "" {
		g, err = analysis.GroupReduce(t, req.GroupBy, req.GroupBy, stats.OpCount)
	} else {
		g, err = analysis.GroupReduce(t, req.GroupBy, req.Value, stats.OpSum)
	}
	if err != nil {
		return nil, err
	}

	pc := &pieChart{
		values: make([]float64, len(g.Rows)),
		colors: make([]color.Color, len(g.Rows)),
	}
	total := 0.0
	p := plot.New()
	for i, row := range g.Rows {
		v := row.Value.Or(0)
		if v < 0 {
			v = 0
		}
		pc.values[i] = v
		pc.colors[i] = plotutil.Color(i)
		total += v
		p.Legend.Add(row.Key, swatch{color: pc.colors[i]})
	}
	if total <= 0 {
		return nil, errors.InsufficientData("pie chart needs a positive total")
	}

	p.Title.Text = req.GroupBy
	if req.Value != "" {
		p.Title.Text = req.Value + " by " + req.GroupBy
	}
	p.HideAxes()
	p.Legend.Left = true
	p.Legend.Top = true
	p.Add(pc)
	return p, nil
}

func (r *Renderer) scatter(t *table.Table, req ChartRequest) (*plot.Plot, error) {
	if _, err := numericColumns(t, []string{req.X, req.Y}, 2); err != nil {
		return nil, err
	}

	xs, _ := t.Column(req.X)
	ys, _ := t.Column(req.Y)

	p := plot.New()
	p.Title.Text = req.Y + " vs " + req.X
	p.X.Label.Text = req.X
	p.Y.Label.Text = req.Y
	p.Add(plotter.NewGrid())

	if req.ColorBy == "" {
		xys := make(plotter.XYs, 0, len(xs))
		for i := range xs {
			if !xs[i].Missing && !ys[i].Missing {
				xys = append(xys, plotter.XY{X: xs[i].Number, Y: ys[i].Number})
			}
		}
		s, err := plotter.NewScatter(xys)
		if err != nil {
			return nil, errors.Wrap(err, "failed to build scatter chart")
		}
		s.GlyphStyle.Color = plotutil.Color(0)
		p.Add(s)
		return p, nil
	}

	if !t.HasColumn(req.ColorBy) {
		return nil, errors.InvalidColumn(req.ColorBy, "")
	}
	labels, missing, _ := t.Labels(req.ColorBy)

	var order []string
	groups := make(map[string]plotter.XYs)
	for i := range xs {
		if xs[i].Missing || ys[i].Missing {
			continue
		}
		key := labels[i]
		if missing[i] {
			key = analysis.NoneGroupKey
		}
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], plotter.XY{X: xs[i].Number, Y: ys[i].Number})
	}

	for i, key := range order {
		s, err := plotter.NewScatter(groups[key])
		if err != nil {
			return nil, errors.Wrap(err, "failed to build scatter chart")
		}
		s.GlyphStyle.Color = plotutil.Color(i)
		s.GlyphStyle.Shape = plotutil.Shape(i)
		p.Add(s)
		p.Legend.Add(key, s)
	}
	p.Legend.Top = true
	return p, nil
}

func (r *Renderer) box(t *table.Table, req ChartRequest) (*plot.Plot, error) {
	columns, err := numericColumns(t, req.Columns, 1)
	if err != nil {
		return nil, err
	}

	p := plot.New()
	p.Title.Text = "Distribution"
	names := make([]string, 0, len(columns))
	for _, name := range columns {
		values, _ := t.Numbers(name)
		if len(values) == 0 {
			continue
		}
		b, err := plotter.NewBoxPlot(vg.Points(24), float64(len(names)), plotter.Values(values))
		if err != nil {
			return nil, errors.Wrap(err, "failed to build box plot")
		}
		p.Add(b)
		names = append(names, name)
	}
	if len(names) == 0 {
		return nil, errors.InsufficientData("selected columns have no values")
	}
	p.NominalX(names...)
	return p, nil
}

// correlationGrid adapts a CorrelationMatrix to plotter.GridXYZ. Row 0 is
// drawn at the top.
type correlationGrid struct {
	m stats.CorrelationMatrix
}

func (g correlationGrid) Dims() (c, r int) { return len(g.m.Columns), len(g.m.Columns) }
func (g correlationGrid) Z(c, r int) float64 {
	n := len(g.m.Columns)
	return g.m.Values[n-1-r][c].OrNaN()
}
func (g correlationGrid) X(c int) float64 { return float64(c) }
func (g correlationGrid) Y(r int) float64 { return float64(r) }

func (r *Renderer) heatmap(t *table.Table) (*plot.Plot, error) {
	m, err := analysis.Correlation(t)
	if err != nil {
		return nil, err
	}

	pal := moreland.SmoothBlueRed()
	pal.SetMin(-1)
	pal.SetMax(1)

	h := plotter.NewHeatMap(correlationGrid{m: m}, pal.Palette(255))
	h.Min, h.Max = -1, 1
	h.NaN = color.Gray{Y: 200}

	p := plot.New()
	p.Title.Text = "Correlation"
	p.Add(h)

	reversed := make([]string, len(m.Columns))
	for i, name := range m.Columns {
		reversed[len(m.Columns)-1-i] = name
	}
	p.NominalX(m.Columns...)
	p.NominalY(reversed...)
	return p, nil
}

func (r *Renderer) combined(t *table.Table, req ChartRequest) (*plot.Plot, error) {
	columns, err := numericColumns(t, req.Columns, 2)
	if err != nil {
		return nil, err
	}
	barCol, lineCol := columns[0], columns[1]

	barValues := make(plotter.Values, t.Rows())
	cells, _ := t.Column(barCol)
	for i, c := range cells {
		if !c.Missing {
			barValues[i] = c.Number
		}
	}
	bars, err := plotter.NewBarChart(barValues, barWidth)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build combined chart")
	}
	bars.Color = plotutil.Color(0)
	bars.LineStyle.Width = vg.Length(0)

	p := plot.New()
	p.Title.Text = barCol + " and " + lineCol
	p.X.Label.Text = "Row"
	p.Add(bars)
	p.Legend.Add(barCol, bars)

	if xys := rowSeries(t, lineCol); len(xys) > 0 {
		l, pts, err := plotter.NewLinePoints(xys)
		if err != nil {
			return nil, errors.Wrap(err, "failed to build combined chart")
		}
		l.Color = plotutil.Color(1)
		pts.Color = plotutil.Color(1)
		p.Add(l, pts)
		p.Legend.Add(lineCol, l, pts)
	}
	p.Legend.Top = true
	return p, nil
}

func (r *Renderer) histogram(t *table.Table, req ChartRequest) (*plot.Plot, error) {
	columns, err := numericColumns(t, req.Columns, 1)
	if err != nil {
		return nil, err
	}
	column := columns[0]

	values, _ := t.Numbers(column)
	if len(values) == 0 {
		return nil, errors.InsufficientData(fmt.Sprintf("column %q has no values", column))
	}

	bins := req.Bins
	if bins <= 0 {
		bins = r.config.HistogramBins
	}
	h, err := plotter.NewHist(plotter.Values(values), bins)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build histogram")
	}
	h.FillColor = plotutil.Color(0)

	p := plot.New()
	p.Title.Text = "Distribution of " + column
	p.X.Label.Text = column
	p.Y.Label.Text = "Count"
	p.Add(h)

	if curve := normalCurve(t, column, len(values), h); curve != nil {
		p.Add(curve)
		p.Legend.Add("normal fit", curve)
	}
	return p, nil
}

// normalCurve scales the normal density with the column's mean and sample
// std to histogram counts. nil when the column has no spread.
func normalCurve(t *table.Table, column string, n int, h *plotter.Histogram) *plotter.Function {
	cs, err := analysis.ColumnDetail(t, column)
	if err != nil || len(h.Bins) == 0 {
		return nil
	}
	mean, okMean := cs.Mean.Float()
	std, okStd := cs.Std.Float()
	if !okMean || !okStd || std <= 0 {
		return nil
	}

	dist := distuv.Normal{Mu: mean, Sigma: std}
	scale := float64(n) * h.Width
	f := plotter.NewFunction(func(x float64) float64 { return scale * dist.Prob(x) })
	f.XMin = h.Bins[0].Min
	f.XMax = h.Bins[len(h.Bins)-1].Max
	f.Samples = 100
	f.Color = plotutil.Color(1)
	f.Width = vg.Points(1.5)
	return f
}
