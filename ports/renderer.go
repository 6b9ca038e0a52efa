package ports

import (
	"tabreport/domain/table"
	"tabreport/internal/analysis"
	"tabreport/internal/charts"
)

// ChartRendererPort draws a chart from a table or from a command result.
type ChartRendererPort interface {
	Render(t *table.Table, req charts.ChartRequest) (*charts.Chart, error)
	RenderResult(t *table.Table, result *analysis.Result) (*charts.Chart, error)
}
