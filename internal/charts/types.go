package charts

import "strings"

// ChartType names a supported visualisation.
type ChartType string

const (
	ChartBar       ChartType = "bar"
	ChartLine      ChartType = "line"
	ChartPie       ChartType = "pie"
	ChartScatter   ChartType = "scatter"
	ChartBox       ChartType = "box"
	ChartHeatmap   ChartType = "heatmap"
	ChartCombined  ChartType = "combined"
	ChartHistogram ChartType = "histogram"
)

// ChartTypes lists every chart type in menu order.
var ChartTypes = []ChartType{ChartBar, ChartLine, ChartPie, ChartScatter, ChartBox, ChartHeatmap, ChartCombined, ChartHistogram}

// ParseChartType accepts a chart type name case-insensitively.
func ParseChartType(s string) (ChartType, bool) {
	ct := ChartType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range ChartTypes {
		if ct == known {
			return ct, true
		}
	}
	return "", false
}

// ChartRequest selects the chart type and the columns it draws. Fields a
// chart type does not use are ignored.
//
//	bar:       Columns, optional GroupBy and Agg (sum by default)
//	line, box: Columns
//	pie:       GroupBy, optional Value (row counts when empty)
//	scatter:   X, Y, optional ColorBy
//	combined:  Columns[0] as bars, Columns[1] as a line
//	histogram: Columns[0], optional Bins
//	heatmap:   every numeric column
type ChartRequest struct {
	Type    ChartType `json:"type"`
	Columns []string  `json:"columns,omitempty"`
	X       string    `json:"x,omitempty"`
	Y       string    `json:"y,omitempty"`
	GroupBy string    `json:"group_by,omitempty"`
	ColorBy string    `json:"color_by,omitempty"`
	Value   string    `json:"value,omitempty"`
	Agg     string    `json:"agg,omitempty"`
	Bins    int       `json:"bins,omitempty"`
}

// Chart is a rendered image.
type Chart struct {
	Type        ChartType `json:"type"`
	Format      string    `json:"format"`
	ContentType string    `json:"content_type"`
	Data        []byte    `json:"-"`
}

// Config sizes and encodes rendered charts.
type Config struct {
	WidthInches   float64
	HeightInches  float64
	Format        string
	HistogramBins int
}

// DefaultConfig matches the default chart settings of the web UI.
func DefaultConfig() Config {
	return Config{
		WidthInches:   8,
		HeightInches:  5,
		Format:        "svg",
		HistogramBins: 30,
	}
}

func contentType(format string) string {
	switch format {
	case "svg":
		return "image/svg+xml"
	case "png":
		return "image/png"
	case "jpg", "jpeg":
		return "image/jpeg"
	case "pdf":
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}
