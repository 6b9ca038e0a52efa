package charts

import (
	"net/url"
	"strconv"
	"strings"

	"tabreport/internal/errors"
)

// RequestFromQuery builds a request from URL query parameters. Columns are
// repeated parameters (columns=a&columns=b); names may contain commas.
func RequestFromQuery(chartType string, q url.Values) (ChartRequest, error) {
	req := ChartRequest{
		Type:    ChartType(chartType),
		X:       strings.TrimSpace(q.Get("x")),
		Y:       strings.TrimSpace(q.Get("y")),
		GroupBy: strings.TrimSpace(q.Get("group_by")),
		ColorBy: strings.TrimSpace(q.Get("color_by")),
		Value:   strings.TrimSpace(q.Get("value")),
		Agg:     strings.TrimSpace(q.Get("agg")),
	}
	for _, name := range q["columns"] {
		if name = strings.TrimSpace(name); name != "" {
			req.Columns = append(req.Columns, name)
		}
	}
	if raw := strings.TrimSpace(q.Get("bins")); raw != "" {
		bins, err := strconv.Atoi(raw)
		if err != nil || bins <= 0 {
			return ChartRequest{}, errors.InvalidInput("bins must be a positive integer")
		}
		req.Bins = bins
	}
	return req, nil
}
