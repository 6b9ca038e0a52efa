package charts

import (
	"net/url"
	"testing"

	"tabreport/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestFromQuery(t *testing.T) {
	q, err := url.ParseQuery("columns=a&columns=b&columns=c&columns=&group_by=region&agg=+mean+&bins=12&x=+p+")
	require.NoError(t, err)

	req, err := RequestFromQuery("bar", q)
	require.NoError(t, err)
	assert.Equal(t, ChartRequest{
		Type:    ChartBar,
		Columns: []string{"a", "b", "c"},
		GroupBy: "region",
		Agg:     "mean",
		X:       "p",
		Bins:    12,
	}, req)
}

func TestRequestFromQuery_BadBins(t *testing.T) {
	_, err := RequestFromQuery("histogram", url.Values{"bins": {"-3"}})
	assert.True(t, errors.IsCode(err, errors.CodeInvalidInput))
}

func TestRequestFromQuery_ColumnNamesWithCommas(t *testing.T) {
	q := url.Values{"columns": {"Revenue, VND", "Cost"}}

	req, err := RequestFromQuery("bar", q)
	require.NoError(t, err)
	assert.Equal(t, []string{"Revenue, VND", "Cost"}, req.Columns)
}
