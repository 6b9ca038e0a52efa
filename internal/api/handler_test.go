package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"tabreport/adapters/datareadiness/coercer"
	"tabreport/adapters/excel"
	"tabreport/app"
	"tabreport/internal/analysis"
	"tabreport/internal/charts"
	"tabreport/internal/errors"
	"tabreport/internal/session"
	"tabreport/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func newTestHandler() http.Handler {
	service := app.NewReportService(
		excel.NewTableLoader(excel.DefaultExcelConfig(), coercer.DefaultCoercionConfig()),
		session.NewMemoryStore(time.Hour, 0),
		charts.NewRenderer(charts.DefaultConfig()),
	)
	return NewHandler(service, 1<<20).Routes()
}

func uploadRequest(t *testing.T, method, target, fileName string, data []byte, sheet string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	if sheet != "" {
		require.NoError(t, w.WriteField("sheet", sheet))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(method, target, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func jsonRequest(t *testing.T, method, target string, v interface{}) *http.Request {
	t.Helper()
	body, err := json.Marshal(v)
	require.NoError(t, err)
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

type createdSession struct {
	ID       string   `json:"id"`
	FileName string   `json:"file_name"`
	Sheets   []string `json:"sheets"`
	Sheet    string   `json:"sheet"`
	Overview struct {
		Rows    int `json:"rows"`
		Columns int `json:"columns"`
		Cells   int `json:"cells"`
	} `json:"overview"`
}

func createRegionSession(t *testing.T, h http.Handler) createdSession {
	t.Helper()
	data, err := testkit.WorkbookBytes(
		testkit.Sheet{
			Name:    "Sales",
			Headers: []string{"region", "sales", "units"},
			Rows:    [][]string{{"North", "10", "1"}, {"South", "20", "3"}, {"North", "30", "2"}},
		},
		testkit.Sheet{
			Name:    "Costs",
			Headers: []string{"cost"},
			Rows:    [][]string{{"5"}, {"7"}},
		},
	)
	require.NoError(t, err)

	rec := serve(h, uploadRequest(t, http.MethodPost, "/api/sessions", "regions.xlsx", data, ""))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created createdSession
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "/api/sessions/"+created.ID, rec.Header().Get("Location"))
	return created
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorDetail {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body.Error
}

func TestCreateSession(t *testing.T) {
	h := newTestHandler()
	created := createRegionSession(t, h)

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "regions.xlsx", created.FileName)
	assert.Equal(t, []string{"Sales", "Costs"}, created.Sheets)
	assert.Equal(t, "Sales", created.Sheet)
	assert.Equal(t, 3, created.Overview.Rows)
	assert.Equal(t, 3, created.Overview.Columns)
	assert.Equal(t, 9, created.Overview.Cells)
}

func TestCreateSession_Errors(t *testing.T) {
	h := newTestHandler()

	t.Run("missing file", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/sessions", strings.NewReader("x"))
		rec := serve(h, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, errors.CodeInvalidInput, decodeError(t, rec).Code)
	})

	t.Run("unsupported format", func(t *testing.T) {
		rec := serve(h, uploadRequest(t, http.MethodPost, "/api/sessions", "notes.txt", []byte("hello"), ""))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, errors.CodeParseError, decodeError(t, rec).Code)
	})

	t.Run("unknown sheet", func(t *testing.T) {
		data := testkit.CSVBytes([]string{"a"}, [][]string{{"1"}})
		rec := serve(h, uploadRequest(t, http.MethodPost, "/api/sessions", "a.csv", data, "Other"))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestSessionLifecycle(t *testing.T) {
	h := newTestHandler()
	created := createRegionSession(t, h)
	base := "/api/sessions/" + created.ID

	rec := serve(h, httptest.NewRequest(http.MethodGet, base, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"kind":"numeric"`)

	rec = serve(h, httptest.NewRequest(http.MethodGet, base+"/sheets", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var sheets struct {
		Sheets   []string `json:"sheets"`
		Selected string   `json:"selected"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sheets))
	assert.Equal(t, []string{"Sales", "Costs"}, sheets.Sheets)
	assert.Equal(t, "Sales", sheets.Selected)

	rec = serve(h, jsonRequest(t, http.MethodPut, base+"/sheet", map[string]string{"sheet": "Costs"}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var switched createdSession
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &switched))
	assert.Equal(t, "Costs", switched.Sheet)
	assert.Equal(t, 2, switched.Overview.Rows)

	rec = serve(h, httptest.NewRequest(http.MethodDelete, base, nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = serve(h, httptest.NewRequest(http.MethodGet, base, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, errors.CodeSessionNotFound, decodeError(t, rec).Code)
}

func TestReplaceFile(t *testing.T) {
	h := newTestHandler()
	created := createRegionSession(t, h)

	data := testkit.CSVBytes([]string{"x"}, [][]string{{"1"}, {"2"}, {"3"}, {"4"}})
	rec := serve(h, uploadRequest(t, http.MethodPut, "/api/sessions/"+created.ID+"/file", "x.csv", data, ""))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var replaced createdSession
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &replaced))
	assert.Equal(t, created.ID, replaced.ID)
	assert.Equal(t, "x.csv", replaced.FileName)
	assert.Equal(t, 4, replaced.Overview.Rows)
}

func TestCommands(t *testing.T) {
	h := newTestHandler()
	created := createRegionSession(t, h)
	target := "/api/sessions/" + created.ID + "/commands"

	rec := serve(h, jsonRequest(t, http.MethodPost, target, analysis.Command{
		Op:          analysis.OpGroupReduce,
		GroupColumn: "region",
		ValueColumn: "sales",
		Agg:         "sum",
	}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result struct {
		Op    string `json:"op"`
		Group struct {
			Rows []struct {
				Key   string   `json:"key"`
				Value *float64 `json:"value"`
			} `json:"rows"`
		} `json:"group"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "group_reduce", result.Op)
	require.Len(t, result.Group.Rows, 2)
	assert.Equal(t, "North", result.Group.Rows[0].Key)
	assert.Equal(t, 40.0, *result.Group.Rows[0].Value)
	assert.Equal(t, "South", result.Group.Rows[1].Key)
	assert.Equal(t, 20.0, *result.Group.Rows[1].Value)
}

func TestCommands_CompareZeroMeanIsNull(t *testing.T) {
	h := newTestHandler()
	data := testkit.CSVBytes([]string{"a", "b"}, [][]string{{"1", "0"}, {"3", "0"}})
	rec := serve(h, uploadRequest(t, http.MethodPost, "/api/sessions", "ab.csv", data, ""))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created createdSession
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = serve(h, jsonRequest(t, http.MethodPost, "/api/sessions/"+created.ID+"/commands",
		analysis.Command{Op: analysis.OpCompare, ColumnA: "a", ColumnB: "b"}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"ratio":null`)
	assert.Contains(t, rec.Body.String(), `"mean_a":2`)
}

func TestCommands_CSV(t *testing.T) {
	h := newTestHandler()
	created := createRegionSession(t, h)

	rec := serve(h, jsonRequest(t, http.MethodPost, "/api/sessions/"+created.ID+"/commands?format=csv",
		analysis.Command{Op: analysis.OpGroupReduce, GroupColumn: "region", ValueColumn: "sales", Agg: "sum"}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, rec.Body.String(), "North,40,2")
}

func TestCommands_Chart(t *testing.T) {
	h := newTestHandler()
	created := createRegionSession(t, h)
	target := "/api/sessions/" + created.ID + "/commands?format=chart"

	rec := serve(h, jsonRequest(t, http.MethodPost, target,
		analysis.Command{Op: analysis.OpCompare, ColumnA: "sales", ColumnB: "units"}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "sales vs units")

	rec = serve(h, jsonRequest(t, http.MethodPost, target,
		analysis.Command{Op: analysis.OpTrend, Column: "region"}))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCommands_Errors(t *testing.T) {
	h := newTestHandler()
	created := createRegionSession(t, h)
	target := "/api/sessions/" + created.ID + "/commands"

	tests := []struct {
		name   string
		cmd    interface{}
		status int
		code   string
	}{
		{"unknown op", map[string]string{"op": "pivot"}, http.StatusUnprocessableEntity, errors.CodeInvalidOperation},
		{"unknown column", analysis.Command{Op: analysis.OpColumnDetail, Column: "profit"}, http.StatusUnprocessableEntity, errors.CodeInvalidColumn},
		{"bad agg", analysis.Command{Op: analysis.OpGroupReduce, GroupColumn: "region", ValueColumn: "sales", Agg: "median"}, http.StatusUnprocessableEntity, errors.CodeInvalidOperation},
		{"unknown field", map[string]string{"op": "describe", "colum": "x"}, http.StatusBadRequest, errors.CodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(h, jsonRequest(t, http.MethodPost, target, tt.cmd))
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Equal(t, tt.code, decodeError(t, rec).Code)
		})
	}
}

func TestChart(t *testing.T) {
	h := newTestHandler()
	created := createRegionSession(t, h)
	base := "/api/sessions/" + created.ID + "/charts/"

	rec := serve(h, httptest.NewRequest(http.MethodGet, base+"bar?columns=sales&columns=units", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "<svg")

	rec = serve(h, httptest.NewRequest(http.MethodGet, base+"radar", nil))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, errors.CodeInvalidOperation, decodeError(t, rec).Code)

	rec = serve(h, httptest.NewRequest(http.MethodGet, base+"histogram?bins=zero", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(h, httptest.NewRequest(http.MethodGet, base+"scatter?x=region&y=sales", nil))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestSummary(t *testing.T) {
	h := newTestHandler()
	created := createRegionSession(t, h)

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/api/sessions/"+created.ID+"/summary", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "# regions.xlsx (Sales)")

	rec = serve(h, httptest.NewRequest(http.MethodGet, "/api/sessions/"+created.ID+"/summary?format=html", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<table>")
}

func TestHealthz(t *testing.T) {
	rec := serve(newTestHandler(), httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestCommands_DescribeAndCorrelation(t *testing.T) {
	h := newTestHandler()
	created := createRegionSession(t, h)
	target := "/api/sessions/" + created.ID + "/commands"

	rec := serve(h, jsonRequest(t, http.MethodPost, target, analysis.Command{Op: analysis.OpDescribe}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := gjson.ParseBytes(rec.Body.Bytes())
	assert.Equal(t, []interface{}{"sales", "units"}, body.Get("description.columns").Value())
	assert.Equal(t, 60.0, body.Get("description.stats.sales.sum").Float())
	assert.Equal(t, 3, int(body.Get("description.stats.units.count").Int()))

	rec = serve(h, jsonRequest(t, http.MethodPost, target, analysis.Command{Op: analysis.OpCorrelation}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body = gjson.ParseBytes(rec.Body.Bytes())
	assert.Equal(t, 1.0, body.Get("correlation.values.0.0").Float())
	assert.Equal(t, body.Get("correlation.values.0.1").Float(), body.Get("correlation.values.1.0").Float())

	rec = serve(h, jsonRequest(t, http.MethodPost, target, analysis.Command{Op: analysis.OpTrend, Column: "sales"}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body = gjson.ParseBytes(rec.Body.Bytes())
	assert.Equal(t, gjson.Null, body.Get("trend.deltas.0").Type)
	assert.Equal(t, 10.0, body.Get("trend.mean_delta").Float())
}
