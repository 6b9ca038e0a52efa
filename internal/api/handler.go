// Package api exposes report sessions as a JSON HTTP API.
package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"tabreport/app"
	"tabreport/domain/table"
	"tabreport/internal"
	"tabreport/internal/analysis"
	"tabreport/internal/charts"
	"tabreport/internal/errors"
	"tabreport/internal/report"
	"tabreport/internal/session"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Handler serves the session API
type Handler struct {
	service        *app.ReportService
	maxUploadBytes int64
	logger         *internal.Logger
}

// NewHandler creates an API handler. maxUploadBytes <= 0 disables the
// request size limit.
func NewHandler(service *app.ReportService, maxUploadBytes int64) *Handler {
	return &Handler{
		service:        service,
		maxUploadBytes: maxUploadBytes,
		logger:         internal.DefaultLogger.With("API"),
	}
}

// Routes returns the API router
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/sessions", func(r chi.Router) {
		r.Post("/", h.handleCreate)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.handleGet)
			r.Delete("/", h.handleDelete)
			r.Put("/file", h.handleReplace)
			r.Get("/sheets", h.handleSheets)
			r.Put("/sheet", h.handleSelectSheet)
			r.Post("/commands", h.handleCommand)
			r.Get("/charts/{type}", h.handleChart)
			r.Get("/summary", h.handleSummary)
		})
	})
	return r
}

type sessionView struct {
	*session.Session
	Overview report.Overview `json:"overview"`
	Schema   table.Schema    `json:"schema"`
}

func newSessionView(s *session.Session) sessionView {
	return sessionView{
		Session:  s,
		Overview: report.NewOverview(s.Table),
		Schema:   s.Table.Schema(),
	}
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	fileName, data, err := h.readUpload(w, r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	sess, err := h.service.Upload(r.Context(), fileName, data, r.FormValue("sheet"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/sessions/"+sess.ID.String())
	writeJSON(w, http.StatusCreated, newSessionView(sess))
}

func (h *Handler) handleReplace(w http.ResponseWriter, r *http.Request) {
	fileName, data, err := h.readUpload(w, r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	sess, err := h.service.Reupload(r.Context(), chi.URLParam(r, "id"), fileName, data, r.FormValue("sheet"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionView(sess))
}

func (h *Handler) readUpload(w http.ResponseWriter, r *http.Request) (string, []byte, error) {
	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+1<<20)
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		return "", nil, errors.InvalidInput("expected a multipart form with a file field")
	}
	f, header, err := r.FormFile("file")
	if err != nil {
		return "", nil, errors.InvalidInput("missing file field")
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", nil, errors.ParseError("failed to read upload", err)
	}
	return header.Filename, data, nil
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	sess, err := h.service.Session(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionView(sess))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Close(chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSheets(w http.ResponseWriter, r *http.Request) {
	sess, err := h.service.Session(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sheets":   sess.Sheets,
		"selected": sess.Sheet,
	})
}

func (h *Handler) handleSelectSheet(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Sheet string `json:"sheet"`
	}
	if err := decodeJSON(r, &body); err != nil {
		h.writeError(w, r, err)
		return
	}
	sess, err := h.service.SelectSheet(r.Context(), chi.URLParam(r, "id"), body.Sheet)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionView(sess))
}

// handleCommand runs one aggregator command. ?format=csv returns the
// result as CSV and ?format=chart returns the result chart instead of JSON.
func (h *Handler) handleCommand(w http.ResponseWriter, r *http.Request) {
	var cmd analysis.Command
	if err := decodeJSON(r, &cmd); err != nil {
		h.writeError(w, r, err)
		return
	}
	id := chi.URLParam(r, "id")

	if strings.EqualFold(r.URL.Query().Get("format"), "chart") {
		chart, err := h.service.ResultChart(id, cmd)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", chart.ContentType)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(chart.Data)
		return
	}

	if strings.EqualFold(r.URL.Query().Get("format"), "csv") {
		data, err := h.service.Export(id, cmd)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}

	result, err := h.service.Execute(id, cmd)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleChart(w http.ResponseWriter, r *http.Request) {
	req, err := charts.RequestFromQuery(chi.URLParam(r, "type"), r.URL.Query())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	chart, err := h.service.Chart(chi.URLParam(r, "id"), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", chart.ContentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(chart.Data)
}

// handleSummary returns the markdown report, or HTML with ?format=html.
func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	md, err := h.service.Summary(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if strings.EqualFold(r.URL.Query().Get("format"), "html") {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(report.ToHTML(md))
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, md)
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("%s %s: %v", r.Method, r.URL.Path, err)
	} else {
		h.logger.Debug("%s %s: %v", r.Method, r.URL.Path, err)
	}
	writeJSON(w, status, errorBody{Error: errorDetail{Code: errors.GetCode(err), Message: err.Error()}})
}

func decodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.InvalidInput("invalid JSON body: " + err.Error())
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
