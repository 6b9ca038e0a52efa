package ui

import (
	"fmt"
	"html/template"
	"io"
	"net/http"

	"tabreport/domain/stats"
	"tabreport/internal/analysis"
	"tabreport/internal/charts"
	"tabreport/internal/errors"
	"tabreport/internal/report"
	"tabreport/internal/session"

	"github.com/gin-gonic/gin"
)

const previewRows = 10

type indexPage struct {
	Error string
}

type reportPage struct {
	Session      *session.Session
	Overview     report.Overview
	Columns      []string
	Preview      [][]string
	Description  template.HTML
	Correlation  template.HTML
	Aggregations []stats.AggregationOp
	ChartTypes   []charts.ChartType
	Error        string
}

type resultPage struct {
	Session   *session.Session
	Command   analysis.Command
	Body      template.HTML
	ExportURL string
	ChartURL  string
}

type errorPage struct {
	Status  int
	Code    string
	Message string
}

func (s *Server) handleIndex(c *gin.Context) {
	s.renderTemplate(c, http.StatusOK, "index.html", indexPage{})
}

func (s *Server) handleUpload(c *gin.Context) {
	fileName, data, err := s.readUpload(c)
	if err != nil {
		s.renderTemplate(c, errors.HTTPStatus(err), "index.html", indexPage{Error: err.Error()})
		return
	}

	sess, err := s.service.Upload(c.Request.Context(), fileName, data, c.PostForm("sheet"))
	if err != nil {
		s.renderTemplate(c, errors.HTTPStatus(err), "index.html", indexPage{Error: err.Error()})
		return
	}
	c.Redirect(http.StatusSeeOther, "/report/"+sess.ID.String())
}

func (s *Server) handleReupload(c *gin.Context) {
	id := c.Param("id")
	fileName, data, err := s.readUpload(c)
	if err != nil {
		s.renderError(c, err)
		return
	}
	if _, err := s.service.Reupload(c.Request.Context(), id, fileName, data, c.PostForm("sheet")); err != nil {
		s.renderError(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/report/"+id)
}

func (s *Server) readUpload(c *gin.Context) (string, []byte, error) {
	if s.config.MaxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.config.MaxUploadBytes+1<<20)
	}
	header, err := c.FormFile("file")
	if err != nil {
		return "", nil, errors.InvalidInput("choose an Excel or CSV file to upload")
	}
	f, err := header.Open()
	if err != nil {
		return "", nil, errors.ParseError("failed to open upload", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", nil, errors.ParseError("failed to read upload", err)
	}
	return header.Filename, data, nil
}

func (s *Server) handleReport(c *gin.Context) {
	page, err := s.reportPage(c.Param("id"))
	if err != nil {
		s.renderError(c, err)
		return
	}
	s.renderTemplate(c, http.StatusOK, "report.html", page)
}

func (s *Server) reportPage(id string) (*reportPage, error) {
	sess, err := s.service.Session(id)
	if err != nil {
		return nil, err
	}

	page := &reportPage{
		Session:      sess,
		Overview:     report.NewOverview(sess.Table),
		Columns:      sess.Table.Columns(),
		Preview:      sess.Table.Head(previewRows),
		Description:  template.HTML(report.ToHTML(report.DescriptionMarkdown(analysis.Describe(sess.Table)))),
		Aggregations: stats.AggregationOps,
		ChartTypes:   charts.ChartTypes,
	}
	if m, err := analysis.Correlation(sess.Table); err == nil {
		page.Correlation = template.HTML(report.ToHTML(report.CorrelationMarkdown(m)))
	}
	return page, nil
}

func (s *Server) handleSelectSheet(c *gin.Context) {
	id := c.Param("id")
	if _, err := s.service.SelectSheet(c.Request.Context(), id, c.PostForm("sheet")); err != nil {
		s.renderError(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/report/"+id)
}

func (s *Server) handleCommand(c *gin.Context) {
	id := c.Param("id")
	cmd := commandFrom(c.PostForm)

	result, err := s.service.Execute(id, cmd)
	if err != nil {
		s.renderError(c, err)
		return
	}
	sess, err := s.service.Session(id)
	if err != nil {
		s.renderError(c, err)
		return
	}

	s.renderTemplate(c, http.StatusOK, "result.html", resultPage{
		Session:   sess,
		Command:   cmd,
		Body:      template.HTML(report.ToHTML(report.ResultMarkdown(result))),
		ExportURL: fmt.Sprintf("/report/%s/export?%s", sess.ID, commandQuery(cmd)),
		ChartURL:  fmt.Sprintf("/report/%s/result-chart?%s", sess.ID, commandQuery(cmd)),
	})
}

func (s *Server) handleResultChart(c *gin.Context) {
	chart, err := s.service.ResultChart(c.Param("id"), commandFrom(c.Query))
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, chart.ContentType, chart.Data)
}

func (s *Server) handleChart(c *gin.Context) {
	req, err := charts.RequestFromQuery(c.Query("type"), c.Request.URL.Query())
	if err != nil {
		s.renderError(c, err)
		return
	}
	chart, err := s.service.Chart(c.Param("id"), req)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, chart.ContentType, chart.Data)
}

func (s *Server) handleExport(c *gin.Context) {
	cmd := commandFrom(c.Query)
	data, err := s.service.Export(c.Param("id"), cmd)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.csv"`, cmd.Op))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

func (s *Server) handleClose(c *gin.Context) {
	if err := s.service.Close(c.Param("id")); err != nil && !errors.IsCode(err, errors.CodeSessionNotFound) {
		s.renderError(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) renderError(c *gin.Context, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	s.renderTemplate(c, status, "error.html", errorPage{
		Status:  status,
		Code:    errors.GetCode(err),
		Message: err.Error(),
	})
}

