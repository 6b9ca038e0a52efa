package app

import (
	"context"
	"fmt"

	"tabreport/domain/core"
	"tabreport/internal"
	"tabreport/internal/analysis"
	"tabreport/internal/charts"
	"tabreport/internal/errors"
	"tabreport/internal/report"
	"tabreport/internal/session"
	"tabreport/ports"
)

// ReportService is the request/response boundary shared by the web UI, the
// JSON API and the CLI: every call resolves a session's table and runs one
// pure operation against it.
type ReportService struct {
	loader   ports.TableLoaderPort
	store    session.Store
	renderer ports.ChartRendererPort
	logger   *internal.Logger
}

// NewReportService creates a report service
func NewReportService(loader ports.TableLoaderPort, store session.Store, renderer ports.ChartRendererPort) *ReportService {
	return &ReportService{
		loader:   loader,
		store:    store,
		renderer: renderer,
		logger:   internal.DefaultLogger.With("ReportService"),
	}
}

// Upload loads a file into a new session.
func (s *ReportService) Upload(ctx context.Context, fileName string, data []byte, sheet string) (*session.Session, error) {
	loaded, err := s.loader.Load(ctx, fileName, data, sheet)
	if err != nil {
		s.logger.Warn("upload of %s failed: %v", fileName, err)
		return nil, err
	}
	return s.store.Create(uploadOf(loaded, data))
}

// Reupload replaces the file of an existing session. The previous table is
// discarded.
func (s *ReportService) Reupload(ctx context.Context, id, fileName string, data []byte, sheet string) (*session.Session, error) {
	sid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.Get(sid); err != nil {
		return nil, err
	}
	loaded, err := s.loader.Load(ctx, fileName, data, sheet)
	if err != nil {
		return nil, err
	}
	return s.store.Replace(sid, uploadOf(loaded, data))
}

// SelectSheet re-reads the session's file using another sheet.
func (s *ReportService) SelectSheet(ctx context.Context, id, sheet string) (*session.Session, error) {
	sess, err := s.Session(id)
	if err != nil {
		return nil, err
	}
	if sheet == sess.Sheet {
		return sess, nil
	}
	loaded, err := s.loader.Load(ctx, sess.FileName, sess.Source(), sheet)
	if err != nil {
		return nil, err
	}
	return s.store.SelectSheet(sess.ID, loaded.Sheet, loaded.Table)
}

// Session returns a live session.
func (s *ReportService) Session(id string) (*session.Session, error) {
	sid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return s.store.Get(sid)
}

// Close discards a session.
func (s *ReportService) Close(id string) error {
	sid, err := parseID(id)
	if err != nil {
		return err
	}
	return s.store.Delete(sid)
}

// Execute runs one aggregator command against the session's table.
func (s *ReportService) Execute(id string, cmd analysis.Command) (*analysis.Result, error) {
	sess, err := s.Session(id)
	if err != nil {
		return nil, err
	}
	result, err := analysis.Execute(sess.Table, cmd)
	if err != nil {
		s.logger.Debug("session %s: %s failed: %v", sess.ID, cmd.Op, err)
		return nil, err
	}
	return result, nil
}

// Chart renders a chart of the session's table.
func (s *ReportService) Chart(id string, req charts.ChartRequest) (*charts.Chart, error) {
	sess, err := s.Session(id)
	if err != nil {
		return nil, err
	}
	return s.renderer.Render(sess.Table, req)
}

// ResultChart runs a command and renders the chart of its result.
func (s *ReportService) ResultChart(id string, cmd analysis.Command) (*charts.Chart, error) {
	sess, err := s.Session(id)
	if err != nil {
		return nil, err
	}
	result, err := analysis.Execute(sess.Table, cmd)
	if err != nil {
		return nil, err
	}
	return s.renderer.RenderResult(sess.Table, result)
}

// Overview returns the headline metrics of the session's table.
func (s *ReportService) Overview(id string) (report.Overview, error) {
	sess, err := s.Session(id)
	if err != nil {
		return report.Overview{}, err
	}
	return report.NewOverview(sess.Table), nil
}

// Summary returns the markdown report of the session's table.
func (s *ReportService) Summary(id string) (string, error) {
	sess, err := s.Session(id)
	if err != nil {
		return "", err
	}
	return report.Summary(fmt.Sprintf("%s (%s)", sess.FileName, sess.Sheet), sess.Table), nil
}

// Export runs a command and returns its result as CSV.
func (s *ReportService) Export(id string, cmd analysis.Command) ([]byte, error) {
	result, err := s.Execute(id, cmd)
	if err != nil {
		return nil, err
	}
	return report.ResultCSV(result)
}

func parseID(id string) (core.SessionID, error) {
	sid, err := core.ParseSessionID(id)
	if err != nil {
		return "", errors.SessionNotFound(id)
	}
	return sid, nil
}

func uploadOf(loaded *ports.LoadedFile, data []byte) session.Upload {
	return session.Upload{
		FileName: loaded.FileName,
		Source:   data,
		Sheets:   loaded.Sheets,
		Sheet:    loaded.Sheet,
		Table:    loaded.Table,
	}
}
