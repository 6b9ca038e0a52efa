package container

import (
	"context"
	"fmt"

	"tabreport/adapters/datareadiness/coercer"
	"tabreport/adapters/excel"
	"tabreport/app"
	"tabreport/internal"
	"tabreport/internal/charts"
	"tabreport/internal/config"
	"tabreport/internal/session"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config

	Loader   *excel.TableLoader
	Store    *session.MemoryStore
	Renderer *charts.Renderer
	Service  *app.ReportService
}

// New creates a new dependency injection container
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	internal.DefaultLogger.SetLevel(internal.ParseLogLevel(cfg.LogLevel))

	loader := excel.NewTableLoader(ExcelConfig(cfg), CoercionConfig(cfg))
	store := session.NewMemoryStore(cfg.Session.TTL, cfg.Session.MaxSessions)
	renderer := charts.NewRenderer(charts.Config{
		WidthInches:   cfg.Charts.WidthInches,
		HeightInches:  cfg.Charts.HeightInches,
		Format:        cfg.Charts.Format,
		HistogramBins: cfg.Charts.HistogramBins,
	})

	return &Container{
		Config:   cfg,
		Loader:   loader,
		Store:    store,
		Renderer: renderer,
		Service:  app.NewReportService(app.NewLimitedLoader(loader, int64(cfg.Upload.Concurrency)), store, renderer),
	}, nil
}

// ExcelConfig maps upload limits onto the reader configuration.
func ExcelConfig(cfg *config.Config) excel.ExcelConfig {
	ec := excel.DefaultExcelConfig()
	ec.MaxBytes = cfg.Upload.MaxBytes
	ec.MaxRows = cfg.Upload.MaxRows
	return ec
}

// CoercionConfig maps the coercion switches onto the default rules.
func CoercionConfig(cfg *config.Config) coercer.CoercionConfig {
	cc := coercer.DefaultCoercionConfig()
	cc.AllowThousandsSeparators = cfg.Coercion.AllowThousandsSeparators
	cc.AllowParenNegatives = cfg.Coercion.AllowParenNegatives
	cc.AllowCurrencySymbols = cfg.Coercion.AllowCurrencySymbols
	return cc
}

// Shutdown releases every held session. Session expiry runs inside the
// store's cache, so there is no background work to stop.
func (c *Container) Shutdown(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.Store.Purge()
	return nil
}
