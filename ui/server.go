package ui

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"time"

	"tabreport/app"
	"tabreport/internal"

	"github.com/gin-gonic/gin"
)

// Config holds web server configuration
type Config struct {
	Port           string
	GinMode        string
	MaxUploadBytes int64
}

// Server is the interactive report web UI
type Server struct {
	router    *gin.Engine
	service   *app.ReportService
	templates *template.Template
	config    Config
	logger    *internal.Logger
	http      *http.Server
}

// NewServer creates the web server and registers its routes
func NewServer(service *app.ReportService, config Config) (*Server, error) {
	if config.GinMode != "" {
		gin.SetMode(config.GinMode)
	}

	templates, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	if config.MaxUploadBytes > 0 {
		router.MaxMultipartMemory = config.MaxUploadBytes
	}

	s := &Server{
		router:    router,
		service:   service,
		templates: templates,
		config:    config,
		logger:    internal.DefaultLogger.With("UI"),
	}
	s.setupRoutes()
	return s, nil
}

func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleIndex)
	s.router.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	s.router.POST("/upload", s.handleUpload)

	r := s.router.Group("/report/:id")
	r.GET("", s.handleReport)
	r.POST("/upload", s.handleReupload)
	r.POST("/sheet", s.handleSelectSheet)
	r.POST("/command", s.handleCommand)
	r.GET("/chart", s.handleChart)
	r.GET("/result-chart", s.handleResultChart)
	r.GET("/export", s.handleExport)
	r.POST("/close", s.handleClose)
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	addr := ":" + s.config.Port
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("web UI listening on %s", addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}
