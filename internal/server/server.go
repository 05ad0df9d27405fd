// Package server exposes the reconciliation service over HTTP.
//
// All routes live under /api. Uploads are multipart forms with the CSV in
// the "file" field. Failures are answered with a JSON body of the form
// {"detail": "..."} and a status derived from the error category.
package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Rupa-sharon/Financial-Reconciliation-Engine/internal/models"
	"github.com/Rupa-sharon/Financial-Reconciliation-Engine/internal/reconciler"
	"github.com/Rupa-sharon/Financial-Reconciliation-Engine/internal/reporter"
	"github.com/Rupa-sharon/Financial-Reconciliation-Engine/internal/store"
	"github.com/Rupa-sharon/Financial-Reconciliation-Engine/pkg/logger"
)

// Service is the reconciliation workflow the handlers drive
type Service interface {
	UploadTransactions(ctx context.Context, filename string, r io.Reader) (*reconciler.UploadResult, error)
	UploadGLEntries(ctx context.Context, filename string, r io.Reader) (*reconciler.UploadResult, error)
	RunReconciliation(ctx context.Context) (*reconciler.RunSummary, error)
	RunAnomalyDetection(ctx context.Context) (*reconciler.DetectionSummary, error)
	DashboardStats(ctx context.Context) (*models.DashboardStats, error)
	ListReconciliationResults(ctx context.Context, filter store.ResultFilter) ([]models.ReconciliationResult, error)
	ListAnomalies(ctx context.Context, method models.DetectionMethod) ([]models.AnomalyResult, error)
	ListQualityReports(ctx context.Context) ([]*models.DataQualityReport, error)
	ExportReconciliation(ctx context.Context, format reporter.OutputFormat, w io.Writer) error
}

var _ Service = (*reconciler.Service)(nil)

// Config holds the HTTP listener settings
type Config struct {
	Addr            string        `json:"addr" mapstructure:"addr"`
	CORSOrigins     []string      `json:"cors_origins" mapstructure:"cors-origins"`
	MaxUploadBytes  int64         `json:"max_upload_bytes" mapstructure:"max-upload-bytes"`
	ReadTimeout     time.Duration `json:"read_timeout" mapstructure:"read-timeout"`
	WriteTimeout    time.Duration `json:"write_timeout" mapstructure:"write-timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout" mapstructure:"shutdown-timeout"`
}

// DefaultConfig returns the default listener settings
func DefaultConfig() *Config {
	return &Config{
		Addr:            ":8000",
		CORSOrigins:     []string{"*"},
		MaxUploadBytes:  32 << 20,
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    5 * time.Minute,
		ShutdownTimeout: 10 * time.Second,
	}
}

// Validate checks the listener settings
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("server address cannot be empty")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("max upload size must be positive, got %d", c.MaxUploadBytes)
	}
	if c.ReadTimeout < 0 || c.WriteTimeout < 0 || c.ShutdownTimeout < 0 {
		return fmt.Errorf("timeouts cannot be negative")
	}
	return nil
}

// Server serves the reconciliation API
type Server struct {
	config  *Config
	svc     Service
	logger  logger.Logger
	handler http.Handler
}

// New creates a server for svc. A nil config uses the defaults.
func New(svc Service, config *Config) (*Server, error) {
	if svc == nil {
		return nil, fmt.Errorf("service is required")
	}
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid server configuration: %w", err)
	}

	s := &Server{
		config: config,
		svc:    svc,
		logger: logger.WithComponent("server"),
	}
	s.handler = s.routes()
	return s, nil
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run listens on the configured address until ctx is cancelled, then shuts
// down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.config.Addr,
		Handler:      s.handler,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", s.config.Addr).Info("Listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
