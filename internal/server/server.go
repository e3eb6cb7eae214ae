// Package server exposes the analysis and report API over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/geopulse/geopulse/internal/config"
	"github.com/geopulse/geopulse/pkg/analyzer"
	"github.com/geopulse/geopulse/pkg/report"
	"github.com/geopulse/geopulse/pkg/reporter"
)

// Server wires the HTTP layer around the analyzer and report service.
type Server struct {
	cfg      config.ServerConfig
	analyzer *analyzer.Analyzer
	reports  *report.Service
	reporter *reporter.Reporter
	log      zerolog.Logger
	router   *gin.Engine
	limiter  *rateLimiter
}

// New creates the server and registers all routes.
func New(cfg config.ServerConfig, a *analyzer.Analyzer, reports *report.Service, rend *reporter.Reporter, log zerolog.Logger) *Server {
	s := &Server{
		cfg:      cfg,
		analyzer: a,
		reports:  reports,
		reporter: rend,
		log:      log,
	}
	s.router = s.buildRouter()
	return s
}

func (s *Server) buildRouter() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())
	r.Use(observability(s.log))

	r.GET("/healthz", s.handleHealthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	s.limiter = newRateLimiter(s.cfg.RequestsPerSecond, s.cfg.RateBurst)

	api := r.Group("/api/v1")
	api.Use(s.limiter.middleware())
	{
		api.POST("/analyze", s.handleAnalyze)

		api.POST("/reports", s.handleCreateReport)
		api.GET("/reports", s.handleListReports)
		api.GET("/reports/:id", s.handleGetReport)
		api.DELETE("/reports/:id", s.handleDeleteReport)
		api.POST("/reports/:id/views", s.handleTrackView)
		api.GET("/reports/:id/analytics", s.handleReportAnalytics)
		api.PUT("/reports/:id/settings", s.handleUpdateSettings)
		api.GET("/reports/:id/share", s.handleShareData)
	}

	r.GET("/reports/:id", s.handleRenderReport)

	return r
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases background resources. The server cannot be reused after.
func (s *Server) Close() {
	s.limiter.close()
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	defer s.Close()
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.WriteTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		s.log.Info().Msg("server stopped")
		return nil
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	}
}
