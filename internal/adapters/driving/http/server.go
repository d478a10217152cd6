// Package http is the thin HTTP driving adapter for NET-EST's submit /
// annotate / export surface from spec.md §6, built on the teacher's
// net/http.ServeMux + no-router-library convention (server.go/handlers.go/
// middleware.go split, Pinger health-check interface, writeJSON/writeError
// helpers).
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/netest/netest-core/internal/adapters/driven/export"
	"github.com/netest/netest-core/internal/core/ports/driven"
	"github.com/netest/netest-core/internal/core/ports/driving"
)

// Pinger is a simple health check interface.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server is NET-EST's HTTP surface: analysis submission, annotation review
// and export.
type Server struct {
	httpServer *http.Server
	router     *http.ServeMux
	version    string

	analysisService   driving.AnalysisService
	annotationService driving.AnnotationService
	exportSigner      *export.Signer

	taskQueue driven.TaskQueue // optional, for /health's queue health check
	store     Pinger           // AnnotationStore health check
}

// Config holds server configuration.
type Config struct {
	Host    string
	Port    int
	Version string
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Host:    "0.0.0.0",
		Port:    8080,
		Version: "dev",
	}
}

// NewServer creates the HTTP server and registers its routes.
func NewServer(
	cfg Config,
	analysisService driving.AnalysisService,
	annotationService driving.AnnotationService,
	exportSigner *export.Signer,
	taskQueue driven.TaskQueue,
	store Pinger,
) *Server {
	s := &Server{
		router:            http.NewServeMux(),
		version:           cfg.Version,
		analysisService:   analysisService,
		annotationService: annotationService,
		exportSigner:      exportSigner,
		taskQueue:         taskQueue,
		store:             store,
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	logging := NewLoggingMiddleware()

	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /ready", s.handleReady)
	s.router.HandleFunc("GET /version", s.handleVersion)

	s.router.Handle("POST /api/v1/analyze", logging.Wrap(http.HandlerFunc(s.handleAnalyze)))
	s.router.Handle("POST /api/v1/sessions", logging.Wrap(http.HandlerFunc(s.handleSubmit)))
	s.router.Handle("GET /api/v1/sessions/{id}/report", logging.Wrap(http.HandlerFunc(s.handleGetReport)))

	s.router.Handle("GET /api/v1/sessions/{id}/annotations", logging.Wrap(http.HandlerFunc(s.handleListAnnotations)))
	s.router.Handle("POST /api/v1/sessions/{id}/annotations", logging.Wrap(http.HandlerFunc(s.handleCreateAnnotation)))
	s.router.Handle("POST /api/v1/sessions/{id}/annotations/{strategyId}/accept", logging.Wrap(http.HandlerFunc(s.handleAccept)))
	s.router.Handle("POST /api/v1/sessions/{id}/annotations/{strategyId}/reject", logging.Wrap(http.HandlerFunc(s.handleReject)))
	s.router.Handle("PATCH /api/v1/sessions/{id}/annotations/{strategyId}/code", logging.Wrap(http.HandlerFunc(s.handleModifyCode)))
	s.router.Handle("PATCH /api/v1/sessions/{id}/annotations/{strategyId}/span", logging.Wrap(http.HandlerFunc(s.handleModifySpan)))
	s.router.Handle("GET /api/v1/sessions/{id}/annotations/{strategyId}/audit", logging.Wrap(http.HandlerFunc(s.handleAudit)))

	s.router.Handle("GET /api/v1/sessions/{id}/export", logging.Wrap(http.HandlerFunc(s.handleExport)))
}

// Start begins serving HTTP requests. Blocks until the server stops.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
