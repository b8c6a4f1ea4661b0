// Package server exposes the research pipeline over HTTP for the web
// frontend: catalog listing, report generation and document export.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sells-group/lex-research/internal/model"
	"github.com/sells-group/lex-research/internal/report"
	"github.com/sells-group/lex-research/internal/store"
)

// ReportBuilder assembles one report per jurisdiction.
type ReportBuilder interface {
	Build(ctx context.Context, jurisdiction string, questionIDs []string) (*report.Result, error)
}

// Server holds the wired pipeline behind the HTTP handlers. Audit is
// optional; a nil store disables run logging.
type Server struct {
	catalog    *model.Catalog
	builder    ReportBuilder
	configured func() bool
	audit      store.Store
}

// New creates a Server. configured reports whether the model credential
// is present; it backs the health endpoint and never touches the network.
func New(catalog *model.Catalog, builder ReportBuilder, configured func() bool, audit store.Store) *Server {
	if configured == nil {
		configured = func() bool { return false }
	}
	return &Server{catalog: catalog, builder: builder, configured: configured, audit: audit}
}

// Router builds the chi handler tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/questions", s.handleQuestions)
		r.Get("/jurisdictions", s.handleJurisdictions)
		r.Post("/research", s.handleResearch)
		r.Post("/export", s.handleExportDocx)
		r.Post("/export/xlsx", s.handleExportXlsx)
	})

	return r
}

// Run serves the router until SIGINT/SIGTERM, then drains in-flight
// requests.
func (s *Server) Run(port int) error {
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		// Report generation makes several model calls in sequence.
		WriteTimeout: 15 * time.Minute,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		zap.L().Info("server: listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	zap.L().Info("server: shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
