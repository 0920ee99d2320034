// Package web exposes the analysis pipeline over HTTP.
package web

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/mkralik/photo-insight/internal/analyzer"
	"github.com/mkralik/photo-insight/internal/config"
	"github.com/mkralik/photo-insight/internal/perception"
)

// Server represents the web server.
type Server struct {
	config     *config.Config
	analyzer   *analyzer.Analyzer
	provider   perception.Provider // may be nil: signals-only mode
	router     *chi.Mux
	httpServer *http.Server
}

// NewServer creates a new web server. provider may be nil, in which case
// the analyze endpoint requires pre-computed signals in the request.
func NewServer(cfg *config.Config, a *analyzer.Analyzer, provider perception.Provider, port int, host string) *Server {
	r := chi.NewRouter()

	s := &Server{
		config:   cfg,
		analyzer: a,
		provider: provider,
		router:   r,
	}

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(2 * time.Minute))

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", host, port),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) setupRoutes() {
	s.router.Get("/api/v1/health", s.handleHealth)
	s.router.Post("/api/v1/analyze", s.handleAnalyze)
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	log.Printf("Starting web server on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down web server...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}

// Router returns the chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}
