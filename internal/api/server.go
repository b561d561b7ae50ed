// Package api serves book search, suggestions and recent searches over HTTP.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lepinkainen/marginalia/internal/booksource"
	"github.com/lepinkainen/marginalia/internal/search"
	"github.com/lepinkainen/marginalia/internal/suggest"
)

// RecentStore is the recent-search list shared by all API clients.
type RecentStore interface {
	Add(query string)
	List() []string
}

// Deps are the services the server is built from.
type Deps struct {
	Primary     booksource.Source
	Fallback    booksource.Source
	Lookup      suggest.Lookup
	Recent      RecentStore
	PageSize    int
	MaxSessions int
	Logger      *slog.Logger
}

// Server is the HTTP API. Every search creates its own session so that
// clients paginate independently.
type Server struct {
	deps     Deps
	router   chi.Router
	sessions *sessionTable
	logger   *slog.Logger
}

// NewServer creates a server and registers all routes.
func NewServer(deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		deps:     deps,
		router:   chi.NewRouter(),
		sessions: newSessionTable(deps.MaxSessions),
		logger:   logger,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(s.instrument)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/search", s.handleSearch)
		r.Post("/search/{session}/more", s.handleLoadMore)
		r.Get("/suggest", s.handleSuggest)
		r.Get("/recent", s.handleListRecent)
		r.Post("/recent", s.handleAddRecent)
	})
	s.router.Handle("/metrics", promhttp.Handler())
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) newOrchestrator() *search.Orchestrator {
	opts := []search.Option{
		search.WithPageSize(s.deps.PageSize),
		search.WithLogger(s.logger),
	}
	if s.deps.Recent != nil {
		opts = append(opts, search.WithHistory(s.deps.Recent))
	}
	return search.NewOrchestrator(s.deps.Primary, s.deps.Fallback, opts...)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("API server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("Shutting down API server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
