// Package api provides the HTTP JSON API for sercha-wiki.
//
// The server owns a single search session. Clients drive it the same way
// the TUI does: search, page, filter, sort, toggle tree nodes and request
// summaries for individual results.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/custodia-labs/sercha-wiki/internal/core/domain"
	"github.com/custodia-labs/sercha-wiki/internal/core/ports/driving"
)

// ErrMissingSession is returned when no search session is configured.
var ErrMissingSession = errors.New("api: search session is required")

// requestTimeout bounds every request. Summaries call the model, so it is generous.
const requestTimeout = 2 * time.Minute

// Ports holds the services the API exposes.
type Ports struct {
	// Session is the search session shared by all clients. Required.
	Session driving.SearchSession

	// Summary generates and caches summaries. Optional; summary routes
	// answer 503 without it.
	Summary driving.SummaryService

	// Stats reports persistent cache statistics. Optional.
	Stats func(ctx context.Context) (domain.CacheStats, error)

	// Origin is the wiki base URL. It scopes summary keys and builds links.
	Origin string
}

// Validate checks that the required ports are present.
func (p *Ports) Validate() error {
	if p == nil || p.Session == nil {
		return ErrMissingSession
	}
	return nil
}

// Server is the HTTP server for the sercha-wiki API.
type Server struct {
	ports  *Ports
	logger *zap.Logger
	router chi.Router
	server *http.Server
}

// NewServer creates a server with the given dependencies.
// A nil logger discards log output.
func NewServer(ports *Ports, logger *zap.Logger) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{ports: ports, logger: logger}
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Post("/search", s.handleSearch)
		r.Post("/search/next", s.handleNextPage)
		r.Put("/filter", s.handleFilter)
		r.Put("/sort", s.handleSort)
		r.Get("/results", s.handleResults)
		r.Get("/tree", s.handleTree)
		r.Post("/tree/{id}/toggle", s.handleToggle)
		r.Get("/cache-status", s.handleCacheStatus)

		r.Delete("/summaries", s.handleClearAll)
		r.Route("/summaries/{id}", func(r chi.Router) {
			r.Post("/", s.handleSummarise)
			r.Post("/regenerate", s.handleRegenerate)
			r.Get("/conversation", s.handleConversation)
			r.Post("/conversation", s.handleAsk)
			r.Delete("/conversation", s.handleClearConversation)
		})
	})
	return r
}

// Handler returns the HTTP handler serving the API.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens on addr and blocks until the server stops.
func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("starting API server", zap.String("addr", addr))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("api server: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// requestLogger logs each request with structured fields.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
