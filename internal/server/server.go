// Package server exposes map generation and validation over HTTP for editor
// tooling.
//
// The API is a thin JSON mapping onto the two public entry points: generate
// a map from a seed, and validate a map against rules. Rule violations map
// to 422 because the request was well-formed but structurally unsatisfiable;
// validation reports are 200 responses regardless of outcome - violations
// are data the editor displays, not server failures.
package server

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/driftforge/runweaver/pkg/cache"
)

// Server hosts the generation API.
type Server struct {
	logger *log.Logger
	cache  cache.Cache
}

// New creates a server. A nil cache disables map caching.
func New(logger *log.Logger, c cache.Cache) *Server {
	if c == nil {
		c = cache.NewNullCache()
	}
	return &Server{logger: logger, cache: c}
}

// Router assembles the chi route tree.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/generate", s.handleGenerate)
		r.Post("/validate", s.handleValidate)
		r.Post("/batch", s.handleBatch)
	})
	return r
}

// ListenAndServe runs the server until the listener fails.
func (s *Server) ListenAndServe(addr string) error {
	s.logger.Info("listening", "addr", addr)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return srv.ListenAndServe()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
