// Package ui exposes the analysis engine over HTTP as a JSON API.
package ui

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"olstudio/internal/config"
	"olstudio/internal/session"
)

// Server represents the web server for the analysis API
type Server struct {
	router *chi.Mux
	store  session.Store
	cfg    *config.Config
}

// NewServer creates a server around an injected session store
func NewServer(cfg *config.Config, store session.Store) *Server {
	s := &Server{
		router: chi.NewRouter(),
		store:  store,
		cfg:    cfg,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// Router returns the HTTP handler, mainly for tests
func (s *Server) Router() http.Handler {
	return s.router
}

// ListenAndServe blocks serving the API on the configured port
func (s *Server) ListenAndServe() error {
	addr := ":" + s.cfg.Server.Port
	log.Printf("[Server] Listening on %s", addr)
	return http.ListenAndServe(addr, s.router)
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
}

func (s *Server) setupRoutes() {
	s.router.Get("/", s.handleRoot)

	// Session lifecycle
	s.router.Post("/upload", s.handleUpload)
	s.router.Delete("/session/{token}", s.handleDeleteSession)

	// Analysis operations
	s.router.Post("/clean/{token}", s.handleClean)
	s.router.Post("/stats/{token}", s.handleStats)
	s.router.Post("/ols/{token}", s.handleOLS)

	// Read accessors for accumulated models
	s.router.Get("/models/{token}", s.handleListModels)
	s.router.Get("/models/{token}/{name}", s.handleGetModel)
}
