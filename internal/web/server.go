// Package web provides the HTTP API for the music browser.
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/justestif/go-music-browser/internal/library"
	"github.com/justestif/go-music-browser/internal/logging"
)

// DefaultAddr is the default server address.
const DefaultAddr = "127.0.0.1:3000"

// ServerConfig holds server configuration and dependencies.
type ServerConfig struct {
	Addr string

	// Secure marks session cookies Secure. Set in production.
	Secure bool

	Catalog Catalog
	Auth    Authenticator
	Lyrics  LyricsFinder
	Store   library.Store
	Logger  *log.Logger
}

// Server is the HTTP server for the API.
type Server struct {
	router   chi.Router
	server   *http.Server
	handlers *Handlers
	logger   *log.Logger
}

// NewServer creates a new web server.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Catalog == nil {
		return nil, errors.New("catalog is required")
	}
	if cfg.Auth == nil {
		return nil, errors.New("authenticator is required")
	}
	if cfg.Store == nil {
		cfg.Store = library.NewMemoryStore()
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Discard()
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}

	s := &Server{
		router:   chi.NewRouter(),
		handlers: NewHandlers(cfg),
		logger:   cfg.Logger,
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// setupMiddleware configures middleware for the router.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
}

// setupRoutes configures routes for the application.
func (s *Server) setupRoutes() {
	h := s.handlers

	s.router.Get("/healthz", h.Health)

	s.router.Route("/api/auth", func(r chi.Router) {
		r.Get("/login", h.Login)
		r.Get("/callback", h.Callback)
		r.Get("/me", h.AuthStatus)
		r.Post("/logout", h.Logout)
	})

	s.router.Route("/api/spotify", func(r chi.Router) {
		r.Get("/home", h.Home)
		r.Get("/search", h.Search)
		r.Get("/track", h.Track)

		r.Route("/me", func(r chi.Router) {
			r.Use(requireSpotifySession)
			r.Get("/top/tracks", h.TopTracks)
			r.Get("/top/artists", h.TopArtists)
			r.Get("/recent", h.RecentlyPlayed)
			r.Get("/saved", h.SavedTracks)
		})
	})

	s.router.Get("/api/lyrics", h.Lyrics)

	s.router.Group(func(r chi.Router) {
		r.Use(requireSpotifySession)
		r.Get("/api/profile", h.Profile)
		r.Put("/api/profile", h.SaveProfile)

		r.Route("/api/library/liked", func(r chi.Router) {
			r.Get("/", h.LikedTracks)
			r.Get("/{id}", h.LikeStatus)
			r.Put("/{id}", h.Like)
			r.Delete("/{id}", h.Unlike)
		})
	})
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info("starting server", "addr", "http://"+s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Run starts the server and shuts it down gracefully once ctx is done.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	s.logger.Info("server stopped")
	return nil
}
