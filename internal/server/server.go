// Package server exposes the podcast creation pipeline over HTTP: the /ai
// stage routes the browser UI drives, project CRUD under /api/projects, and
// static serving of synthesized audio.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"podforge/internal/config"
	"podforge/internal/logger"
	"podforge/internal/pipeline"
	"podforge/internal/store"
)

// Server represents the HTTP server
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	engine     *pipeline.Engine
	projects   store.ProjectStore
	audioDir   string
	config     config.Server
	log        *slog.Logger
}

// New creates a new HTTP server instance
func New(engine *pipeline.Engine, projects store.ProjectStore, audioDir string, cfg config.Server) *Server {
	s := &Server{
		router:   chi.NewRouter(),
		engine:   engine,
		projects: projects,
		audioDir: audioDir,
		config:   cfg,
		log:      logger.Get(),
	}

	s.setupMiddleware()
	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return s
}

// setupMiddleware configures middleware for the server
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)

	// Research and script generation hold the request open for minutes, so
	// the request timeout follows configuration rather than a fixed value.
	timeout := s.config.RequestTimeout
	if timeout == 0 {
		timeout = 10 * time.Minute
	}
	s.router.Use(middleware.Timeout(timeout))

	if s.config.CORS.Enabled {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.config.CORS.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"Link"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}
}

// setupRoutes configures routes for the server
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	// AI pipeline routes. Each accepts the stage's input shape and returns
	// its output shape verbatim, or the {"message": ...} error envelope.
	s.router.Route("/ai", func(r chi.Router) {
		r.Post("/refine-prompt", s.handleRefinePrompt)
		r.Post("/research", s.handleResearch)
		r.Post("/analyze-episodes", s.handleAnalyzeEpisodes)
		r.Post("/generate-script", s.handleGenerateScript)
		r.Post("/generate-episode-script", s.handleGenerateEpisodeScript)
		r.Post("/generate-remaining-episodes", s.handleGenerateRemaining)
		r.Post("/script-suggestions", s.handleScriptSuggestions)
		r.Post("/generate-audio", s.handleGenerateAudio)
		r.Post("/generate-audio-segment", s.handleGenerateAudioSegment)
	})

	// Project CRUD owned by the app layer
	s.router.Route("/api/projects", func(r chi.Router) {
		r.Get("/", s.handleListProjects)
		r.Post("/", s.handleCreateProject)
		r.Get("/{id}", s.handleGetProject)
		r.Patch("/{id}", s.handleUpdateProject)
		r.Delete("/{id}", s.handleDeleteProject)
		r.Post("/{id}/episodes/{number}/complete", s.handleMarkEpisodeComplete)
	})

	// Synthesized audio artifacts
	if s.audioDir != "" {
		fileServer := http.StripPrefix("/audio/", http.FileServer(http.Dir(s.audioDir)))
		s.router.Get("/audio/*", fileServer.ServeHTTP)
	}
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info("Starting HTTP server",
		"addr", s.httpServer.Addr,
		"read_timeout", s.config.ReadTimeout,
		"write_timeout", s.config.WriteTimeout,
	)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed to start: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Shutting down HTTP server gracefully...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.log.Info("HTTP server stopped")
	return nil
}

// Router returns the chi router instance (useful for testing)
func (s *Server) Router() *chi.Mux {
	return s.router
}
