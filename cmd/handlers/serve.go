package handlers

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"podforge/internal/ai"
	"podforge/internal/config"
	"podforge/internal/logger"
	"podforge/internal/pipeline"
	"podforge/internal/server"
	"podforge/internal/store"
	"podforge/internal/tts"
)

// NewServeCmd creates the serve command for starting the HTTP server
func NewServeCmd() *cobra.Command {
	var (
		port int
		host string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server for the podcast creation UI",
		Long: `Start the podforge web server.

The server provides:
  • The /ai pipeline routes the web UI drives (refine, research, scripts, audio)
  • Project CRUD under /api/projects
  • Synthesized audio under /audio/
  • Health check endpoint

Examples:
  # Start server on default port 8080
  podforge serve

  # Start on custom port
  podforge serve --port 3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), port, host)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "HTTP server port (default from config: 8080)")
	cmd.Flags().StringVar(&host, "host", "", "HTTP server host (default from config: 0.0.0.0)")

	return cmd
}

func runServe(ctx context.Context, port int, host string) error {
	log := logger.Get()
	log.Info("Starting HTTP server")

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	serverCfg := cfg.Server
	if port != 0 {
		serverCfg.Port = port
	}
	if host != "" {
		serverCfg.Host = host
	}

	// Project store
	projects, err := openProjectStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = projects.Close() }()

	// Audio artifact store
	audioDir := filepath.Join(cfg.App.DataDir, cfg.TTS.OutputDirectory)
	files, err := store.NewFileStore(audioDir, "/audio")
	if err != nil {
		return fmt.Errorf("failed to create audio store: %w", err)
	}

	// Chat capability. Absorbing stages degrade to their deterministic
	// fallbacks without it, so a missing key is a warning, not a failure.
	var chat ai.ChatProvider
	gemini, err := ai.NewGeminiClient(ctx, cfg.AI.Gemini.Model)
	if err != nil {
		log.Warn("Chat provider unavailable, AI stages will use fallbacks", "error", err)
	} else {
		chat = gemini
		defer func() { _ = gemini.Close() }()
	}

	// Research capability
	var research ai.ResearchProvider
	if cfg.Research.APIKey != "" {
		research = ai.NewPerplexityClient(cfg.Research.APIKey, cfg.Research.Model)
	} else {
		log.Warn("Research provider unavailable, research will use fallbacks")
	}

	// Speech capability
	speech := tts.NewClient(&tts.Config{
		Provider: tts.Provider(cfg.TTS.Provider),
		APIKey:   cfg.TTS.APIKey,
		Model:    cfg.TTS.Model,
		Voice:    cfg.TTS.DefaultVoice,
		Speed:    cfg.TTS.DefaultSpeed,
	})

	engine := pipeline.NewEngine(chat, research, speech, files, projects)
	srv := server.New(engine, projects, files.Dir(), serverCfg)

	serverErrors := make(chan error, 1)
	go func() {
		log.Info(fmt.Sprintf("Server listening on http://%s:%d", serverCfg.Host, serverCfg.Port))
		log.Info("Press Ctrl+C to stop")
		serverErrors <- srv.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		log.Info("Server shutdown initiated", "signal", sig.String())

		shutdownCtx, cancel := context.WithTimeout(context.Background(), serverCfg.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("Server shutdown failed, forcing close", "error", err)
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		log.Info("Server stopped successfully")
	}

	return nil
}

// openProjectStore opens the configured persistence backend.
func openProjectStore(cfg *config.Config) (store.ProjectStore, error) {
	switch cfg.Storage.Backend {
	case "memory":
		return store.NewMemoryStore(), nil
	default:
		sqlite, err := store.NewSQLiteStore(cfg.Storage.DataDir)
		if err != nil {
			return nil, fmt.Errorf("failed to open project store: %w", err)
		}
		return sqlite, nil
	}
}
