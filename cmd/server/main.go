package main

import (
	"context"
	"embed"
	"flag"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"irisdash/internal/codec"
	"irisdash/internal/config"
	"irisdash/internal/dataset"
	"irisdash/internal/handler"
	"irisdash/internal/hub"
	"irisdash/internal/observability"
	"irisdash/internal/render"
	"irisdash/internal/repository/sqlite"
	"irisdash/internal/service"
)

//go:embed web/*
var webFS embed.FS

func main() {
	// Command line flags
	configPath := flag.String("config", "", "Config file path (default: search standard locations)")
	addr := flag.String("addr", "", "HTTP listen address (overrides config)")
	stage := flag.String("stage", "", "Dashboard stage: hello, scatter, filter or regression (overrides config)")
	source := flag.String("dataset", "", "Dataset URL or path (overrides config)")
	dbPath := flag.String("db", "", "SQLite database path (overrides config)")
	flag.Parse()

	var (
		cfg     *config.Config
		cfgFile string
		err     error
	)
	if *configPath != "" {
		cfg, cfgFile, err = config.LoadFromPath(*configPath)
	} else {
		cfg, cfgFile, err = config.Load()
	}
	if err != nil {
		log.Fatal().Err(err).Str("path", cfgFile).Msg("failed to load config")
	}

	cfg.ApplyEnv(os.Getenv)
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *stage != "" {
		parsed, err := config.ParseStage(*stage)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid -stage flag")
		}
		cfg.Stage = parsed
	}
	if *source != "" {
		cfg.Dataset.Source = *source
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	observability.InitLogger("irisdash", cfg.Logging.Level, cfg.Logging.Console || cfg.Server.Debug)
	observability.RegisterMetrics()
	log.Info().Str("config", cfgFile).Str("stage", string(cfg.Stage)).Msg("starting irisdash")
	log.Debug().Msg(cfg.Summary())

	// Load the dataset once; it is never reloaded
	loader := dataset.NewLoader(
		dataset.WithTimeout(cfg.Dataset.FetchTimeout.Duration()),
		dataset.WithEmbeddedFallback(cfg.Dataset.FallbackEmbedded),
	)
	loadCtx, loadCancel := context.WithTimeout(context.Background(), cfg.Dataset.FetchTimeout.Duration()+5*time.Second)
	ds, err := loader.Load(loadCtx, cfg.Dataset.Source)
	loadCancel()
	if err != nil {
		log.Fatal().Err(err).Str("source", cfg.Dataset.Source).Msg("failed to load dataset")
	}
	info := ds.Info()
	log.Info().
		Str("source", info.Source).
		Int("rows", info.Rows).
		Strs("species", info.Species).
		Bool("fallback", info.Fallback).
		Msg("dataset loaded")

	// Initialize SQLite repository
	repo, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Database.Path).Msg("failed to open database")
	}
	defer repo.Close()
	log.Info().Str("path", cfg.Database.Path).Msg("database opened")

	if prev, err := repo.GetDatasetInfo(context.Background()); err == nil && prev != nil && prev.Fingerprint != info.Fingerprint {
		log.Info().Str("previous", prev.Fingerprint).Str("current", info.Fingerprint).Msg("dataset changed since last run")
	}
	if err := repo.SaveDatasetInfo(context.Background(), info); err != nil {
		log.Warn().Err(err).Msg("failed to store dataset info")
	}

	// Initialize event bus
	eventBus := service.NewEventBus()

	// Initialize SSE hub
	hubCtx, hubCancel := context.WithCancel(context.Background())
	defer hubCancel()
	sseHub := hub.New()
	go sseHub.Run(hubCtx)

	// Connect event bus to SSE hub
	eventChan := make(chan service.Event, 100)
	eventBus.Subscribe(eventChan)
	go func() {
		for event := range eventChan {
			sseHub.Broadcast(event)
		}
	}()
	eventBus.Publish(service.Event{Type: service.EventDatasetLoaded, Payload: info})

	// Initialize services and handlers
	dashSvc := service.NewDashboardService(ds, repo, eventBus, cfg)
	dashHandler := handler.NewDashboardHandler(dashSvc, codec.DefaultExporters(), render.DefaultRegistry())

	// Setup routes
	mux := http.NewServeMux()
	dashHandler.Register(mux)
	mux.Handle("GET /events", sseHub)
	mux.Handle("GET /metrics", promhttp.Handler())

	// Static files (embedded)
	webContent, err := fs.Sub(webFS, "web")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to get embedded web content")
	}
	mux.Handle("GET /", http.FileServer(http.FS(webContent)))

	// Apply middleware
	finalHandler := handler.Chain(mux,
		handler.Recover,
		handler.CORS,
		handler.Logger,
		handler.Metrics,
	)

	// SSE streams stay open, so only the read side gets a hard timeout
	server := &http.Server{
		Addr:        cfg.Server.Addr,
		Handler:     finalHandler,
		ReadTimeout: cfg.Server.ReadTimeout.Duration(),
		IdleTimeout: cfg.Server.IdleTimeout.Duration(),
	}
	if !cfg.Stage.Allows(config.StageFilter) {
		server.WriteTimeout = cfg.Server.WriteTimeout.Duration()
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("server listening")
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Close SSE streams first so Shutdown does not wait on them
	hubCancel()

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
	}

	log.Info().Msg("server stopped")
}
