package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
	_ "modernc.org/sqlite"

	"github.com/reelkeep/reelkeep/internal/api"
	"github.com/reelkeep/reelkeep/internal/collection"
	"github.com/reelkeep/reelkeep/internal/config"
	"github.com/reelkeep/reelkeep/internal/metadata"
	"github.com/reelkeep/reelkeep/internal/migrations"
	"github.com/reelkeep/reelkeep/internal/tmdb"
)

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func runServer(configPath string) error {
	// Load config
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	// Create logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Server.LogLevel),
	}))

	// Ensure database directory exists
	dbDir := filepath.Dir(cfg.Database.Path)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return fmt.Errorf("create db dir: %w", err)
	}

	// Open database
	db, err := sql.Open("sqlite", cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer func() { _ = db.Close() }()

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("enable foreign keys: %w", err)
	}

	// Run migrations
	if _, err := db.Exec(migrations.InitialSQL); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	// === Metrics ===
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// === Stores ===
	collectionStore := collection.NewStore(db)
	movieCache := metadata.NewCache(db)

	// === Clients (optional - nil client means cache-only operation) ===
	var gateway metadata.Gateway
	if cfg.TMDB.APIKey != "" {
		tmdbOpts := []tmdb.Option{}
		if cfg.TMDB.BaseURL != "" {
			tmdbOpts = append(tmdbOpts, tmdb.WithBaseURL(cfg.TMDB.BaseURL))
		}
		if cfg.TMDB.RateLimit > 0 {
			tmdbOpts = append(tmdbOpts, tmdb.WithRateLimit(rate.Limit(cfg.TMDB.RateLimit), 1))
		}
		gateway = tmdb.NewClient(cfg.TMDB.APIKey, tmdbOpts...)
	}

	// === Services ===
	metadataOpts := []metadata.Option{
		metadata.WithMaxAge(cfg.Cache.MaxAge()),
		metadata.WithMetrics(metadata.NewMetrics(registry)),
	}
	if cfg.TMDB.FetchLimit > 0 {
		metadataOpts = append(metadataOpts, metadata.WithFetchLimit(cfg.TMDB.FetchLimit))
	}
	movieService := metadata.NewService(movieCache, gateway, logger.With("component", "metadata"), metadataOpts...)

	// === HTTP Setup ===
	apiServer := api.New(collectionStore, movieService, logger.With("component", "api"))
	router := apiServer.Routes()
	router.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("server starting",
		"addr", addr,
		"database", cfg.Database.Path,
		"tmdb", gateway != nil,
		"cache_max_age", cfg.Cache.MaxAge(),
		"log_level", cfg.Server.LogLevel,
	)

	srv := &http.Server{Addr: addr, Handler: router}

	go func() {
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("received signal, shutting down", "signal", sig.String())

	// Graceful HTTP shutdown with 30s timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	// Let in-flight background cache writes land before closing the db.
	movieService.Drain()

	logger.Info("server stopped")
	return nil
}
