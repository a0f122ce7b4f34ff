package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/rajasatyajit/CivicTriage/config"
	"github.com/rajasatyajit/CivicTriage/internal/api"
	"github.com/rajasatyajit/CivicTriage/internal/database"
	"github.com/rajasatyajit/CivicTriage/internal/geocoder"
	"github.com/rajasatyajit/CivicTriage/internal/intake"
	"github.com/rajasatyajit/CivicTriage/internal/logger"
	"github.com/rajasatyajit/CivicTriage/internal/metrics"
	middlewares "github.com/rajasatyajit/CivicTriage/internal/middleware"
	"github.com/rajasatyajit/CivicTriage/internal/ratelimit"
	"github.com/rajasatyajit/CivicTriage/internal/scoring"
	"github.com/rajasatyajit/CivicTriage/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger.Info("Starting CivicTriage service",
		"version", Version,
		"build_time", BuildTime,
		"git_commit", GitCommit,
	)

	// Initialize metrics
	if cfg.Metrics.Enabled {
		metrics.Init()
		logger.Info("Metrics enabled", "port", cfg.Metrics.Port)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database
	db, err := database.New(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer db.Close(ctx)

	if db.IsConfigured() {
		if err := store.Migrate(ctx, db); err != nil {
			return err
		}
	}
	reportStore := store.New(db)

	rdb, err := database.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("initialize redis: %w", err)
	}
	if rdb != nil {
		defer rdb.Close()
	}

	var geo scoring.Geocoder
	if cfg.Geocoder.Enabled {
		geo = geocoder.New(cfg.Geocoder, rdb)
	}

	svc, err := newService(cfg, reportStore, reportStore, geo)
	if err != nil {
		return err
	}

	var limiter ratelimit.Limiter = ratelimit.NewLocal()
	if rdb != nil {
		limiter = ratelimit.NewManager(rdb)
	}

	r := newRouter(cfg, svc, limiter)

	// Metrics endpoint
	if cfg.Metrics.Enabled {
		go startMetricsServer(cfg.Metrics.Port, cfg.Metrics.Path)
	}

	// HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Starting HTTP server", "address", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server failed", "error", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exited")
	return nil
}

// newRouter builds the HTTP router with the global middleware stack
func newRouter(cfg *config.Config, svc *intake.Service, limiter ratelimit.Limiter) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewares.Logging)
	r.Use(middlewares.Metrics)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Server.ReadTimeout))
	r.Use(middlewares.Security)
	r.Use(middlewares.CORS(cfg.Server.AllowedOrigins))

	api.NewHandler(svc, Version, BuildTime, GitCommit).
		WithSubmissionLimit(middlewares.SubmissionRateLimit(limiter, cfg.Intake.SubmissionsPerMinute)).
		RegisterRoutes(r)

	return r
}

func startMetricsServer(port int, path string) {
	mux := http.NewServeMux()
	mux.Handle(path, metrics.Handler())

	addr := fmt.Sprintf(":%d", port)
	logger.Info("Starting metrics server", "address", addr, "path", path)

	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("Metrics server failed", "error", err)
	}
}
