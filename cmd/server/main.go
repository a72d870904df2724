// cmd/server/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andresuchdata/replenish/internal/alert"
	"github.com/andresuchdata/replenish/internal/api"
	"github.com/andresuchdata/replenish/internal/config"
	"github.com/andresuchdata/replenish/internal/forecast"
	"github.com/andresuchdata/replenish/internal/reorder"
	"github.com/andresuchdata/replenish/internal/repository"
	"github.com/andresuchdata/replenish/internal/repository/postgres"
	"github.com/andresuchdata/replenish/internal/scan"
	"github.com/andresuchdata/replenish/internal/service"
	"github.com/andresuchdata/replenish/pkg/logger"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	logger.SetLevel(cfg.Server.Mode)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize database
	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	repo := postgres.NewOrderRepository(db)
	svc := buildService(cfg, repo)

	// Initialize HTTP server
	router := api.NewRouter(svc, cfg.Server.AllowedOrigins)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}

func buildService(cfg *config.Config, repo repository.OrderRepository) *service.ReplenishService {
	var advisor forecast.Advisor
	if cfg.Advisor.Endpoint != "" {
		advisor = forecast.NewOpenAIAdvisor(cfg.Advisor.Endpoint, cfg.Advisor.APIKey, cfg.Advisor.Model, cfg.Advisor.Timeout())
		logger.Log.Info().Str("model", cfg.Advisor.Model).Msg("Forecast advisor enabled")
	} else {
		logger.Log.Info().Msg("No forecast advisor configured, using statistical fallback")
	}

	calc := reorder.NewCalculator(repo, advisor, cfg.Advisor.Timeout())
	generator := alert.NewGenerator(cfg.Scan.AlertTTL())

	store := buildAlertStore(cfg)

	var notifier alert.Notifier = alert.NoopNotifier{}
	if cfg.Notify.WebhookURL != "" {
		notifier = alert.NewWebhookNotifier(cfg.Notify.WebhookURL, time.Duration(cfg.Notify.TimeoutSeconds)*time.Second)
	}

	scanner := scan.NewScanner(repo, calc, generator, store, notifier, scan.Config{
		WorkerCount: cfg.Scan.WorkerCount,
		TaskTimeout: cfg.Scan.TaskTimeout(),
	})

	return service.NewReplenishService(repo, calc, scanner, generator, store)
}

func buildAlertStore(cfg *config.Config) alert.Store {
	if !cfg.Cache.Enabled {
		return alert.NewMemoryStore()
	}

	store, err := alert.NewRedisStore(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Redis alert store unavailable, falling back to in-memory")
		return alert.NewMemoryStore()
	}

	logger.Log.Info().Msg("Using redis alert store")
	return store
}
