package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/EpsilonIndustries21/sentiment/internal/adapter/http/router"
	"github.com/EpsilonIndustries21/sentiment/internal/adapter/model"
	"github.com/EpsilonIndustries21/sentiment/internal/adapter/repository/postgres"
	"github.com/EpsilonIndustries21/sentiment/internal/adapter/repository/rediscache"
	"github.com/EpsilonIndustries21/sentiment/internal/domain/repository"
	"github.com/EpsilonIndustries21/sentiment/internal/infrastructure/cache"
	"github.com/EpsilonIndustries21/sentiment/internal/infrastructure/config"
	"github.com/EpsilonIndustries21/sentiment/internal/infrastructure/database"
	"github.com/EpsilonIndustries21/sentiment/internal/infrastructure/logger"
	"github.com/EpsilonIndustries21/sentiment/internal/infrastructure/metrics"
	"github.com/EpsilonIndustries21/sentiment/internal/infrastructure/resources"
	"github.com/EpsilonIndustries21/sentiment/internal/usecase"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	log, err := logger.NewLogger(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	// Set Gin mode
	gin.SetMode(cfg.Server.Mode)

	// Provision linguistic resources (optional, continue without them)
	provisioner := resources.NewProvisioner(&cfg.Resources, log)
	provisionCtx, cancelProvision := context.WithTimeout(context.Background(), cfg.Resources.DownloadTimeout)
	if err := provisioner.EnsureStopwords(provisionCtx); err != nil {
		log.Warn("Failed to provision stopwords, continuing without them", zap.Error(err))
	}
	cancelProvision()

	// Load model artifacts; failure leaves the service up in degraded mode
	artifacts := model.Load(&cfg.Artifacts, provisioner, log)
	if !artifacts.Available() {
		log.Warn("Model or vectorizer could not be loaded; /predict will fail until restart")
	}
	defer func() { _ = artifacts.Close() }()

	m := metrics.New()
	m.SetArtifactsLoaded(artifacts.Available())

	opts := usecase.PredictionOptions{
		CacheTTL: cfg.Redis.TTL,
		Metrics:  m,
		Logger:   log,
	}

	// Initialize Redis (optional, continue without it)
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedisClient(&cfg.Redis)
		if err != nil {
			log.Warn("Failed to connect to Redis, continuing without cache", zap.Error(err))
			redisClient = nil
		} else {
			log.Info("Connected to Redis", zap.String("address", cfg.Redis.Addr()))
			opts.Cache = rediscache.NewPredictionCache(redisClient)
		}
	}

	// Initialize database (optional, required once enabled)
	var db *gorm.DB
	var audit repository.PredictionRepository
	if cfg.Database.Enabled {
		db, err = database.NewPostgresDB(&cfg.Database, log)
		if err != nil {
			log.Error("Failed to connect to database", zap.Error(err))
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		log.Info("Connected to database")

		if err := database.AutoMigrate(db); err != nil {
			log.Error("Failed to run migrations", zap.Error(err))
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		log.Info("Database migrations completed")

		audit = postgres.NewPredictionRepository(db)
		opts.Audit = audit
	}

	// Setup router
	r := router.Setup(router.Deps{
		Prediction: usecase.NewPredictionUsecase(artifacts, opts),
		History:    usecase.NewHistoryUsecase(audit),
		Metrics:    m,
		Logger:     log,
	})

	// Create HTTP server
	addr := cfg.Server.Addr()
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		log.Info("Starting server", zap.String("address", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal or a listener failure
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serverErr:
		log.Error("Server failed", zap.Error(err))
		return fmt.Errorf("server failed: %w", err)
	}

	log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	if db != nil {
		_ = database.Close(db)
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}

	log.Info("Server exited")
	return nil
}
