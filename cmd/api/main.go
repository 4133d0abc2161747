package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fkoehler/kickflow/internal/api"
	"github.com/fkoehler/kickflow/internal/catalog"
	"github.com/fkoehler/kickflow/internal/config"
	"github.com/fkoehler/kickflow/internal/logger"
	"github.com/fkoehler/kickflow/internal/repository"
	"github.com/fkoehler/kickflow/internal/service"
	"github.com/fkoehler/kickflow/internal/storage"
	"github.com/fkoehler/kickflow/internal/validate"
)

func main() {
	// Initialize logger first (with defaults)
	appLogger := logger.NewDefault()
	logger.SetDefaultLogger(appLogger)
	defer logger.Sync()

	// Load configuration
	// Support CONFIG_PATH environment variable for production deployments
	configPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}

	// Initialize database
	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize database")
	}

	// Initialize repositories
	batchRepo := repository.NewBatchRepository(db)
	recordRepo := repository.NewRecordRepository(db)
	inventoryRepo := repository.NewInventoryRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	platformRepo := repository.NewPlatformRepository(db)

	// Initialize raw payload archive (supports MinIO, R2, S3)
	var archive storage.ObjectStorage
	if cfg.Storage.Enabled {
		archive, err = storage.NewStorage(&storage.S3Config{
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			UseSSL:    cfg.Storage.UseSSL,
			Bucket:    cfg.Storage.Bucket,
			Region:    cfg.Storage.Region,
			PublicURL: cfg.Storage.PublicURL,
		})
		if err != nil {
			appLogger.WithError(err).Fatal("Failed to initialize storage")
		}

		ctx := context.Background()
		if err := archive.EnsureBucket(ctx); err != nil {
			appLogger.WithError(err).Fatal("Failed to ensure storage bucket")
		}
	}

	// Initialize services
	brands := catalog.NewBrandMatcher()
	resolver := catalog.NewResolver(db)
	validators := validate.NewRegistry(brands)

	matcher := service.NewMatchService(inventoryRepo)
	orderService := service.NewOrderService(
		recordRepo,
		orderRepo,
		platformRepo,
		inventoryRepo,
		matcher,
		resolver,
	)
	productService := service.NewProductService(recordRepo, resolver)
	importService := service.NewImportService(
		batchRepo,
		recordRepo,
		validators,
		archive,
		productService,
		orderService,
	)

	// Setup router
	router := api.SetupRouter(importService, cfg)

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		appLogger.WithFields(logger.Fields{
			"port": cfg.Server.Port,
			"mode": cfg.Server.Mode,
		}).Info("Starting API server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Fatal("Server forced to shutdown")
	}

	appLogger.Info("Server exited")
}
