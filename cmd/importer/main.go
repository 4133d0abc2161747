package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fkoehler/kickflow/internal/catalog"
	"github.com/fkoehler/kickflow/internal/config"
	"github.com/fkoehler/kickflow/internal/domain"
	"github.com/fkoehler/kickflow/internal/logger"
	"github.com/fkoehler/kickflow/internal/repository"
	"github.com/fkoehler/kickflow/internal/service"
	"github.com/fkoehler/kickflow/internal/source"
	"github.com/fkoehler/kickflow/internal/source/stockx"
	"github.com/fkoehler/kickflow/internal/storage"
	"github.com/fkoehler/kickflow/internal/validate"
)

func main() {
	// Initialize logger first (with defaults)
	appLogger := logger.New(&logger.Config{
		Level:       "info",
		Format:      "json",
		ServiceName: "kickflow-importer",
	})
	logger.SetDefaultLogger(appLogger)

	// Parse command line flags
	filePath := flag.String("file", "", "Path to a sales export file to import")
	sourceLabel := flag.String("source", "manual", "Import source (stockx, alias, notion, sales, manual)")
	sync := flag.Bool("sync", false, "Sync completed orders from the source's live feed instead of importing a file")
	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	if *filePath == "" && !*sync {
		appLogger.Fatal("Either -file or -sync is required")
	}

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}

	appLogger.WithFields(logger.Fields{
		"source": *sourceLabel,
		"file":   *filePath,
		"sync":   *sync,
	}).Info("Starting import")

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

	// Initialize raw payload archive when configured
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

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		appLogger.Info("Received shutdown signal, canceling...")
		cancel()
	}()

	if *sync {
		runSync(ctx, appLogger, cfg, orderService, *sourceLabel)
		return
	}

	runFileImport(ctx, appLogger, importService, *sourceLabel, *filePath)
}

func runFileImport(ctx context.Context, appLogger *logger.Logger, imports *service.ImportService, sourceLabel, filePath string) {
	sourceType, known := domain.ParseSourceType(sourceLabel)
	if !known {
		appLogger.WithField("source", sourceLabel).Warn("Unknown source, importing without validation")
	}

	content, err := os.ReadFile(filePath)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to read import file")
	}
	filename := filepath.Base(filePath)

	batch, err := imports.CreateBatch(ctx, sourceType, filename)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to create import batch")
	}

	result, err := imports.ProcessFile(ctx, batch.ID, sourceType, filename, content)
	if err != nil {
		appLogger.WithError(err).Fatal("Import failed")
	}

	appLogger.WithFields(logger.Fields{
		"batch_id":  result.BatchID,
		"status":    result.Status,
		"total":     result.TotalRecords,
		"processed": result.ProcessedRecords,
		"errors":    result.ErrorRecords,
	}).Info("Import completed")

	for _, msg := range result.Errors {
		appLogger.WithField("batch_id", result.BatchID).Warn(msg)
	}
}

func runSync(ctx context.Context, appLogger *logger.Logger, cfg *config.Config, orders *service.OrderService, sourceLabel string) {
	var feed source.Source
	switch sourceLabel {
	case stockx.SourceID:
		if !cfg.Sources.StockX.Enabled || cfg.Sources.StockX.APIKey == "" {
			appLogger.Fatal("StockX sync requires sources.stockx.enabled and an API key")
		}
		feed = stockx.NewClient(&stockx.Config{
			BaseURL:  cfg.Sources.StockX.BaseURL,
			APIKey:   cfg.Sources.StockX.APIKey,
			PageSize: cfg.Sources.StockX.PageSize,
		})
	default:
		appLogger.WithField("source", sourceLabel).Fatal("Source has no live feed")
	}

	created, err := orders.SyncFromFeed(ctx, feed)
	if err != nil {
		appLogger.WithError(err).Fatal("Feed sync failed")
	}

	appLogger.WithFields(logger.Fields{
		"source":  sourceLabel,
		"created": created,
	}).Info("Feed sync completed")
}
