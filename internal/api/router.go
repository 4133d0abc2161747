package api

import (
	"github.com/gin-gonic/gin"

	"github.com/fkoehler/kickflow/internal/api/handler"
	"github.com/fkoehler/kickflow/internal/api/middleware"
	"github.com/fkoehler/kickflow/internal/config"
	"github.com/fkoehler/kickflow/internal/service"
)

// SetupRouter configures the Gin router with all routes
func SetupRouter(
	importService *service.ImportService,
	cfg *config.Config,
) *gin.Engine {
	// Set Gin mode
	switch cfg.Server.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	// Add middleware
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins:  cfg.Server.CORS.AllowedOrigins,
		AllowAllOrigins: cfg.Server.CORS.AllowAllOrigins,
	}))

	// Create handlers
	healthHandler := handler.NewHealthHandler()
	importHandler := handler.NewImportHandler(
		importService,
		cfg.Import.Async,
		int64(cfg.Import.MaxFileBytes),
	)

	// Health check
	r.GET("/health", healthHandler.Health)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		// Imports
		v1.POST("/imports", importHandler.UploadFile)
		v1.POST("/imports/records", importHandler.SubmitRecords)
		v1.GET("/imports/:id", importHandler.GetBatch)
	}

	return r
}
