package api

import (
	"log/slog"

	"ecobeehub/internal/api/handlers"
	"ecobeehub/internal/api/middleware"
	"ecobeehub/internal/core"
	"ecobeehub/internal/entities"

	"github.com/gin-gonic/gin"
)

// RouterConfig holds dependencies for the API router
type RouterConfig struct {
	Store      core.EntryStore
	Manager    core.EntryManagerInterface
	ConfigFlow handlers.EntryCreator
	Entities   *entities.Registry
	APIKey     string
	APIKeyHash string
	Logger     *slog.Logger
}

// NewRouter creates and configures the Gin router
func NewRouter(config RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.Logging(logger))
	router.Use(middleware.NoiseFilter())
	router.Use(middleware.ContentType())

	// Health check (no auth)
	healthHandler := handlers.NewHealthHandler()
	router.GET("/health", healthHandler.GetHealth)

	// API v1 routes (with authentication)
	v1 := router.Group("/v1")
	v1.Use(middleware.APIKeyAuth(config.APIKey, config.APIKeyHash))
	{
		// Entries endpoints
		entriesHandler := handlers.NewEntriesHandler(
			config.Store,
			config.Manager,
			config.ConfigFlow,
			logger,
		)
		v1.GET("/entries", entriesHandler.ListEntries)
		v1.POST("/entries", entriesHandler.CreateEntry)
		v1.DELETE("/entries/:id", entriesHandler.DeleteEntry)
		v1.POST("/entries/:id/reload", entriesHandler.ReloadEntry)

		// Entities endpoints
		entitiesHandler := handlers.NewEntitiesHandler(config.Entities)
		v1.GET("/entities", entitiesHandler.ListEntities)
		v1.GET("/entities/:id", entitiesHandler.GetEntity)
	}

	return router
}
