// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"scanflow/internal/infrastructure/http/v1/handlers"
	"scanflow/internal/infrastructure/http/v1/middleware"
	"scanflow/pkg/logger"
)

// RouterConfig holds the services behind the API.
type RouterConfig struct {
	Logger *logger.Logger

	// Sessions validates device tokens.
	Sessions middleware.SessionValidator

	Scanner handlers.Scanner
	Queue   handlers.QueueService
	// Journal is optional; without it the journal route is not registered.
	Journal handlers.JournalReader

	DB      handlers.Pinger
	Version string
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	healthHandler := handlers.NewHealthHandler(cfg.DB, cfg.Version)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
	}

	base := handlers.NewBaseHandler()

	v1 := router.Group("/api/v1")
	{
		decodeHandler := handlers.NewDecodeHandler(base)
		v1.POST("/decode", middleware.OptionalAuth(cfg.Sessions), decodeHandler.Decode)

		documents := v1.Group("/documents/:id")
		documents.Use(middleware.Auth(cfg.Sessions))
		registerDocumentRoutes(documents, base, cfg)
	}

	return router
}

func registerDocumentRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	scanHandler := handlers.NewScanHandler(base, cfg.Scanner)
	rg.POST("/scans", scanHandler.Scan)

	queueHandler := handlers.NewQueueHandler(base, cfg.Queue)
	queue := rg.Group("/queue")
	{
		queue.GET("/sum", queueHandler.Sum)
		queue.GET("/unsent", queueHandler.Unsent)
		queue.GET("/merge", queueHandler.Merge)
		queue.POST("/sent", queueHandler.MarkSent)
	}

	if cfg.Journal != nil {
		journalHandler := handlers.NewJournalHandler(base, cfg.Journal)
		rg.GET("/journal", journalHandler.History)
	}
}
