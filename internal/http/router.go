package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("http")

	router := gin.New()
	router.Use(RequestIDMiddleware())
	router.Use(AccessLogMiddleware(logger))
	router.Use(RecoveryMiddleware(logger))
	router.Use(CORSMiddleware(cfg.CORSAllowedOrigins))
	if cfg.Metrics != nil {
		router.Use(cfg.Metrics.Middleware())
	}

	// Health endpoints
	health := NewHealthController(cfg.Database, cfg.Version)
	if p, ok := cfg.Snapshots.(Pinger); ok {
		health.AddCheck("task_queue", p)
	}
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	if cfg.Metrics != nil {
		router.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	// Books API endpoints
	books := NewBooksController(cfg.Catalog, logger)
	books.RegisterRoutes(router.Group("/api/books"))

	// Snapshot endpoints
	if cfg.Snapshots != nil {
		snapshots := NewSnapshotsController(cfg.Snapshots, logger)
		router.POST("/api/snapshots", snapshots.CreateSnapshot)
		router.GET("/api/snapshots/tasks/:id", snapshots.GetSnapshotTask)
	}

	return router
}
