package http

import (
	"go.uber.org/zap"

	"github.com/mrlokans/library-catalog/internal/metrics"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Catalog  Catalog
	Database Pinger
	Logger   *zap.Logger

	// Snapshot task queue (optional)
	Snapshots SnapshotQueue

	// Prometheus collectors; /metrics is not mounted when nil
	Metrics *metrics.Metrics

	// Origins allowed by CORS; "*" allows any
	CORSAllowedOrigins []string

	// Application info
	Version string
}
