package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"
	"go.uber.org/zap"

	"github.com/mrlokans/library-catalog/internal/snapshot"
)

// ExportCatalogQueue is the backlite queue name for snapshot exports.
const ExportCatalogQueue = "export_catalog"

// CatalogExporter writes a snapshot of the catalog. *snapshot.Exporter implements it.
type CatalogExporter interface {
	Format() snapshot.Format
	ExportAs(ctx context.Context, format snapshot.Format) (snapshot.Result, error)
}

// ExportCatalogTask dumps the whole catalog to the snapshot directory.
type ExportCatalogTask struct {
	// Format overrides the exporter default when set ("json" or "yaml").
	Format string `json:"format,omitempty"`
}

// Config returns the queue configuration for snapshot exports.
func (t ExportCatalogTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        ExportCatalogQueue,
		MaxAttempts: 3,
		Backoff:     30 * time.Second,
		Timeout:     5 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// ExportCatalogProcessor creates a processor function for ExportCatalogTask.
func ExportCatalogProcessor(exporter CatalogExporter, logger *zap.Logger) backlite.QueueProcessor[ExportCatalogTask] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(ctx context.Context, task ExportCatalogTask) error {
		if exporter == nil {
			return fmt.Errorf("catalog exporter not configured")
		}

		format := exporter.Format()
		if task.Format != "" {
			parsed, err := snapshot.ParseFormat(task.Format)
			if err != nil {
				logger.Error("Rejected snapshot task", zap.String("format", task.Format), zap.Error(err))
				return err
			}
			format = parsed
		}

		result, err := exporter.ExportAs(ctx, format)
		if err != nil {
			return fmt.Errorf("export catalog: %w", err)
		}

		logger.Info("Catalog snapshot written",
			zap.String("path", result.Path),
			zap.Int("books", result.Books))
		return nil
	}
}

// NewExportCatalogQueue creates a backlite queue for snapshot exports.
func NewExportCatalogQueue(exporter CatalogExporter, logger *zap.Logger) backlite.Queue {
	return backlite.NewQueue(ExportCatalogProcessor(exporter, logger))
}
