package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrlokans/library-catalog/internal/snapshot"
	"github.com/mrlokans/library-catalog/internal/tasks"
)

const taskStatusTimeout = 5 * time.Second

// SnapshotsController triggers catalog exports on the task queue.
type SnapshotsController struct {
	queue  SnapshotQueue
	logger *zap.Logger
}

// NewSnapshotsController creates a new SnapshotsController.
func NewSnapshotsController(queue SnapshotQueue, logger *zap.Logger) *SnapshotsController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SnapshotsController{queue: queue, logger: logger}
}

// SnapshotRequest is the optional body of POST /api/snapshots.
type SnapshotRequest struct {
	Format string `json:"format,omitempty" form:"format"`
}

// TaskInfo describes an enqueued or running task.
type TaskInfo struct {
	ID     string `json:"task_id"`
	Queue  string `json:"queue"`
	Status string `json:"status"`
}

// CreateSnapshot handles POST /api/snapshots
// The export runs asynchronously; the response carries the task id to poll.
func (sc *SnapshotsController) CreateSnapshot(c *gin.Context) {
	var req SnapshotRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, "invalid_body", "invalid snapshot request: "+err.Error())
			return
		}
	}
	if req.Format == "" {
		req.Format = c.Query("format")
	}
	if req.Format != "" {
		if _, err := snapshot.ParseFormat(req.Format); err != nil {
			respondBadRequest(c, "invalid_format", err.Error())
			return
		}
	}

	id, err := sc.queue.EnqueueExport(c.Request.Context(), req.Format)
	if err != nil {
		respondInternalError(c, sc.logger, err, "enqueue snapshot")
		return
	}

	c.JSON(http.StatusAccepted, TaskInfo{
		ID:     id,
		Queue:  tasks.ExportCatalogQueue,
		Status: "pending",
	})
}

// GetSnapshotTask handles GET /api/snapshots/tasks/:id
func (sc *SnapshotsController) GetSnapshotTask(c *gin.Context) {
	taskID := c.Param("id")

	ctx, cancel := context.WithTimeout(c.Request.Context(), taskStatusTimeout)
	defer cancel()

	status, err := sc.queue.Status(ctx, taskID)
	if err != nil {
		respondInternalError(c, sc.logger, err, "snapshot task status")
		return
	}

	name := tasks.StatusName(status)
	if name == "not_found" {
		respondNotFound(c)
		return
	}

	c.JSON(http.StatusOK, TaskInfo{
		ID:     taskID,
		Queue:  tasks.ExportCatalogQueue,
		Status: name,
	})
}
