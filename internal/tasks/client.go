// Package tasks runs catalog background work (snapshot exports) on a
// backlite queue persisted in its own SQLite file.
package tasks

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/mikestefanello/backlite"
	"go.uber.org/zap"
)

// Client owns the queue database and the backlite workers.
type Client struct {
	queue  *backlite.Client
	db     *sql.DB
	config Config
	logger *zap.Logger

	mu      sync.Mutex
	running bool
}

// DBPath returns the queue database path for a catalog database path:
// the same directory and name with a "-tasks" suffix.
func DBPath(mainDBPath string) string {
	ext := filepath.Ext(mainDBPath)
	return strings.TrimSuffix(mainDBPath, ext) + "-tasks" + ext
}

// NewClient opens (creating if needed) the queue database next to
// mainDBPath and installs the backlite schema.
func NewClient(mainDBPath string, cfg Config, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("tasks")

	// WAL keeps enqueues from blocking behind running workers.
	db, err := sql.Open("sqlite3", DBPath(mainDBPath)+"?_journal=WAL&_timeout=5000&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open tasks database: %w", err)
	}
	db.SetMaxOpenConns(cfg.Workers + 5)
	db.SetMaxIdleConns(cfg.Workers + 2)
	db.SetConnMaxLifetime(time.Hour)

	queue, err := backlite.NewClient(backlite.ClientConfig{
		DB:              db,
		NumWorkers:      cfg.Workers,
		ReleaseAfter:    cfg.ReleaseAfter,
		CleanupInterval: cfg.CleanupInterval,
		Logger:          zapLogger{sugar: logger.Sugar()},
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create task queue: %w", err)
	}
	if err := queue.Install(); err != nil {
		db.Close()
		return nil, fmt.Errorf("install task queue schema: %w", err)
	}

	return &Client{
		queue:  queue,
		db:     db,
		config: cfg,
		logger: logger,
	}, nil
}

// Register adds queues; it must be called before Start.
func (c *Client) Register(queues ...backlite.Queue) {
	for _, q := range queues {
		c.queue.Register(q)
	}
}

// Start launches the workers and returns. A second call is a no-op.
func (c *Client) Start(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return
	}
	c.running = true

	c.logger.Info("Task queue started", zap.Int("workers", c.config.Workers))
	c.queue.Start(ctx)
}

// Stop waits for in-flight tasks until ctx expires. It reports whether every
// worker finished in time.
func (c *Client) Stop(ctx context.Context) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return true
	}
	c.running = false

	if !c.queue.Stop(ctx) {
		c.logger.Warn("Task queue stopped before all tasks completed")
		return false
	}
	c.logger.Info("Task queue stopped")
	return true
}

// Close releases the queue database. Call Stop first.
func (c *Client) Close() error {
	return c.db.Close()
}

// Ping checks that the queue database is reachable.
func (c *Client) Ping() error {
	return c.db.Ping()
}

// EnqueueExport schedules a catalog snapshot and returns the task id.
// An empty format means the exporter's configured default.
func (c *Client) EnqueueExport(ctx context.Context, format string) (string, error) {
	ids, err := c.queue.Add(ExportCatalogTask{Format: format}).Ctx(ctx).Save()
	if err != nil {
		return "", fmt.Errorf("enqueue %s: %w", ExportCatalogQueue, err)
	}
	c.logger.Debug("Snapshot enqueued", zap.String("task_id", ids[0]), zap.String("format", format))
	return ids[0], nil
}

// Status returns the status of a task by id. Unknown ids report
// backlite.TaskStatusNotFound rather than an error.
func (c *Client) Status(ctx context.Context, taskID string) (backlite.TaskStatus, error) {
	return c.queue.Status(ctx, taskID)
}

var statusNames = map[backlite.TaskStatus]string{
	backlite.TaskStatusPending:  "pending",
	backlite.TaskStatusRunning:  "running",
	backlite.TaskStatusSuccess:  "success",
	backlite.TaskStatusFailure:  "failure",
	backlite.TaskStatusNotFound: "not_found",
}

// StatusName renders a backlite status for API responses.
func StatusName(status backlite.TaskStatus) string {
	if name, ok := statusNames[status]; ok {
		return name
	}
	return "unknown"
}

// zapLogger implements backlite.Logger. backlite passes structured
// key/value pairs after the message.
type zapLogger struct {
	sugar *zap.SugaredLogger
}

func (l zapLogger) Info(message string, params ...any) {
	l.sugar.Infow(message, params...)
}

func (l zapLogger) Error(message string, params ...any) {
	l.sugar.Errorw(message, params...)
}
