package entrypoint

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrlokans/library-catalog/internal/config"
	"github.com/mrlokans/library-catalog/internal/database"
	"github.com/mrlokans/library-catalog/internal/database/books"
	http_controllers "github.com/mrlokans/library-catalog/internal/http"
	"github.com/mrlokans/library-catalog/internal/logging"
	"github.com/mrlokans/library-catalog/internal/metrics"
	"github.com/mrlokans/library-catalog/internal/scheduler"
	"github.com/mrlokans/library-catalog/internal/services"
	"github.com/mrlokans/library-catalog/internal/snapshot"
	"github.com/mrlokans/library-catalog/internal/tasks"
)

// App is a fully wired catalog server that has not started serving yet.
type App struct {
	Router *gin.Engine

	logger     *zap.Logger
	db         *database.Database
	taskClient *tasks.Client
	scheduler  *scheduler.SnapshotScheduler
	cancel     context.CancelFunc
}

// NewApp opens the database and builds every component the config enables.
func NewApp(cfg *config.Config, version string, logger *zap.Logger) (*App, error) {
	app := &App{logger: logger}

	db, err := database.FromConfig(cfg.Database, cfg.Logging.Level, logger)
	if err != nil {
		return nil, fmt.Errorf("initialize database: %w", err)
	}
	app.db = db

	catalog := services.NewCatalogService(books.NewRepository(db.DB))

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	routerCfg := http_controllers.RouterConfig{
		Catalog:            catalog,
		Database:           db,
		Logger:             logger,
		Metrics:            m,
		CORSAllowedOrigins: cfg.HTTP.CORSAllowedOrigins,
		Version:            version,
	}

	if cfg.Tasks.Enabled {
		if err := app.initTasks(cfg, catalog, m); err != nil {
			app.Close()
			return nil, err
		}
		routerCfg.Snapshots = app.taskClient
	} else if cfg.Snapshot.Enabled {
		logger.Warn("Scheduled snapshots need the task queue; set TASKS_ENABLED=true to enable them")
	}

	app.Router = http_controllers.NewRouter(routerCfg)
	return app, nil
}

func (a *App) initTasks(cfg *config.Config, catalog *services.CatalogService, m *metrics.Metrics) error {
	format, err := snapshot.ParseFormat(cfg.Snapshot.Format)
	if err != nil {
		return fmt.Errorf("snapshot format: %w", err)
	}
	exporter, err := snapshot.NewExporter(catalog, cfg.Snapshot.Dir, format)
	if err != nil {
		return fmt.Errorf("initialize snapshot exporter: %w", err)
	}
	if m != nil {
		exporter.SetObserver(m)
	}

	// Postgres deployments still keep the queue in a local SQLite file.
	queuePath := cfg.Database.Path
	if queuePath == "" {
		queuePath = config.DefaultDatabasePath
	}
	taskClient, err := tasks.NewClient(queuePath, tasks.FromConfig(cfg.Tasks), a.logger)
	if err != nil {
		return fmt.Errorf("initialize task queue: %w", err)
	}
	taskClient.Register(tasks.NewExportCatalogQueue(exporter, a.logger))
	a.taskClient = taskClient
	a.logger.Info("Task queue initialized",
		zap.String("path", tasks.DBPath(queuePath)),
		zap.Int("workers", cfg.Tasks.Workers))

	if cfg.Snapshot.Enabled {
		s, err := scheduler.NewSnapshotScheduler(cfg.Snapshot.Schedule, taskClient, a.logger)
		if err != nil {
			return err
		}
		a.scheduler = s
	}
	return nil
}

// Start launches the task workers and the snapshot scheduler in the
// background. Both stop when Shutdown is called.
func (a *App) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	if a.taskClient != nil {
		a.taskClient.Start(ctx)
	}
	if a.scheduler != nil {
		if err := a.scheduler.Start(ctx); err != nil {
			return fmt.Errorf("start snapshot scheduler: %w", err)
		}
		if next := a.scheduler.NextRun(); next != nil {
			a.logger.Info("Snapshot scheduler started", zap.Time("next_run", *next))
		}
	}
	return nil
}

// Stop halts the scheduler and the task workers. The catalog stays usable,
// so requests still in flight can finish.
func (a *App) Stop(ctx context.Context) {
	if a.scheduler != nil {
		a.scheduler.Stop()
	}
	if a.taskClient != nil {
		if !a.taskClient.Stop(ctx) {
			a.logger.Warn("Task workers did not finish before the shutdown deadline")
		}
	}
	if a.cancel != nil {
		a.cancel()
	}
}

// Close releases the task queue and catalog databases. Call it after Stop
// and after the HTTP server has drained.
func (a *App) Close() {
	if a.taskClient != nil {
		if err := a.taskClient.Close(); err != nil {
			a.logger.Error("Error closing task client", zap.Error(err))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error("Error closing database", zap.Error(err))
		}
	}
}

// Shutdown is Stop followed by Close, for callers with no server to drain.
func (a *App) Shutdown(ctx context.Context) {
	a.Stop(ctx)
	a.Close()
}

// Lifecycle is the background work Serve winds down around the HTTP drain.
type Lifecycle interface {
	Stop(ctx context.Context)
	Close()
}

// Serve runs the HTTP server until SIGINT or SIGTERM, then shuts it down
// within the configured timeout. app is stopped before the drain and closed
// after it; it may be nil.
func Serve(router *gin.Engine, cfg *config.Config, logger *zap.Logger, app Lifecycle) error {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second
	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)

	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Starting server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err, ok := <-serveErr:
		if app != nil {
			app.Stop(context.Background())
			app.Close()
		}
		if ok {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-quit:
	}
	logger.Info("Shutting down server", zap.Duration("timeout", timeout))

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if app != nil {
		app.Stop(ctx)
	}
	err := srv.Shutdown(ctx)
	if app != nil {
		app.Close()
	}
	if err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("Server exiting")
	return nil
}

// Run builds the application from cfg and serves it until interrupted.
func Run(cfg *config.Config, version string) error {
	logger, flush, err := logging.New(cfg.Logging, version)
	if err != nil {
		return err
	}
	defer flush()

	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	logger.Info("Starting Library Catalog", zap.String("version", version))

	app, err := NewApp(cfg, version, logger)
	if err != nil {
		logger.Error("Failed to initialize application", zap.Error(err))
		return err
	}
	if err := app.Start(); err != nil {
		app.Shutdown(context.Background())
		return err
	}

	return Serve(app.Router, cfg, logger, app)
}
