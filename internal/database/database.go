package database

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/mrlokans/library-catalog/internal/config"
	"github.com/mrlokans/library-catalog/internal/entities"
	"github.com/mrlokans/library-catalog/internal/logging"
)

type Database struct {
	DB *gorm.DB
}

// Options control how the connection is opened.
type Options struct {
	Driver config.DatabaseDriver
	Path   string // SQLite file
	DSN    string // Postgres DSN
	Logger gormlogger.Interface
}

// NewDatabase opens a SQLite database at dbPath with gorm logging silenced.
// It is a shorthand used by tests and CLI tools.
func NewDatabase(dbPath string) (*Database, error) {
	return Open(Options{
		Driver: config.DatabaseDriverSQLite,
		Path:   dbPath,
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
}

// Open connects to the configured database and migrates the catalog schema.
func Open(opts Options) (*Database, error) {
	dialector, err := dialectorFor(opts)
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = gormlogger.Default.LogMode(gormlogger.Warn)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&entities.Book{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Database{DB: db}, nil
}

// FromConfig opens the database described by cfg, logging through logger.
func FromConfig(cfg config.Database, logLevel string, logger *zap.Logger) (*Database, error) {
	db, err := Open(Options{
		Driver: cfg.Driver,
		Path:   cfg.Path,
		DSN:    cfg.DSN,
		Logger: logging.Gorm(logger, logging.GormLevel(logLevel)),
	})
	if err != nil {
		return nil, err
	}
	logger.Info("Database initialized",
		zap.String("driver", db.DB.Dialector.Name()),
		zap.String("path", cfg.Path))
	return db, nil
}

func dialectorFor(opts Options) (gorm.Dialector, error) {
	switch opts.Driver {
	case "", config.DatabaseDriverSQLite:
		if opts.Path == "" {
			return nil, fmt.Errorf("sqlite database path is not set")
		}
		return SQLiteDialector(opts.Path), nil
	case config.DatabaseDriverPostgres:
		if opts.DSN == "" {
			return nil, fmt.Errorf("postgres DSN is not set")
		}
		return postgres.Open(opts.DSN), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", opts.Driver)
	}
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks that the underlying connection is usable.
func (d *Database) Ping() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
