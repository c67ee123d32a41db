// Package database provides the data access layer for the catalog.
//
// # Architecture
//
//	database/
//	├── database.go      # Driver selection, connection setup, migrations
//	└── books/           # Book CRUD, search and paginated queries
//
// # Usage
//
//	db, err := database.FromConfig(cfg.Database, cfg.Logging.Level, logger)
//	repo := books.NewRepository(db.DB)
//	book, found, err := repo.GetBookByID(ctx, 42)
//
// SQLite is the default driver. Setting DATABASE_DRIVER=postgres switches to
// PostgreSQL (pgx) with DATABASE_DSN; the schema is the same single books
// table in both cases and is created by AutoMigrate on startup.
package database
