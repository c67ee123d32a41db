package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type DatabaseDriver string

const (
	DatabaseDriverSQLite   DatabaseDriver = "sqlite"   // File-backed SQLite (default)
	DatabaseDriverPostgres DatabaseDriver = "postgres" // PostgreSQL via pgx
)

type (
	Config struct {
		HTTP
		Global
		Database
		Logging
		Metrics
		Tasks
		Snapshot
		Client
	}

	HTTP struct {
		Port               int32
		Host               string
		CORSAllowedOrigins []string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Driver DatabaseDriver
		Path   string // SQLite file path
		DSN    string // Postgres connection string
	}
	Logging struct {
		Level  string // debug, info, warn, error
		Format string // console or json
	}
	Metrics struct {
		Enabled bool
	}
	Tasks struct {
		Enabled         bool
		Workers         int
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
	}
	Snapshot struct {
		Enabled  bool
		Schedule string // Cron format: "0 3 * * *" = daily at 03:00
		Dir      string
		Format   string // json or yaml
	}
	Client struct {
		BaseURL string // Root URL of a running catalog server
		Timeout time.Duration
	}
)

// NewConfig reads configuration from the environment, after loading a
// .env file from the working directory if one exists.
func NewConfig() *Config {
	// A missing .env is the normal case outside local development.
	_ = godotenv.Load()

	return newConfigFromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", DefaultPort)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("cors_allowed_origins", "*")
	v.SetDefault("shutdown_timeout_in_seconds", 5)
	v.SetDefault("database_driver", string(DatabaseDriverSQLite))
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("database_dsn", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
	v.SetDefault("metrics_enabled", true)

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 1)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")

	// Snapshot defaults
	v.SetDefault("snapshot_enabled", false)
	v.SetDefault("snapshot_schedule", "0 3 * * *") // Daily at 03:00
	v.SetDefault("snapshot_dir", "./snapshots")
	v.SetDefault("snapshot_format", "json")

	// Client defaults
	v.SetDefault("catalog_api_url", DefaultClientBaseURL)
	v.SetDefault("catalog_client_timeout", "10s")
	return v
}

func newConfigFromViper(v *viper.Viper) *Config {
	return &Config{
		HTTP: HTTP{
			Port:               v.GetInt32("PORT"),
			Host:               v.GetString("HOST"),
			CORSAllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Driver: DatabaseDriver(v.GetString("DATABASE_DRIVER")),
			Path:   v.GetString("DATABASE_PATH"),
			DSN:    v.GetString("DATABASE_DSN"),
		},
		Logging: Logging{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Metrics: Metrics{
			Enabled: v.GetBool("METRICS_ENABLED"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
		Snapshot: Snapshot{
			Enabled:  v.GetBool("SNAPSHOT_ENABLED"),
			Schedule: v.GetString("SNAPSHOT_SCHEDULE"),
			Dir:      v.GetString("SNAPSHOT_DIR"),
			Format:   v.GetString("SNAPSHOT_FORMAT"),
		},
		Client: Client{
			BaseURL: v.GetString("CATALOG_API_URL"),
			Timeout: v.GetDuration("CATALOG_CLIENT_TIMEOUT"),
		},
	}
}
