package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := newConfigFromViper(newViper())

	assert.Equal(t, int32(8080), cfg.HTTP.Port)
	assert.Equal(t, "0.0.0.0", cfg.HTTP.Host)
	assert.Equal(t, []string{"*"}, cfg.HTTP.CORSAllowedOrigins)
	assert.Equal(t, DatabaseDriverSQLite, cfg.Database.Driver)
	assert.Equal(t, DefaultDatabasePath, cfg.Database.Path)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.True(t, cfg.Metrics.Enabled)
	assert.True(t, cfg.Tasks.Enabled)
	assert.Equal(t, 15*time.Minute, cfg.Tasks.ReleaseAfter)
	assert.False(t, cfg.Snapshot.Enabled)
	assert.Equal(t, "0 3 * * *", cfg.Snapshot.Schedule)
	assert.Equal(t, "json", cfg.Snapshot.Format)
	assert.Equal(t, DefaultClientBaseURL, cfg.Client.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Client.Timeout)
}

func TestNewConfig_EnvironmentOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DATABASE_DRIVER", "postgres")
	t.Setenv("DATABASE_DSN", "postgres://catalog@localhost/catalog")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.example, http://b.example,")
	t.Setenv("SNAPSHOT_FORMAT", "yaml")
	t.Setenv("CATALOG_CLIENT_TIMEOUT", "3s")

	cfg := newConfigFromViper(newViper())

	assert.Equal(t, int32(9090), cfg.HTTP.Port)
	assert.Equal(t, DatabaseDriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "postgres://catalog@localhost/catalog", cfg.Database.DSN)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.HTTP.CORSAllowedOrigins)
	assert.Equal(t, "yaml", cfg.Snapshot.Format)
	assert.Equal(t, 3*time.Second, cfg.Client.Timeout)
}

func TestSplitList(t *testing.T) {
	assert.Nil(t, splitList(""))
	assert.Equal(t, []string{"a"}, splitList(" a "))
	assert.Equal(t, []string{"a", "b"}, splitList("a,,b"))
}
