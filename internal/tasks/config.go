package tasks

import (
	"time"

	"github.com/mrlokans/library-catalog/internal/config"
)

// Config holds configuration for the task queue system.
type Config struct {
	// Workers is the number of concurrent task workers. Default: 1
	Workers int

	// ReleaseAfter is when stuck tasks are released back to queue. Default: 15m
	ReleaseAfter time.Duration

	// CleanupInterval is how often to clean up completed tasks. Default: 1h
	CleanupInterval time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Workers:         1,
		ReleaseAfter:    15 * time.Minute,
		CleanupInterval: 1 * time.Hour,
	}
}

// FromConfig fills unset application settings with defaults.
func FromConfig(cfg config.Tasks) Config {
	out := DefaultConfig()
	if cfg.Workers > 0 {
		out.Workers = cfg.Workers
	}
	if cfg.ReleaseAfter > 0 {
		out.ReleaseAfter = cfg.ReleaseAfter
	}
	if cfg.CleanupInterval > 0 {
		out.CleanupInterval = cfg.CleanupInterval
	}
	return out
}
