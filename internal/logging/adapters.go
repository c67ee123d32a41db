package logging

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

const gormSlowThreshold = 200 * time.Millisecond

// gormLogger implements gorm's logger.Interface on zap. Failed statements
// are logged at Error, slow ones at Warn and everything else at Debug.
type gormLogger struct {
	zap   *zap.Logger
	level gormlogger.LogLevel
	slow  time.Duration
}

// Gorm returns a gorm logger writing through zap. Queries slower than 200ms
// are reported from level Warn up; record-not-found is never an error.
func Gorm(logger *zap.Logger, level gormlogger.LogLevel) gormlogger.Interface {
	return &gormLogger{
		zap:   logger.Named("gorm"),
		level: level,
		slow:  gormSlowThreshold,
	}
}

func (l *gormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *gormLogger) Info(_ context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Info {
		l.zap.Info(fmt.Sprintf(msg, args...))
	}
}

func (l *gormLogger) Warn(_ context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Warn {
		l.zap.Warn(fmt.Sprintf(msg, args...))
	}
}

func (l *gormLogger) Error(_ context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Error {
		l.zap.Error(fmt.Sprintf(msg, args...))
	}
}

func (l *gormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	fields := func() []zap.Field {
		sql, rows := fc()
		return []zap.Field{
			zap.String("sql", sql),
			zap.Int64("rows", rows),
			zap.Duration("elapsed", elapsed),
		}
	}

	switch {
	case err != nil && l.level >= gormlogger.Error && !errors.Is(err, gormlogger.ErrRecordNotFound):
		l.zap.Error("Query failed", append(fields(), zap.Error(err))...)
	case l.slow > 0 && elapsed > l.slow && l.level >= gormlogger.Warn:
		l.zap.Warn("Slow query", append(fields(), zap.Duration("threshold", l.slow))...)
	case l.level >= gormlogger.Info:
		l.zap.Debug("Query", fields()...)
	}
}

// GormLevel maps the application log level onto gorm's coarser levels.
func GormLevel(appLevel string) gormlogger.LogLevel {
	switch appLevel {
	case "debug":
		return gormlogger.Info
	case "info", "warn":
		return gormlogger.Warn
	default:
		return gormlogger.Error
	}
}
