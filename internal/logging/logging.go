// Package logging builds the application's zap logger and the adapter that
// routes gorm output through it.
package logging

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/mrlokans/library-catalog/internal/config"
)

// New builds a logger from the logging section of the config. Console
// format is meant for terminals; json for log shippers.
func New(cfg config.Logging, version string) (*zap.Logger, func(), error) {
	level, err := zapcore.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.LevelKey = "level"
	encoderConfig.NameKey = "name"
	encoderConfig.MessageKey = "msg"
	encoderConfig.CallerKey = "caller"
	encoderConfig.StacktraceKey = "stacktrace"

	var encoder zapcore.Encoder
	switch strings.ToLower(cfg.Format) {
	case "", "console":
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	case "json":
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	default:
		return nil, nil, fmt.Errorf("invalid log format %q: expected console or json", cfg.Format)
	}

	core := zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), level)
	logger := zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)).
		With(zap.String("version", version))

	flush := func() {
		// Sync on stdout fails with EINVAL on some platforms; nothing to report.
		_ = logger.Sync()
	}
	return logger, flush, nil
}
