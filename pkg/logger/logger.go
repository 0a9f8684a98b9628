package logger

import (
	"log/slog"
	"os"
)

var defaultLogger *slog.Logger

// Init builds the process-wide logger. Production emits JSON at info level,
// everything else gets human-readable text at debug level.
func Init(env string) {
	defaultLogger = slog.New(handlerFor(env))
	slog.SetDefault(defaultLogger)
}

func handlerFor(env string) slog.Handler {
	if env == "production" {
		return slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	return slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
}

// LoggerWrapper returns the process-wide logger, initializing a development
// one on first use so callers never hit a nil logger.
func LoggerWrapper() *slog.Logger {
	if defaultLogger == nil {
		Init("development")
	}
	return defaultLogger
}
