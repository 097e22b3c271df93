// internal/pkg/logger/logger.go

// Package logger configures slog for a stdio MCP process. Everything is
// written to stderr; stdout belongs to the protocol transport and must stay
// clean of log output.
package logger

import (
	"log/slog"
	"os"
	"strings"
)

// SetupLogger initializes the process logger and installs it as the slog
// default. Format is "json" or "text"; anything else falls back to json.
func SetupLogger(level string, format string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     parseLevel(level),
		AddSource: parseLevel(level) == slog.LevelDebug,
	}

	var handler slog.Handler
	switch format {
	case "text":
		handler = NewPrettyTextHandler(os.Stderr, opts)
	default:
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}

	handler = NewRedactingHandler(handler)

	logger := slog.New(handler)
	slog.SetDefault(logger)

	return logger
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
