package infrastructure

import (
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"regionstats/internal/config"
)

// NewLogger creates the run logger. Every record carries the run_id so the
// lines of one invocation can be grouped.
func NewLogger(cfg config.LoggingConfig, w io.Writer) *slog.Logger {
	return NewLoggerWithRunID(cfg, w, uuid.NewString())
}

// NewLoggerWithRunID is NewLogger with a caller-supplied run id.
func NewLoggerWithRunID(cfg config.LoggingConfig, w io.Writer, runID string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Level),
	}

	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler).With(slog.String("run_id", runID))
}

// parseLogLevel converts string log level to slog.Level
func parseLogLevel(level string) slog.Level {
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
