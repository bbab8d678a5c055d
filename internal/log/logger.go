// Package log provides structured logging for the recommendation engine.
package log

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/fluxkit/precedent/internal/config"
)

// New creates a slog.Logger based on configuration.
func New(cfg config.AppConfig) *slog.Logger {
	return NewWithWriter(os.Stderr, cfg.LogFormat(), cfg.LogLevel())
}

// NewWithWriter creates a slog.Logger that writes to the specified writer.
func NewWithWriter(w io.Writer, format config.LogFormat, level string) *slog.Logger {
	lvl := ParseLevel(level)

	var handler slog.Handler
	switch format {
	case config.LogFormatJSON:
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})
	default:
		handler = newTerminalHandler(w, &slog.HandlerOptions{Level: lvl})
	}

	return slog.New(handler)
}

// ParseLevel maps a level name to a slog.Level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
