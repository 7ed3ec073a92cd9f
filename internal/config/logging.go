package config

import (
	"log/slog"
	"os"
	"strings"
)

// NormalizeLogLevel maps a configured level name to a slog level, defaulting
// to info.
func NormalizeLogLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SetupLogging installs the process-wide default logger according to the
// logging configuration. verbose forces debug level.
func (c *Config) SetupLogging(verbose bool) *slog.Logger {
	level := NormalizeLogLevel(c.Logging.Level)
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.EqualFold(c.Logging.Format, "json") {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}
