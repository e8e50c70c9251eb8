package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/banking-txn-simulator/internal/config"
)

// NewLogger creates a JSON slog.Logger writing to stdout
func NewLogger(cfg *config.Config) *slog.Logger {
	return NewLoggerWithWriter(cfg, os.Stdout)
}

// NewLoggerWithWriter creates a JSON slog.Logger writing to w, tagged with the
// application name, environment and host so batch reports from several
// simulator instances can be told apart.
func NewLoggerWithWriter(cfg *config.Config, w io.Writer) *slog.Logger {
	level := ParseLevel(cfg.Logging.Level)

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	host, _ := os.Hostname()
	logger := slog.New(slog.NewJSONHandler(w, opts)).With(
		"service", cfg.Application.Name,
		"env", cfg.Application.Env,
		"host", host,
	)

	logger.Info("logger initialized", "level", level)

	return logger
}

// ParseLevel maps a config level name onto a slog level, defaulting to info
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
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
