package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/personal-ledger/internal/config"
)

// NewLogger creates a JSON slog.Logger writing to the configured stream
func NewLogger(cfg *config.Config) *slog.Logger {
	return New(cfg, outputFor(cfg.Logging.Output))
}

// New creates a JSON slog.Logger writing to w
func New(cfg *config.Config, w io.Writer) *slog.Logger {
	level := ParseLevel(cfg.Logging.Level)

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	logger := slog.New(slog.NewJSONHandler(w, opts)).With("app", cfg.Application.Name)
	logger.Debug("Logger initialized", "level", level.String())

	return logger
}

// ParseLevel maps a level name to slog, defaulting to info
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func outputFor(name string) io.Writer {
	if strings.EqualFold(name, "stderr") {
		return os.Stderr
	}
	return os.Stdout
}
