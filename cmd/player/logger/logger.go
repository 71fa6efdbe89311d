// Package logger builds the player's slog logger from configuration.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/karu-dev/chunkplay/cmd/player/config"
)

// New creates a logger honoring the configured level, format and destination.
// When a log file is configured it is opened in append mode and held for the
// lifetime of the process. With the terminal display active and no log file,
// logs are discarded so they cannot corrupt the screen.
func New(cfg *config.Config) (*slog.Logger, error) {
	var out io.Writer = os.Stderr
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		out = f
	} else if cfg.Display == "terminal" {
		out = io.Discard
	}

	opts := &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	return slog.New(handler), nil
}

func parseLevel(level string) slog.Level {
	switch level {
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
