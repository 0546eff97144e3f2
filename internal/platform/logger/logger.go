package logger

import (
	"log/slog"
	"os"
	"strings"
)

// New returns a text slog logger writing to stdout. The level comes from
// BITID_LOG_LEVEL (debug|info|warn|error), defaulting to info.
func New() *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(os.Getenv("BITID_LOG_LEVEL")) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
