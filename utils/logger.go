package utils

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

var Logger *slog.Logger
var once sync.Once

// Init sets up the process logger. Only the first call has an effect.
func Init(level string) {
	once.Do(func() {
		Logger = newLogger(os.Stderr, level)
	})
}

// L returns the process logger, or a default info logger when Init was never called.
func L() *slog.Logger {
	if Logger == nil {
		return slog.Default()
	}
	return Logger
}

// ParseLevel maps a config level name to a slog level. Unknown names map to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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

func newLogger(w io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)}))
}
