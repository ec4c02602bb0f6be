package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	defaultLogger *slog.Logger
	initOnce      sync.Once
)

// Init configures the global JSON logger at the given level. An empty level
// falls back to LOG_LEVEL. Logs go to stderr so CLI output on stdout stays
// clean. Call this early in main() before any logging occurs.
func Init(level string) {
	if level == "" {
		level = os.Getenv("LOG_LEVEL")
	}
	defaultLogger = New(os.Stderr, level)
	slog.SetDefault(defaultLogger)
}

// New returns a JSON logger writing to w.
func New(w io.Writer, level string) *slog.Logger {
	lvl := parseLevel(level)
	opts := &slog.HandlerOptions{
		Level:     lvl,
		AddSource: lvl == slog.LevelDebug,
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// parseLevel converts string to slog.Level
func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
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

// Default returns the configured default logger
func Default() *slog.Logger {
	initOnce.Do(func() {
		if defaultLogger == nil {
			Init("")
		}
	})
	return defaultLogger
}
