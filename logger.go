package bedrockproxy

import (
	"log/slog"
	"os"
	"strings"
)

// Logger is the process wide logger. It writes text lines to stderr.
var Logger *slog.Logger

const (
	LevelDebug = slog.Level(-4)
	LevelInfo  = slog.Level(0)
	LevelWarn  = slog.Level(4)
	LevelError = slog.Level(8)
)

var logLevel = new(slog.LevelVar)

func init() {
	logLevel.Set(ParseLevel(os.Getenv("LOG_LEVEL")))
	handler := slog.NewTextHandler(os.Stderr,
		&slog.HandlerOptions{Level: logLevel})
	Logger = slog.New(handler)
}

// SetLevel changes the level of the shared Logger.
func SetLevel(level slog.Level) {
	logLevel.Set(level)
}

// ParseLevel maps LOG_LEVEL values to a slog level.
// Unknown values fall back to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug", "trace", "all":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}
