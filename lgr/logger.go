// Package lgr owns the process-wide structured logger.
package lgr

import (
	"log/slog"
	"os"
	"strings"
)

// Logger is shared by every package. JSON to stdout; level comes from the
// LOG_LEVEL env var and defaults to info.
var Logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
	Level: levelFromEnv(),
}))

func levelFromEnv() slog.Level {
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
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
