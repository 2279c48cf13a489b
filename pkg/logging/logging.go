// Package logging configures the process-wide slog default logger.
package logging

import (
	"log/slog"
	"os"
	"strings"
)

// SetDefaultStructuredLogger installs a JSON slog handler on stderr as the
// default logger, tagged with the service name and version. The level is
// taken from the LOG_LEVEL environment variable (debug, info, warn, error)
// and defaults to info.
func SetDefaultStructuredLogger(name, version string) {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: LevelFromEnv(),
	})

	logger := slog.New(handler).With(
		slog.String("service", name),
		slog.String("version", version),
	)

	slog.SetDefault(logger)
}

// SetDefaultLogger installs the default logger for CLI use. Debug lowers the
// level to debug; json switches from the human-readable text handler to the
// JSON handler used by the API server.
func SetDefaultLogger(debug, json bool) {
	level := LevelFromEnv()
	if debug {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if json {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	slog.SetDefault(slog.New(handler))
}

// LevelFromEnv parses LOG_LEVEL into a slog.Level, defaulting to info.
func LevelFromEnv() slog.Level {
	return ParseLevel(os.Getenv("LOG_LEVEL"))
}

// ParseLevel converts a level name to a slog.Level. Unknown names map to
// info so a typo never silences logs entirely.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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
