// Package logging configures the process-wide slog logger.
//
// Logs are JSON on stderr. LOG_LEVEL selects the level (debug, info, warn,
// error); unset or unknown values mean info. Every record carries the
// module and version attributes, and debug records include the source
// location.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// EnvLogLevel names the environment variable read for the default level.
const EnvLogLevel = "LOG_LEVEL"

// ParseLevel maps a level name to a slog.Level. Matching is
// case-insensitive and unknown names fall back to info.
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

// NewStructuredLogger returns a JSON logger on stderr.
func NewStructuredLogger(module, version, level string) *slog.Logger {
	return newLogger(os.Stderr, module, version, ParseLevel(level))
}

func newLogger(w io.Writer, module, version string, lvl slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:     lvl,
		AddSource: lvl <= slog.LevelDebug,
	})
	return slog.New(handler).With("module", module, "version", version)
}

// SetDefaultStructuredLogger installs the default logger using LOG_LEVEL.
func SetDefaultStructuredLogger(module, version string) {
	SetDefaultStructuredLoggerWithLevel(module, version, os.Getenv(EnvLogLevel))
}

// SetDefaultStructuredLoggerWithLevel installs the default logger at an
// explicit level.
func SetDefaultStructuredLoggerWithLevel(module, version, level string) {
	slog.SetDefault(NewStructuredLogger(module, version, level))
}
