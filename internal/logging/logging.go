// Package logging builds the slog logger shared by the other packages.
//
// Components receive a *slog.Logger by injection and tag their records with a
// "component" attribute. The level comes from configuration, with LOG_LEVEL
// in the environment taking precedence.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// ParseLevel maps a level name to a slog level. Unknown names give Info.
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

// New returns a text logger writing to w at the given level.
// LOG_LEVEL overrides level when set.
func New(w io.Writer, level string) *slog.Logger {
	if env := os.Getenv("LOG_LEVEL"); env != "" {
		level = env
	}
	if w == nil {
		w = os.Stderr
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)})
	return slog.New(handler)
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
