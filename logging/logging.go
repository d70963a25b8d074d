// Package logging installs the slog handler shared by the API server and the
// evaluate command. Packages log through New so every record names the part
// of the program that wrote it.
package logging

import (
	"io"
	"log/slog"
	"strings"
)

// Setup makes a handler writing to w the slog default and returns it.
// Every record carries a "service" attribute naming the binary.
func Setup(w io.Writer, service, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var handler slog.Handler = slog.NewTextHandler(w, opts)
	if format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	}

	logger := slog.New(handler).With(slog.String("service", service))
	slog.SetDefault(logger)
	return logger
}

// parseLevel accepts slog level names, case-insensitive, plus "warning".
// Anything unparseable logs at info.
func parseLevel(s string) slog.Level {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "warning") {
		return slog.LevelWarn
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func New(component string) *slog.Logger {
	return slog.Default().With(slog.String("component", component))
}
