package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// New returns a logger writing to stdout. Production environments get JSON
// records; everything else gets text records with source locations.
func New(lvl string, environment string) *slog.Logger {
	return NewWithWriter(os.Stdout, lvl, environment)
}

func NewWithWriter(w io.Writer, lvl string, environment string) *slog.Logger {
	prod := strings.ToLower(environment) == "prod"

	opts := &slog.HandlerOptions{
		Level:     parseLevel(lvl),
		AddSource: !prod,
	}

	var handler slog.Handler
	if prod {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler).With(
		slog.String("environment", environment),
	)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
