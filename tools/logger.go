package tools

import (
	"io"
	"log/slog"
	"os"

	"github.com/joe-ervin05/brick/config"
)

// Logger is the global structured logger instance.
var Logger = NewLogger(os.Stdout, config.Cfg.LogLevel)

// NewLogger returns a JSON logger writing to w at the given minimum level.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}

// SetLogLevel replaces Logger with one at the given level.
func SetLogLevel(level slog.Level) {
	Logger = NewLogger(os.Stdout, level)
}
