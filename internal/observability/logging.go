// Package observability builds the process logger from configuration.
package observability

import (
	"io"
	"log/slog"

	"git.home.luguber.info/inful/cjbootstrap/internal/config"
)

// LogOptions selects the handler. Verbose forces debug level.
type LogOptions struct {
	Level   config.LogLevel
	Format  config.LogFormat
	Verbose bool
}

// NewLogger returns a slog logger writing to w: JSON when Format is json,
// text otherwise.
func NewLogger(w io.Writer, opts LogOptions) *slog.Logger {
	level := Level(opts.Level)
	if opts.Verbose {
		level = slog.LevelDebug
	}
	h := &slog.HandlerOptions{Level: level}
	if opts.Format == config.LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, h))
	}
	return slog.New(slog.NewTextHandler(w, h))
}

// Level maps a configured level onto slog. Unknown values mean info.
func Level(l config.LogLevel) slog.Level {
	switch l {
	case config.LogLevelDebug:
		return slog.LevelDebug
	case config.LogLevelWarn:
		return slog.LevelWarn
	case config.LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
