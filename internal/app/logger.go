package app

import (
	"io"
	"log/slog"
)

// newLogger builds the compiler's diagnostic logger from the validated
// config. Diagnostics are kept separate from the rendered swatch output on
// stdout, so a json-format run stays machine-readable end to end.
func newLogger(cfg *Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.level()}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// level maps the config's log level onto slog's scale. cli.Parse rejects
// anything but the four known names; an unset value means info.
func (c *Config) level() slog.Level {
	switch c.LogLevel {
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
