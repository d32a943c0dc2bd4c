// Package logging builds the zerolog logger shared by the kernel and its
// extensions.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/km-arc/go-preservation/framework/config"
)

const (
	FormatConsole = "console"
	FormatPretty  = "pretty"
	FormatJSON    = "json"
)

// New creates a logger writing to stderr as configured by cfg.
func New(cfg config.LogConfig) zerolog.Logger {
	return NewWithWriter(cfg, os.Stderr)
}

// NewWithWriter creates a logger writing to out. Unknown levels fall back
// to info.
func NewWithWriter(cfg config.LogConfig, out io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	var zl zerolog.Logger
	switch strings.ToLower(cfg.Format) {
	case FormatConsole, FormatPretty:
		zl = zerolog.New(zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: "15:04:05",
			NoColor:    cfg.NoColor,
		})
	default:
		zl = zerolog.New(out)
	}

	return zl.Level(level).With().Timestamp().Logger()
}

// Component returns l tagged with a component name.
func Component(l zerolog.Logger, name string) zerolog.Logger {
	return l.With().Str("component", name).Logger()
}
