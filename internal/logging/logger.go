// Dataconsole - Dataset Query and Session Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataconsole

package logging

import (
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Output formats.
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// AppName is attached to every record written by a logger from New.
const AppName = "dataconsole"

// Config describes the process logger.
type Config struct {
	// Level is one of trace, debug, info, warn, error or disabled.
	// Unknown and empty levels mean info.
	Level string

	// Format is json or console.
	Format string

	// Caller adds file:line to each record.
	Caller bool

	// Output defaults to stderr so command output on stdout stays parseable.
	Output io.Writer
}

// DefaultConfig returns JSON at info level on stderr.
func DefaultConfig() Config {
	return Config{
		Level:  "info",
		Format: FormatJSON,
		Output: os.Stderr,
	}
}

var current atomic.Pointer[zerolog.Logger]

//nolint:gochecknoinits // the package logger must be usable before Init
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
	Init(DefaultConfig())
}

// New builds a logger from cfg without installing it.
func New(cfg Config) zerolog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if cfg.Format == FormatConsole {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.TimeOnly}
	}

	zc := zerolog.New(out).Level(ParseLevel(cfg.Level)).With().Timestamp().Str("app", AppName)
	if cfg.Caller {
		zc = zc.Caller()
	}
	return zc.Logger()
}

// Init replaces the package logger with one built from cfg. Commands call it
// once flags and config files are merged.
func Init(cfg Config) {
	SetLogger(New(cfg))
}

// ParseLevel maps a level name to a zerolog level, case-insensitively.
func ParseLevel(level string) zerolog.Level {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "warning" {
		return zerolog.WarnLevel
	}
	if level == "" {
		return zerolog.InfoLevel
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}

// Logger returns the package logger.
func Logger() zerolog.Logger {
	return *current.Load()
}

// SetLogger installs l as the package logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func SetLogger(l zerolog.Logger) {
	current.Store(&l)
}

// Level returns the package logger's minimum level.
func Level() zerolog.Level {
	return current.Load().GetLevel()
}

// WithComponent returns a child of the package logger tagged with component.
//
//	log := logging.WithComponent("mockapi")
func WithComponent(component string) zerolog.Logger {
	return current.Load().With().Str("component", component).Logger()
}

// With returns a context for building a child of the package logger.
func With() zerolog.Context { return current.Load().With() }

// Debug starts a debug record on the package logger.
func Debug() *zerolog.Event { return current.Load().Debug() }

// Info starts an info record on the package logger.
func Info() *zerolog.Event { return current.Load().Info() }

// Warn starts a warn record on the package logger.
func Warn() *zerolog.Event { return current.Load().Warn() }

// Error starts an error record on the package logger.
func Error() *zerolog.Event { return current.Load().Error() }

// Err starts an error record carrying err. A nil err logs at info.
func Err(err error) *zerolog.Event { return current.Load().Err(err) }

// NewTestLogger returns a debug-level logger writing JSON to w.
func NewTestLogger(w io.Writer) zerolog.Logger {
	return zerolog.New(w).Level(zerolog.DebugLevel).With().Timestamp().Logger()
}
