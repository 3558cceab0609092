// Package logging builds the zerolog loggers used across the CLI.
package logging

import (
	"context"
	"io"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// New returns a human-readable logger writing to w.
//
// The level parameter can be one of: trace, debug, info, warn, error, fatal.
func New(level string, w io.Writer) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Logger{}, err
	}

	l := zerolog.New(zerolog.ConsoleWriter{Out: w, NoColor: true, TimeFormat: "15:04:05"}).
		With().
		Timestamp().
		Logger().
		Level(lvl)

	return l, nil
}

// Component creates a new logger with a component identifier.
// Uses the "cmp" key for consistency with zerolog conventions.
func Component(name string) zerolog.Logger {
	return log.With().Str("cmp", name).Logger()
}

// From returns the context logger tagged with a component, falling back to the
// global logger when the context carries none.
func From(ctx context.Context, name string) zerolog.Logger {
	l := zerolog.Ctx(ctx)
	if l.GetLevel() == zerolog.Disabled {
		return Component(name)
	}
	return l.With().Str("cmp", name).Logger()
}
