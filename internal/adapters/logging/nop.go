// Package logging provides implementations of the ports.Logger interface:
// a NopLogger for disabled logging and a zerolog-backed logger for text or
// JSON output.
package logging

import (
	"context"

	"github.com/felixgeelhaar/txext/internal/ports"
)

// NopLogger drops every entry. Loaders and services built without a logger
// use it, so hooks still find a logger in their context.
type NopLogger struct {
	level ports.Level
}

// NewNopLogger returns a NopLogger reporting LevelInfo.
func NewNopLogger() *NopLogger {
	return &NopLogger{level: ports.LevelInfo}
}

func (l *NopLogger) Debug(context.Context, string, ...ports.Field) {}

func (l *NopLogger) Info(context.Context, string, ...ports.Field) {}

func (l *NopLogger) Warn(context.Context, string, ...ports.Field) {}

func (l *NopLogger) Error(context.Context, string, ...ports.Field) {}

// With ignores fields; per-load fields such as load_id are dropped too.
func (l *NopLogger) With(...ports.Field) ports.Logger {
	return l
}

// Level returns the level last set, which filters nothing.
func (l *NopLogger) Level() ports.Level {
	return l.level
}

func (l *NopLogger) SetLevel(level ports.Level) {
	l.level = level
}

var _ ports.Logger = (*NopLogger)(nil)
