package logging

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/felixgeelhaar/txext/internal/ports"
	"github.com/rs/zerolog"
)

// ZerologLogger writes structured log entries through zerolog, either as
// human-readable console lines or as JSON objects.
type ZerologLogger struct {
	mu     sync.RWMutex
	logger zerolog.Logger
	level  ports.Level
}

type zerologConfig struct {
	out         io.Writer
	level       ports.Level
	jsonFormat  bool
	includeTime bool
	noColor     bool
}

// ZerologOption configures the zerolog logger.
type ZerologOption func(*zerologConfig)

// WithOutput sets the output writer (default: os.Stderr).
func WithOutput(w io.Writer) ZerologOption {
	return func(c *zerologConfig) {
		c.out = w
	}
}

// WithLevel sets the minimum log level (default: Info).
func WithLevel(level ports.Level) ZerologOption {
	return func(c *zerologConfig) {
		c.level = level
	}
}

// WithJSONFormat enables JSON output format.
func WithJSONFormat(enabled bool) ZerologOption {
	return func(c *zerologConfig) {
		c.jsonFormat = enabled
	}
}

// WithTimestamp includes a timestamp in log entries.
func WithTimestamp(enabled bool) ZerologOption {
	return func(c *zerologConfig) {
		c.includeTime = enabled
	}
}

// WithNoColor disables ANSI colors in console output.
func WithNoColor(enabled bool) ZerologOption {
	return func(c *zerologConfig) {
		c.noColor = enabled
	}
}

// NewZerologLogger creates a logger backed by zerolog.
func NewZerologLogger(opts ...ZerologOption) *ZerologLogger {
	cfg := zerologConfig{
		out:         os.Stderr,
		level:       ports.LevelInfo,
		includeTime: true,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	out := cfg.out
	if !cfg.jsonFormat {
		cw := zerolog.ConsoleWriter{
			Out:        cfg.out,
			TimeFormat: time.RFC3339,
			NoColor:    cfg.noColor,
		}
		if !cfg.includeTime {
			cw.PartsExclude = []string{zerolog.TimestampFieldName}
		}
		out = cw
	}

	zctx := zerolog.New(out).With()
	if cfg.includeTime {
		zctx = zctx.Timestamp()
	}

	return &ZerologLogger{
		logger: zctx.Logger(),
		level:  cfg.level,
	}
}

// Debug logs a debug message.
func (l *ZerologLogger) Debug(ctx context.Context, msg string, fields ...ports.Field) {
	l.log(ctx, ports.LevelDebug, msg, fields)
}

// Info logs an informational message.
func (l *ZerologLogger) Info(ctx context.Context, msg string, fields ...ports.Field) {
	l.log(ctx, ports.LevelInfo, msg, fields)
}

// Warn logs a warning message.
func (l *ZerologLogger) Warn(ctx context.Context, msg string, fields ...ports.Field) {
	l.log(ctx, ports.LevelWarn, msg, fields)
}

// Error logs an error message.
func (l *ZerologLogger) Error(ctx context.Context, msg string, fields ...ports.Field) {
	l.log(ctx, ports.LevelError, msg, fields)
}

// With returns a new logger with additional fields.
func (l *ZerologLogger) With(fields ...ports.Field) ports.Logger {
	l.mu.RLock()
	defer l.mu.RUnlock()

	zctx := l.logger.With()
	for _, f := range fields {
		zctx = appendContextField(zctx, f)
	}
	return &ZerologLogger{
		logger: zctx.Logger(),
		level:  l.level,
	}
}

// Level returns the minimum log level.
func (l *ZerologLogger) Level() ports.Level {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.level
}

// SetLevel sets the minimum log level.
func (l *ZerologLogger) SetLevel(level ports.Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

func (l *ZerologLogger) log(_ context.Context, level ports.Level, msg string, fields []ports.Field) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if level < l.level {
		return
	}

	event := l.logger.WithLevel(zerologLevel(level))
	for _, f := range fields {
		event = appendEventField(event, f)
	}
	event.Msg(msg)
}

func zerologLevel(level ports.Level) zerolog.Level {
	switch level {
	case ports.LevelDebug:
		return zerolog.DebugLevel
	case ports.LevelWarn:
		return zerolog.WarnLevel
	case ports.LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func appendEventField(e *zerolog.Event, f ports.Field) *zerolog.Event {
	switch v := f.Value.(type) {
	case string:
		return e.Str(f.Key, v)
	case int:
		return e.Int(f.Key, v)
	case bool:
		return e.Bool(f.Key, v)
	case error:
		return e.AnErr(f.Key, v)
	case []string:
		return e.Strs(f.Key, v)
	default:
		return e.Interface(f.Key, v)
	}
}

func appendContextField(c zerolog.Context, f ports.Field) zerolog.Context {
	switch v := f.Value.(type) {
	case string:
		return c.Str(f.Key, v)
	case int:
		return c.Int(f.Key, v)
	case bool:
		return c.Bool(f.Key, v)
	case error:
		return c.AnErr(f.Key, v)
	case []string:
		return c.Strs(f.Key, v)
	default:
		return c.Interface(f.Key, v)
	}
}

var _ ports.Logger = (*ZerologLogger)(nil)
