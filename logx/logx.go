// Package logx provides the standard logger implementation for gearbox.
//
// Overview:
//   - Responsibility: Structured logging with logfmt/JSON output and sorted fields
//   - Key Types: Logger implementing core/log.Logger, Options for configuration
//   - Concurrency Model: Loggers are safe for concurrent use
//   - Error Semantics: Logging never returns errors; write failures are dropped
//   - Performance Notes: Fields are sorted per record for stable, diffable output
//
// Usage:
//
//	logger := logx.New(logx.WithFormat(logx.FormatJSON), logx.WithLevel(slog.LevelDebug))
//	logger.Info("blueprint updated", log.Str("key", "sqlalchemy.url"))
package logx

import (
	"io"
	"log/slog"
	"os"

	"github.com/shaverlee/gearbox/core/log"
	"github.com/shaverlee/gearbox/logx/internal"
)

// Format selects the output encoding.
type Format string

const (
	// FormatLogfmt emits key=value pairs, one record per line.
	FormatLogfmt Format = "logfmt"
	// FormatJSON emits one JSON object per line.
	FormatJSON Format = "json"
)

// Options configures the logger.
type Options struct {
	Format           Format     // Output format: logfmt or json
	Level            slog.Level // Minimum level to emit
	Writer           io.Writer  // Output writer (default: os.Stderr)
	SensitiveFields  []string   // Field names masked in output (e.g. "cookie_secret")
	DisableTimestamp bool       // Omit the time field
}

// Option configures logger construction.
type Option func(*Options)

// WithFormat sets the output format.
func WithFormat(format Format) Option {
	return func(o *Options) { o.Format = format }
}

// WithLevel sets the minimum log level.
func WithLevel(level slog.Level) Option {
	return func(o *Options) { o.Level = level }
}

// WithWriter sets the output writer.
func WithWriter(w io.Writer) Option {
	return func(o *Options) { o.Writer = w }
}

// WithSensitiveFields sets field names whose values are masked.
func WithSensitiveFields(fields ...string) Option {
	return func(o *Options) { o.SensitiveFields = fields }
}

// WithTimestamp toggles the time field.
func WithTimestamp(enabled bool) Option {
	return func(o *Options) { o.DisableTimestamp = !enabled }
}

// Logger implements core/log.Logger on top of an internal handler.
type Logger struct {
	handler *internal.Handler
	attrs   []slog.Attr
}

// New creates a Logger with the given options.
func New(opts ...Option) log.Logger {
	options := Options{
		Format:           FormatLogfmt,
		Level:            slog.LevelInfo,
		Writer:           os.Stderr,
		DisableTimestamp: true,
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.Writer == nil {
		options.Writer = os.Stderr
	}

	handler := internal.NewHandler(internal.Options{
		Format:           string(options.Format),
		Level:            options.Level,
		SensitiveFields:  options.SensitiveFields,
		DisableTimestamp: options.DisableTimestamp,
	}, options.Writer)

	return &Logger{handler: handler}
}

// With returns a Logger carrying additional key-value pairs.
func (l *Logger) With(kv ...any) log.Logger {
	attrs := append([]slog.Attr{}, l.attrs...)
	attrs = append(attrs, internal.KVToAttrs(kv)...)
	return &Logger{handler: l.handler, attrs: attrs}
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, kv ...any) {
	l.emit(slog.LevelDebug, msg, internal.KVToAttrs(kv))
}

// Info logs an informational message.
func (l *Logger) Info(msg string, kv ...any) {
	l.emit(slog.LevelInfo, msg, internal.KVToAttrs(kv))
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, kv ...any) {
	l.emit(slog.LevelWarn, msg, internal.KVToAttrs(kv))
}

// Error logs an error with a message. The error value becomes an "error" field.
func (l *Logger) Error(err error, msg string, kv ...any) {
	attrs := internal.KVToAttrs(kv)
	if err != nil {
		attrs = append([]slog.Attr{slog.Any("error", err)}, attrs...)
	}
	l.emit(slog.LevelError, msg, attrs)
}

func (l *Logger) emit(level slog.Level, msg string, attrs []slog.Attr) {
	all := append([]slog.Attr{}, l.attrs...)
	all = append(all, attrs...)
	l.handler.LogRecord(level, msg, all)
}
