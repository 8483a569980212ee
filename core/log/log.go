// Package log defines the logging interface shared by all gearbox packages.
//
// Overview:
//   - Responsibility: Stable structured logging contract for the framework
//   - Key Types: Logger interface with key-value logging
//   - Concurrency Model: Logger implementations must be safe for concurrent use
//   - Error Semantics: Error method takes the error as first parameter
//   - Performance Notes: Key-value pairs are passed through without allocation
//
// Usage:
//
//	logger.Info("environment loaded", log.Int("keys", 12))
//	logger.Error(err, "startup listener failed", log.Str("event", "startup"))
package log

import "time"

// Logger is the structured logging contract used across the framework.
// Implementations must be safe for concurrent use.
type Logger interface {
	// With returns a Logger that attaches the given key-value pairs to
	// every record it emits.
	With(kv ...any) Logger

	// Debug logs a debug message with optional key-value pairs.
	Debug(msg string, kv ...any)

	// Info logs an informational message with optional key-value pairs.
	Info(msg string, kv ...any)

	// Warn logs a warning message with optional key-value pairs.
	Warn(msg string, kv ...any)

	// Error logs an error with a message and optional key-value pairs.
	// The error is the first parameter so implementations can attach it
	// as a structured field.
	Error(err error, msg string, kv ...any)
}

// Str creates a string key-value pair.
func Str(k, v string) any {
	return []any{k, v}
}

// Int creates an integer key-value pair.
func Int(k string, v int) any {
	return []any{k, v}
}

// Bool creates a boolean key-value pair.
func Bool(k string, v bool) any {
	return []any{k, v}
}

// Dur creates a duration key-value pair.
func Dur(k string, v time.Duration) any {
	return []any{k, v}
}

// Any creates a key-value pair for an arbitrary value.
func Any(k string, v any) any {
	return []any{k, v}
}

// Discard returns a Logger that drops every record. Useful as a default
// when the caller did not supply a logger.
func Discard() Logger {
	return discardLogger{}
}

type discardLogger struct{}

func (discardLogger) With(kv ...any) Logger                  { return discardLogger{} }
func (discardLogger) Debug(msg string, kv ...any)            {}
func (discardLogger) Info(msg string, kv ...any)             {}
func (discardLogger) Warn(msg string, kv ...any)             {}
func (discardLogger) Error(err error, msg string, kv ...any) {}
