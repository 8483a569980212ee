// Package testx provides test helpers shared across packages.
//
// Overview:
//   - Responsibility: Mock logger and small fixtures for package tests
//   - Key Types: MockLogger with recorded entries
//   - Concurrency Model: MockLogger is safe for concurrent use
//   - Error Semantics: Assertions fail through testing.T
//   - Performance Notes: Entries are kept in memory for the test's lifetime
//
// Usage:
//
//	logger := testx.NewMockLogger(t)
//	component.Run(logger)
//	logger.AssertLogged(t, "ERROR", "startup listener failed")
package testx

import (
	"sync"
	"testing"

	"github.com/shaverlee/gearbox/core/log"
)

// LogEntry is one recorded logger call.
type LogEntry struct {
	Level   string
	Message string
	Fields  []any
	Err     error
}

// MockLogger records every call for later assertions.
type MockLogger struct {
	mu      sync.Mutex
	entries []LogEntry
}

// NewMockLogger creates an empty mock logger.
func NewMockLogger(t *testing.T) *MockLogger {
	t.Helper()
	return &MockLogger{}
}

// With returns the logger itself; field scoping is not recorded.
func (m *MockLogger) With(kv ...any) log.Logger { return m }

func (m *MockLogger) Debug(msg string, kv ...any) { m.record("DEBUG", msg, nil, kv) }
func (m *MockLogger) Info(msg string, kv ...any)  { m.record("INFO", msg, nil, kv) }
func (m *MockLogger) Warn(msg string, kv ...any)  { m.record("WARN", msg, nil, kv) }
func (m *MockLogger) Error(err error, msg string, kv ...any) {
	m.record("ERROR", msg, err, kv)
}

func (m *MockLogger) record(level, msg string, err error, kv []any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, LogEntry{Level: level, Message: msg, Fields: kv, Err: err})
}

// Entries returns a copy of the recorded entries.
func (m *MockLogger) Entries() []LogEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	entries := make([]LogEntry, len(m.entries))
	copy(entries, m.entries)
	return entries
}

// AssertLogged fails the test unless a message was recorded at the level.
func (m *MockLogger) AssertLogged(t *testing.T, level, msg string) {
	t.Helper()
	for _, entry := range m.Entries() {
		if entry.Level == level && entry.Message == msg {
			return
		}
	}
	t.Errorf("expected %s log %q, got %v", level, msg, m.Entries())
}

// AssertNotLogged fails the test when a message was recorded at the level.
func (m *MockLogger) AssertNotLogged(t *testing.T, level, msg string) {
	t.Helper()
	for _, entry := range m.Entries() {
		if entry.Level == level && entry.Message == msg {
			t.Errorf("unexpected %s log %q", level, msg)
			return
		}
	}
}
