package logger

import (
	"fmt"
	"strings"
	"sync"
)

// TestLogEntry is a single recorded log line.
type TestLogEntry struct {
	Severity string
	Message  string
	Metadata map[string]interface{}
}

type testLogStore struct {
	mu      sync.Mutex
	entries []TestLogEntry
}

// TestLogger records log entries in memory. The zero value is ready to use;
// loggers derived through With and WithPrefix share its record.
type TestLogger struct {
	once     sync.Once
	store    *testLogStore
	metadata map[string]interface{}
	prefix   string
}

var _ Logger = (*TestLogger)(nil)

func (c *TestLogger) shared() *testLogStore {
	c.once.Do(func() {
		if c.store == nil {
			c.store = &testLogStore{}
		}
	})
	return c.store
}

func (c *TestLogger) With(metadata map[string]interface{}) Logger {
	kv := make(map[string]interface{}, len(c.metadata)+len(metadata))
	for k, v := range c.metadata {
		kv[k] = v
	}
	for k, v := range metadata {
		kv[k] = v
	}
	return &TestLogger{store: c.shared(), metadata: kv, prefix: c.prefix}
}

func (c *TestLogger) WithPrefix(prefix string) Logger {
	return &TestLogger{store: c.shared(), metadata: c.metadata, prefix: strings.TrimSpace(c.prefix + " " + prefix)}
}

func (c *TestLogger) record(level, msg string, args ...interface{}) {
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	if c.prefix != "" {
		msg = c.prefix + " " + msg
	}
	s := c.shared()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, TestLogEntry{Severity: level, Message: msg, Metadata: c.metadata})
}

func (c *TestLogger) Trace(msg string, args ...interface{}) { c.record("TRACE", msg, args...) }
func (c *TestLogger) Debug(msg string, args ...interface{}) { c.record("DEBUG", msg, args...) }
func (c *TestLogger) Info(msg string, args ...interface{})  { c.record("INFO", msg, args...) }
func (c *TestLogger) Warn(msg string, args ...interface{})  { c.record("WARN", msg, args...) }
func (c *TestLogger) Error(msg string, args ...interface{}) { c.record("ERROR", msg, args...) }

func (c *TestLogger) IsLevelEnabled(LogLevel) bool { return true }

// Entries returns a copy of everything logged so far.
func (c *TestLogger) Entries() []TestLogEntry {
	s := c.shared()
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]TestLogEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Has reports whether an entry with severity contains substr.
func (c *TestLogger) Has(severity, substr string) bool {
	for _, e := range c.Entries() {
		if e.Severity == severity && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}
