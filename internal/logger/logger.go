package logger

import (
	"os"
	"strings"
)

// LogLevel defines the level of logging.
type LogLevel int

const (
	LevelTrace LogLevel = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelNone
)

// Logger is the logging interface used throughout the module.
type Logger interface {
	// With returns a new logger carrying metadata on every line.
	With(metadata map[string]interface{}) Logger
	// WithPrefix returns a new logger that prepends prefix to every message.
	WithPrefix(prefix string) Logger
	Trace(msg string, args ...interface{})
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	// IsLevelEnabled reports whether messages at level would be written.
	IsLevelEnabled(level LogLevel) bool
}

// ParseLevel converts a level name into a LogLevel. Unknown names yield
// LevelInfo and false.
func ParseLevel(s string) (LogLevel, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return LevelTrace, true
	case "debug":
		return LevelDebug, true
	case "info":
		return LevelInfo, true
	case "warn", "warning":
		return LevelWarn, true
	case "error":
		return LevelError, true
	case "none", "off":
		return LevelNone, true
	default:
		return LevelInfo, false
	}
}

// GetLevelFromEnv reads SPOTIFY_ENRICH_LOG_LEVEL, defaulting to info.
func GetLevelFromEnv() LogLevel {
	level, _ := ParseLevel(os.Getenv("SPOTIFY_ENRICH_LOG_LEVEL"))
	return level
}

func (l LogLevel) String() string {
	switch l {
	case LevelTrace:
		return "TRACE"
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "NONE"
	}
}

// Nop returns a logger that discards everything.
func Nop() Logger {
	return nopLogger{}
}

type nopLogger struct{}

func (n nopLogger) With(map[string]interface{}) Logger { return n }
func (n nopLogger) WithPrefix(string) Logger           { return n }
func (nopLogger) Trace(string, ...interface{})         {}
func (nopLogger) Debug(string, ...interface{})         {}
func (nopLogger) Info(string, ...interface{})          {}
func (nopLogger) Warn(string, ...interface{})          {}
func (nopLogger) Error(string, ...interface{})         {}
func (nopLogger) IsLevelEnabled(LogLevel) bool         { return false }
