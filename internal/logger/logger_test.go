package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  LogLevel
		ok    bool
	}{
		{"trace", LevelTrace, true},
		{"DEBUG", LevelDebug, true},
		{" info ", LevelInfo, true},
		{"warning", LevelWarn, true},
		{"error", LevelError, true},
		{"off", LevelNone, true},
		{"loud", LevelInfo, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseLevel(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestGetLevelFromEnv(t *testing.T) {
	t.Setenv("SPOTIFY_ENRICH_LOG_LEVEL", "warn")
	assert.Equal(t, LevelWarn, GetLevelFromEnv())

	t.Setenv("SPOTIFY_ENRICH_LOG_LEVEL", "")
	assert.Equal(t, LevelInfo, GetLevelFromEnv())
}

func TestConsoleLogger_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewConsoleLogger(&buf, LevelWarn)

	log.Info("hidden %d", 1)
	log.Warn("shown %d", 2)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "[WARN]")
	assert.Contains(t, out, "shown 2")
}

func TestConsoleLogger_PrefixAndMetadata(t *testing.T) {
	var buf bytes.Buffer
	log := NewConsoleLogger(&buf, LevelDebug).
		WithPrefix("[cache]").
		With(map[string]interface{}{"key": "tracks-1"})

	log.Debug("hit")

	out := buf.String()
	assert.Contains(t, out, "[cache] hit")
	assert.Contains(t, out, `{"key":"tracks-1"}`)
	assert.NotContains(t, out, "\033[", "buffers are not terminals, no colour expected")
}

func TestConsoleLogger_WithDoesNotMutateParent(t *testing.T) {
	var buf bytes.Buffer
	parent := NewConsoleLogger(&buf, LevelInfo)
	_ = parent.With(map[string]interface{}{"run": "abc"})

	parent.Info("plain")
	assert.False(t, strings.Contains(buf.String(), "abc"))
}

func TestTestLogger_SharedRecord(t *testing.T) {
	log := &TestLogger{}
	child := log.WithPrefix("[enrich]").With(map[string]interface{}{"batch": 1})

	child.Warn("batch %d failed", 3)
	log.Info("done")

	entries := log.Entries()
	assert.Len(t, entries, 2)
	assert.True(t, log.Has("WARN", "[enrich] batch 3 failed"))
	assert.Equal(t, 1, entries[0].Metadata["batch"])
}

func TestNop(t *testing.T) {
	log := Nop().With(nil).WithPrefix("x")
	log.Error("ignored")
	assert.False(t, log.IsLevelEnabled(LevelError))
}
