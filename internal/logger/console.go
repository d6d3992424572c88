package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

const (
	reset      = "\033[0m"
	red        = "\033[31m"
	green      = "\033[32m"
	magenta    = "\033[35m"
	gray       = "\033[1;90m"
	redBold    = "\033[31;1m"
	yellowBold = "\033[33;1m"
	blueBold   = "\033[34;1m"
	cyanBold   = "\033[36;1m"
	whiteBold  = "\033[37;1m"
)

type consoleLogger struct {
	out      *syncWriter
	level    LogLevel
	colorize bool
	prefixes []string
	metadata map[string]interface{}
}

var _ Logger = (*consoleLogger)(nil)

type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) write(p []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = s.w.Write(p)
}

// NewConsoleLogger returns a Logger writing to w at the given level.
// ANSI colours are used only when w is a terminal and TERM is not dumb.
func NewConsoleLogger(w io.Writer, level LogLevel) Logger {
	colorize := false
	if f, ok := w.(*os.File); ok && os.Getenv("TERM") != "dumb" {
		colorize = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &consoleLogger{
		out:      &syncWriter{w: w},
		level:    level,
		colorize: colorize,
	}
}

func (c *consoleLogger) clone() *consoleLogger {
	metadata := make(map[string]interface{}, len(c.metadata))
	for k, v := range c.metadata {
		metadata[k] = v
	}
	return &consoleLogger{
		out:      c.out,
		level:    c.level,
		colorize: c.colorize,
		prefixes: slices.Clone(c.prefixes),
		metadata: metadata,
	}
}

func (c *consoleLogger) With(metadata map[string]interface{}) Logger {
	l := c.clone()
	for k, v := range metadata {
		l.metadata[k] = v
	}
	return l
}

func (c *consoleLogger) WithPrefix(prefix string) Logger {
	l := c.clone()
	if !slices.Contains(l.prefixes, prefix) {
		l.prefixes = append(l.prefixes, prefix)
	}
	return l
}

func (c *consoleLogger) IsLevelEnabled(level LogLevel) bool {
	return level >= c.level && level < LevelNone
}

func (c *consoleLogger) color(code string) string {
	if !c.colorize {
		return ""
	}
	return code
}

func (c *consoleLogger) log(level LogLevel, levelColor, messageColor string, msg string, args ...interface{}) {
	if !c.IsLevelEnabled(level) {
		return
	}
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}

	var b strings.Builder
	b.WriteString(time.Now().Format("15:04:05.000"))
	b.WriteString(" ")
	name := level.String()
	b.WriteString(c.color(levelColor) + "[" + name + "]" + strings.Repeat(" ", 5-len(name)) + c.color(reset))
	b.WriteString(" ")
	if len(c.prefixes) > 0 {
		b.WriteString(c.color(magenta) + strings.Join(c.prefixes, " ") + c.color(reset) + " ")
	}
	b.WriteString(c.color(messageColor) + msg + c.color(reset))
	if len(c.metadata) > 0 {
		// json.Marshal sorts map keys, keeping lines stable.
		if buf, err := json.Marshal(c.metadata); err == nil {
			b.WriteString(" " + c.color(gray) + string(buf) + c.color(reset))
		}
	}
	b.WriteString("\n")
	c.out.write([]byte(b.String()))
}

func (c *consoleLogger) Trace(msg string, args ...interface{}) {
	c.log(LevelTrace, cyanBold, gray, msg, args...)
}

func (c *consoleLogger) Debug(msg string, args ...interface{}) {
	c.log(LevelDebug, blueBold, green, msg, args...)
}

func (c *consoleLogger) Info(msg string, args ...interface{}) {
	c.log(LevelInfo, yellowBold, whiteBold, msg, args...)
}

func (c *consoleLogger) Warn(msg string, args ...interface{}) {
	c.log(LevelWarn, magenta, magenta, msg, args...)
}

func (c *consoleLogger) Error(msg string, args ...interface{}) {
	c.log(LevelError, redBold, red, msg, args...)
}
