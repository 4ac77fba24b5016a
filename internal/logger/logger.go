// Package logger provides the leveled diagnostics writer used by code2pdf.
package logger

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

// LogLevel defines log severity levels
type LogLevel int

const (
	// Log levels from least to most restrictive
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelNone
)

// String returns the upper-case label printed in log lines.
func (l LogLevel) String() string {
	switch l {
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

// Logger writes leveled, optionally coloured lines. A Logger is safe for
// concurrent use; children created by Named share the parent's writer lock.
type Logger struct {
	out       io.Writer
	mu        *sync.Mutex
	useColors bool
	level     LogLevel
	component string
	now       func() time.Time
}

// New creates a new Logger writing to out. verbose selects LevelDebug,
// otherwise LevelInfo.
func New(out io.Writer, verbose bool, useColors bool) *Logger {
	level := LevelInfo
	if verbose {
		level = LevelDebug
	}

	return &Logger{
		out:       out,
		mu:        &sync.Mutex{},
		useColors: useColors,
		level:     level,
		now:       time.Now,
	}
}

// WithLevel sets the log level and returns the logger
func (l *Logger) WithLevel(level LogLevel) *Logger {
	l.level = level
	return l
}

// SetLevel sets the log level from its textual name. Unknown names select
// LevelInfo.
func (l *Logger) SetLevel(levelStr string) {
	l.WithLevel(ParseLevel(levelStr))
}

// Level reports the current threshold.
func (l *Logger) Level() LogLevel {
	return l.level
}

// Enabled reports whether messages at level would be written.
func (l *Logger) Enabled(level LogLevel) bool {
	return level != LevelNone && l.level <= level
}

// Named returns a child logger whose lines are tagged with component.
func (l *Logger) Named(component string) *Logger {
	child := *l
	if child.component != "" {
		component = child.component + "." + component
	}
	child.component = component
	return &child
}

// ParseLevel converts a string level to LogLevel. Unknown names select
// LevelInfo; use LookupLevel to detect them.
func ParseLevel(level string) LogLevel {
	l, _ := LookupLevel(level)
	return l
}

// LookupLevel converts a case-insensitive level name to LogLevel and reports
// whether the name is known.
func LookupLevel(level string) (LogLevel, bool) {
	switch strings.ToLower(strings.TrimSpace(level)) {
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

// Debug logs a debug message if verbose mode is enabled
func (l *Logger) Debug(format string, args ...interface{}) {
	l.write(LevelDebug, color.CyanString, format, args...)
}

// Info logs an informational message (standard level)
func (l *Logger) Info(format string, args ...interface{}) {
	l.write(LevelInfo, color.BlueString, format, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) {
	l.write(LevelWarn, color.YellowString, format, args...)
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.write(LevelError, color.RedString, format, args...)
}

func (l *Logger) write(level LogLevel, paint func(string, ...interface{}) string, format string, args ...interface{}) {
	if !l.Enabled(level) {
		return
	}

	prefix := level.String()
	if l.useColors {
		prefix = paint(prefix)
	}

	msg := fmt.Sprintf(format, args...)
	if l.component != "" {
		msg = l.component + ": " + msg
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.out, "[%s %s] %s\n", l.now().Format("15:04:05.000"), prefix, msg)
}
