package utils

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"
)

// Level is a minimum severity for log output
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel maps "debug", "info", "warn" and "error" to a Level
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// Logger wraps standard log with level-based output
type Logger struct {
	min   Level
	info  *log.Logger
	warn  *log.Logger
	error *log.Logger
	debug *log.Logger
	now   func() time.Time
}

// NewLogger creates a logger writing info/debug/warn to stdout and errors to stderr
func NewLogger(min Level) *Logger {
	return newLogger(min, os.Stdout, os.Stderr)
}

// NewLoggerTo sends every level to w. Tests pass io.Discard or a buffer.
func NewLoggerTo(w io.Writer, min Level) *Logger {
	return newLogger(min, w, w)
}

func newLogger(min Level, out, errOut io.Writer) *Logger {
	flags := log.Lmsgprefix
	return &Logger{
		min:   min,
		info:  log.New(out, "[INFO]  ", flags),
		warn:  log.New(out, "[WARN]  ", flags),
		error: log.New(errOut, "[ERROR] ", flags),
		debug: log.New(out, "[DEBUG] ", flags),
		now:   time.Now,
	}
}

func (l *Logger) prefix() string {
	return fmt.Sprintf(" %s ", l.now().Format("15:04:05"))
}

func (l *Logger) Info(msg string, args ...interface{}) {
	if l.min <= LevelInfo {
		l.info.Printf(l.prefix()+msg, args...)
	}
}

func (l *Logger) Warn(msg string, args ...interface{}) {
	if l.min <= LevelWarn {
		l.warn.Printf(l.prefix()+msg, args...)
	}
}

func (l *Logger) Error(msg string, args ...interface{}) {
	l.error.Printf(l.prefix()+msg, args...)
}

func (l *Logger) Debug(msg string, args ...interface{}) {
	if l.min <= LevelDebug {
		l.debug.Printf(l.prefix()+msg, args...)
	}
}
