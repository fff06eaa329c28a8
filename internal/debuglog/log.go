// Package debuglog is the process-wide file logger. The TUI owns the
// terminal, so nothing is ever written to stdout or stderr from here.
package debuglog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// LogLevel represents the severity level of a log message
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelOff // Disables all logging
)

// String returns the string representation of the log level
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
	case LevelOff:
		return "OFF"
	default:
		return "UNKNOWN"
	}
}

// ParseLogLevel parses a string into a LogLevel
func ParseLogLevel(s string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug
	case "INFO":
		return LevelInfo
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR":
		return LevelError
	case "OFF":
		return LevelOff
	default:
		return LevelInfo
	}
}

func (l LogLevel) slogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

var (
	mu           sync.RWMutex
	currentLevel = LevelOff
	levelVar     = new(slog.LevelVar)
	logger       *slog.Logger
	logFile      *os.File
)

// Setup opens filePath for appending and routes all subsequent log calls to
// it at the given level. An empty path disables file output.
func Setup(level LogLevel, filePath string) error {
	mu.Lock()
	defer mu.Unlock()

	_ = closeLocked()
	currentLevel = level
	levelVar.Set(level.slogLevel())

	if level == LevelOff || filePath == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	f, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", filePath, err)
	}

	logFile = f
	logger = newLogger(f)
	return nil
}

// SetupWriter is Setup for an arbitrary writer; tests use it with a buffer.
func SetupWriter(level LogLevel, w io.Writer) {
	mu.Lock()
	defer mu.Unlock()

	_ = closeLocked()
	currentLevel = level
	levelVar.Set(level.slogLevel())
	if level != LevelOff && w != nil {
		logger = newLogger(w)
	}
}

func newLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: levelVar})).
		With("app", "skim")
}

// SetLevel changes the current logging level
func SetLevel(level LogLevel) {
	mu.Lock()
	defer mu.Unlock()
	currentLevel = level
	levelVar.Set(level.slogLevel())
}

// GetLevel returns the current logging level
func GetLevel() LogLevel {
	mu.RLock()
	defer mu.RUnlock()
	return currentLevel
}

// Close closes the log file if open
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	return closeLocked()
}

func closeLocked() error {
	logger = nil
	if logFile != nil {
		err := logFile.Close()
		logFile = nil
		return err
	}
	return nil
}

func logAttrs(level LogLevel, msg string, attrs []any) {
	mu.RLock()
	l, cur := logger, currentLevel
	mu.RUnlock()

	if l == nil || cur == LevelOff || level < cur {
		return
	}
	l.Log(context.Background(), level.slogLevel(), msg, attrs...)
}

func Debugf(format string, args ...any) {
	logAttrs(LevelDebug, fmt.Sprintf(format, args...), nil)
}

func Infof(format string, args ...any) {
	logAttrs(LevelInfo, fmt.Sprintf(format, args...), nil)
}

func Warnf(format string, args ...any) {
	logAttrs(LevelWarn, fmt.Sprintf(format, args...), nil)
}

func Errorf(format string, args ...any) {
	logAttrs(LevelError, fmt.Sprintf(format, args...), nil)
}

// FieldLogger carries key/value pairs that are attached to every record.
type FieldLogger struct {
	attrs []any
}

// WithFields returns a logger that appends fields to each message. Keys are
// sorted so output is stable.
func WithFields(fields map[string]any) *FieldLogger {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	attrs := make([]any, 0, len(fields)*2)
	for _, k := range keys {
		attrs = append(attrs, k, fields[k])
	}
	return &FieldLogger{attrs: attrs}
}

// With returns a copy with additional key/value pairs.
func (fl *FieldLogger) With(args ...any) *FieldLogger {
	attrs := make([]any, 0, len(fl.attrs)+len(args))
	attrs = append(attrs, fl.attrs...)
	attrs = append(attrs, args...)
	return &FieldLogger{attrs: attrs}
}

func (fl *FieldLogger) Debugf(format string, args ...any) {
	logAttrs(LevelDebug, fmt.Sprintf(format, args...), fl.attrs)
}

func (fl *FieldLogger) Infof(format string, args ...any) {
	logAttrs(LevelInfo, fmt.Sprintf(format, args...), fl.attrs)
}

func (fl *FieldLogger) Warnf(format string, args ...any) {
	logAttrs(LevelWarn, fmt.Sprintf(format, args...), fl.attrs)
}

func (fl *FieldLogger) Errorf(format string, args ...any) {
	logAttrs(LevelError, fmt.Sprintf(format, args...), fl.attrs)
}
