package logx

import (
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"sync/atomic"
)

// ============================================================================
// Leveled logger shared across the application
// ============================================================================

type Level int32

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var (
	currentLevel atomic.Int32
	std          = log.New(os.Stderr, "", log.LstdFlags)
)

func init() {
	currentLevel.Store(int32(LevelInfo))
}

// SetLevel sets the minimum level that gets written
func SetLevel(l Level) {
	currentLevel.Store(int32(l))
}

func enabled(l Level) bool {
	return int32(l) >= currentLevel.Load()
}

func output(l Level, tag string, msg string) {
	if !enabled(l) {
		return
	}
	std.Printf("%s %s", tag, msg)
}

func Debug(args ...any)            { output(LevelDebug, "DEBUG", fmt.Sprint(args...)) }
func Debugf(format string, a ...any) { output(LevelDebug, "DEBUG", fmt.Sprintf(format, a...)) }
func Info(args ...any)             { output(LevelInfo, "INFO ", fmt.Sprint(args...)) }
func Infof(format string, a ...any)  { output(LevelInfo, "INFO ", fmt.Sprintf(format, a...)) }
func Warn(args ...any)             { output(LevelWarn, "WARN ", fmt.Sprint(args...)) }
func Warnf(format string, a ...any)  { output(LevelWarn, "WARN ", fmt.Sprintf(format, a...)) }
func Error(args ...any)            { output(LevelError, "ERROR", fmt.Sprint(args...)) }
func Errorf(format string, a ...any) { output(LevelError, "ERROR", fmt.Sprintf(format, a...)) }

// Fatalf logs at error level and exits
func Fatalf(format string, a ...any) {
	output(LevelError, "FATAL", fmt.Sprintf(format, a...))
	os.Exit(1)
}

// ============================================================================
// Structured fields
// ============================================================================

type Fields map[string]any

// Entry carries structured fields for a single log call
type Entry struct {
	fields Fields
}

// WithFields returns an entry that prepends the fields to the message
func WithFields(fields Fields) *Entry {
	return &Entry{fields: fields}
}

func (e *Entry) render() string {
	if len(e.fields) == 0 {
		return ""
	}
	keys := make([]string, 0, len(e.fields))
	for k := range e.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, e.fields[k]))
	}
	return "[" + strings.Join(parts, " ") + "] "
}

func (e *Entry) Debugf(format string, a ...any) {
	output(LevelDebug, "DEBUG", e.render()+fmt.Sprintf(format, a...))
}

func (e *Entry) Infof(format string, a ...any) {
	output(LevelInfo, "INFO ", e.render()+fmt.Sprintf(format, a...))
}

func (e *Entry) Warnf(format string, a ...any) {
	output(LevelWarn, "WARN ", e.render()+fmt.Sprintf(format, a...))
}

func (e *Entry) Errorf(format string, a ...any) {
	output(LevelError, "ERROR", e.render()+fmt.Sprintf(format, a...))
}
