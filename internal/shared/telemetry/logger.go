package telemetry

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync/atomic"
	"time"
)

// Logger writes structured events. Fields become top-level JSON keys.
type Logger interface {
	Info(msg string, fields map[string]any)
	Error(msg string, fields map[string]any)
}

// JSONLogger emits one JSON object per line with ts, level and msg keys.
type JSONLogger struct {
	l *slog.Logger
}

// New returns a JSONLogger writing to w.
func New(w io.Writer) *JSONLogger {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) > 0 {
				return a
			}
			switch a.Key {
			case slog.TimeKey:
				return slog.String("ts", a.Value.Time().UTC().Format(time.RFC3339))
			case slog.LevelKey:
				return slog.String("level", strings.ToLower(a.Value.String()))
			}
			return a
		},
	})
	return &JSONLogger{l: slog.New(h)}
}

func (j *JSONLogger) Info(msg string, fields map[string]any) {
	j.log(slog.LevelInfo, msg, fields)
}

func (j *JSONLogger) Error(msg string, fields map[string]any) {
	j.log(slog.LevelError, msg, fields)
}

func (j *JSONLogger) log(level slog.Level, msg string, fields map[string]any) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	attrs := make([]slog.Attr, 0, len(keys))
	for _, k := range keys {
		attrs = append(attrs, slog.Any(k, fields[k]))
	}
	j.l.LogAttrs(context.Background(), level, msg, attrs...)
}

type nopLogger struct{}

func (nopLogger) Info(string, map[string]any)  {}
func (nopLogger) Error(string, map[string]any) {}

// Nop discards everything.
func Nop() Logger { return nopLogger{} }

var std atomic.Pointer[JSONLogger]

func init() {
	std.Store(New(os.Stdout))
}

// Default returns the process-wide stdout logger.
func Default() Logger { return std.Load() }

// SetDefault replaces the process-wide logger.
func SetDefault(l *JSONLogger) {
	if l != nil {
		std.Store(l)
	}
}

// OrDefault returns l, or the process-wide logger when l is nil.
func OrDefault(l Logger) Logger {
	if l == nil {
		return Default()
	}
	return l
}

// Info writes an info-level line through the default logger.
func Info(msg string, fields map[string]any) {
	Default().Info(msg, fields)
}

// Error writes an error-level line through the default logger.
func Error(msg string, fields map[string]any) {
	Default().Error(msg, fields)
}
