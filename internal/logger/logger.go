// Package logger provides structured logging built on log/slog.
package logger

import (
	"context"
	"io"
	"log/slog"
)

// Level is the minimum level a logger emits.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// LoggerInterface is the logging contract used across the application.
// All methods accept a context so handlers can attach trace information.
type LoggerInterface interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)
	With(args ...any) LoggerInterface
}

// Logger implements LoggerInterface on top of slog.
type Logger struct {
	sl *slog.Logger
}

// New creates a Logger writing to w at the given level.
// service is attached to every record; attrs are optional extra attributes.
func New(w io.Writer, level Level, service string, attrs []slog.Attr) *Logger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: toSlogLevel(level),
	})

	sl := slog.New(handler)
	if service != "" {
		sl = sl.With("service", service)
	}
	for _, a := range attrs {
		sl = sl.With(a)
	}

	return &Logger{sl: sl}
}

func toSlogLevel(level Level) slog.Level {
	switch level {
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

// Debug logs at debug level.
func (l *Logger) Debug(ctx context.Context, msg string, args ...any) {
	l.sl.DebugContext(ctx, msg, args...)
}

// Info logs at info level.
func (l *Logger) Info(ctx context.Context, msg string, args ...any) {
	l.sl.InfoContext(ctx, msg, args...)
}

// Warn logs at warn level.
func (l *Logger) Warn(ctx context.Context, msg string, args ...any) {
	l.sl.WarnContext(ctx, msg, args...)
}

// Error logs at error level.
func (l *Logger) Error(ctx context.Context, msg string, args ...any) {
	l.sl.ErrorContext(ctx, msg, args...)
}

// With returns a logger with the given attributes attached to every record.
func (l *Logger) With(args ...any) LoggerInterface {
	return &Logger{sl: l.sl.With(args...)}
}

// Nop returns a logger that discards everything. Useful in tests and TUI mode.
func Nop() *Logger {
	return New(io.Discard, LevelError, "", nil)
}
