package pagestore

import (
	"context"
	"fmt"
	"log/slog"
)

// Logger defines an interface for logging operations.
// Implementations should be safe for concurrent use.
type Logger interface {
	// Info logs informational messages
	Info(ctx context.Context, format string, args ...interface{})

	// Warn logs warning messages
	Warn(ctx context.Context, format string, args ...interface{})

	// Error logs error messages
	Error(ctx context.Context, format string, args ...interface{})

	// Debug logs debug messages
	Debug(ctx context.Context, format string, args ...interface{})
}

// noopLogger is a Logger that does nothing.
type noopLogger struct{}

func (noopLogger) Info(ctx context.Context, format string, args ...interface{})  {}
func (noopLogger) Warn(ctx context.Context, format string, args ...interface{})  {}
func (noopLogger) Error(ctx context.Context, format string, args ...interface{}) {}
func (noopLogger) Debug(ctx context.Context, format string, args ...interface{}) {}

var defaultLogger Logger = noopLogger{}

// slogLogger bridges Logger to a log/slog handler.
type slogLogger struct {
	l *slog.Logger
}

// NewSlogLogger wraps a *slog.Logger as a Logger, so applications can plug
// standard slog handlers into the store. A nil l uses slog.Default().
func NewSlogLogger(l *slog.Logger) Logger {
	if l == nil {
		l = slog.Default()
	}
	return slogLogger{l: l}
}

func (s slogLogger) Info(ctx context.Context, format string, args ...interface{}) {
	s.l.InfoContext(ctx, fmt.Sprintf(format, args...))
}

func (s slogLogger) Warn(ctx context.Context, format string, args ...interface{}) {
	s.l.WarnContext(ctx, fmt.Sprintf(format, args...))
}

func (s slogLogger) Error(ctx context.Context, format string, args ...interface{}) {
	s.l.ErrorContext(ctx, fmt.Sprintf(format, args...))
}

func (s slogLogger) Debug(ctx context.Context, format string, args ...interface{}) {
	s.l.DebugContext(ctx, fmt.Sprintf(format, args...))
}
