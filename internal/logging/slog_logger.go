package logging

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

// slogLogger implements Logger on top of log/slog.
// All output goes to stderr so stdout stays reserved for the stdio transport.
type slogLogger struct {
	logger *slog.Logger
}

// SetupDefaultLogger installs a slog-backed default logger at the given level.
// Recognized levels: "debug", "info", "warn", "error" (default "info").
func SetupDefaultLogger(level string) {
	var slogLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		slogLevel = slog.LevelDebug
	case "warn", "warning":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slogLevel})
	SetDefaultLogger(&slogLogger{logger: slog.New(handler)})
}

// NewSlogLogger wraps an existing slog.Logger in the Logger interface.
func NewSlogLogger(logger *slog.Logger) Logger {
	if logger == nil {
		return GetNoopLogger()
	}
	return &slogLogger{logger: logger}
}

// Debug logs a debug-level message.
func (l *slogLogger) Debug(msg string, args ...any) {
	l.logger.Debug(msg, args...)
}

// Info logs an info-level message.
func (l *slogLogger) Info(msg string, args ...any) {
	l.logger.Info(msg, args...)
}

// Warn logs a warning-level message.
func (l *slogLogger) Warn(msg string, args ...any) {
	l.logger.Warn(msg, args...)
}

// Error logs an error-level message.
func (l *slogLogger) Error(msg string, args ...any) {
	l.logger.Error(msg, args...)
}

// WithContext returns the logger unchanged; slog handles context per call.
func (l *slogLogger) WithContext(_ context.Context) Logger {
	return l
}

// WithField returns a logger that includes the given field on every record.
func (l *slogLogger) WithField(key string, value any) Logger {
	return &slogLogger{logger: l.logger.With(key, value)}
}
