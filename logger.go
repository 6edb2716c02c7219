package nestgo

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with nestgo-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	return newLogger(os.Stderr, "json", level)
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return newLogger(os.Stderr, "text", level)
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

func newLogger(w io.Writer, format string, level slog.Level) *Logger {
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// WithRunID adds a run_id field to the logger.
func (l *Logger) WithRunID(id string) *Logger {
	return &Logger{
		Logger: l.Logger.With("run_id", id),
	}
}

// WithSampler adds a sampler field to the logger.
func (l *Logger) WithSampler(kind string) *Logger {
	return &Logger{
		Logger: l.Logger.With("sampler", kind),
	}
}

// WithDimension adds a dimension field to the logger.
func (l *Logger) WithDimension(dim int) *Logger {
	return &Logger{
		Logger: l.Logger.With("dimension", dim),
	}
}

// LogPreprocess logs a preprocessing step.
func (l *Logger) LogPreprocess(ctx context.Context, livePoints int, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "preprocess failed",
			"live_points", livePoints,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "preprocess completed",
			"live_points", livePoints,
			"duration", duration,
		)
	}
}

// LogReplace logs a batch replacement.
func (l *Logger) LogReplace(ctx context.Context, slots, failed, evaluations int, err error) {
	switch {
	case err != nil:
		l.ErrorContext(ctx, "replace failed",
			"slots", slots,
			"error", err,
		)
	case failed > 0:
		l.WarnContext(ctx, "replace completed with failures",
			"slots", slots,
			"failed", failed,
			"success", slots-failed,
			"evaluations", evaluations,
		)
	default:
		l.InfoContext(ctx, "replace completed",
			"slots", slots,
			"evaluations", evaluations,
		)
	}
}

// LogRetry logs a retried invocation.
func (l *Logger) LogRetry(ctx context.Context, slot, attempt int, err error) {
	l.DebugContext(ctx, "retrying invocation",
		"slot", slot,
		"attempt", attempt,
		"error", err,
	)
}
