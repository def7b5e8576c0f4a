// Package logger provides structured logging for the grade journal.
// It is a thin layer over log/slog with typed field constructors and
// context propagation, shared by the HTTP servers and the application layer.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Level is the minimum severity a Logger emits.
type Level = slog.Level

const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// ParseLevel parses a level name. Unknown names fall back to info.
func ParseLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR":
		return LevelError
	default:
		return LevelInfo
	}
}

// Field is a key-value pair for structured logging.
type Field = slog.Attr

// Common field constructors.
func String(key, value string) Field          { return slog.String(key, value) }
func Int(key string, value int) Field         { return slog.Int(key, value) }
func Int64(key string, value int64) Field     { return slog.Int64(key, value) }
func Float64(key string, value float64) Field { return slog.Float64(key, value) }
func Bool(key string, value bool) Field       { return slog.Bool(key, value) }
func Any(key string, value any) Field         { return slog.Any(key, value) }

// Err creates an error field.
func Err(err error) Field {
	if err == nil {
		return slog.Any("error", nil)
	}
	return slog.String("error", err.Error())
}

// Duration creates a duration field rendered as a string.
func Duration(key string, value time.Duration) Field {
	return slog.String(key, value.String())
}

// Options configures a Logger.
type Options struct {
	Output    io.Writer
	Level     Level
	Format    string // "json" or "text"
	AddSource bool
}

// DefaultOptions returns JSON output to stdout at info level.
func DefaultOptions() Options {
	return Options{
		Output: os.Stdout,
		Level:  LevelInfo,
		Format: "json",
	}
}

// Logger writes structured records through a slog handler.
type Logger struct {
	sl *slog.Logger
}

// New creates a Logger with the given options.
func New(opts Options) *Logger {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	handlerOpts := &slog.HandlerOptions{Level: opts.Level, AddSource: opts.AddSource}

	var handler slog.Handler
	if strings.EqualFold(opts.Format, "text") {
		handler = slog.NewTextHandler(opts.Output, handlerOpts)
	} else {
		handler = slog.NewJSONHandler(opts.Output, handlerOpts)
	}
	return &Logger{sl: slog.New(handler)}
}

// FromSlog wraps an existing slog logger.
func FromSlog(sl *slog.Logger) *Logger {
	if sl == nil {
		sl = slog.Default()
	}
	return &Logger{sl: sl}
}

// Default wraps slog.Default().
func Default() *Logger {
	return FromSlog(slog.Default())
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return New(Options{Output: io.Discard, Level: LevelError})
}

// Slog exposes the underlying slog logger.
func (l *Logger) Slog() *slog.Logger {
	return l.sl
}

// With returns a Logger that adds fields to every record.
func (l *Logger) With(fields ...Field) *Logger {
	args := make([]any, len(fields))
	for i, f := range fields {
		args[i] = f
	}
	return &Logger{sl: l.sl.With(args...)}
}

// WithRequestID returns a logger tagged with a request id.
func (l *Logger) WithRequestID(requestID string) *Logger {
	return l.With(RequestID(requestID))
}

func (l *Logger) log(level Level, msg string, fields ...Field) {
	l.sl.LogAttrs(context.Background(), level, msg, fields...)
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, fields ...Field) { l.log(LevelDebug, msg, fields...) }

// Info logs an info message.
func (l *Logger) Info(msg string, fields ...Field) { l.log(LevelInfo, msg, fields...) }

// Warn logs a warning message.
func (l *Logger) Warn(msg string, fields ...Field) { l.log(LevelWarn, msg, fields...) }

// Error logs an error message.
func (l *Logger) Error(msg string, fields ...Field) { l.log(LevelError, msg, fields...) }

type ctxKey struct{}

// WithContext returns a new context carrying the logger.
func WithContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the logger stored in ctx, or Default().
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(ctxKey{}).(*Logger); ok {
		return l
	}
	return Default()
}

// RequestIDKey is the field key for request tracing.
const RequestIDKey = "request_id"

// Journal logging helpers.
func RequestID(id string) Field     { return String(RequestIDKey, id) }
func StudentID(id int64) Field      { return Int64("student_id", id) }
func SubjectID(id int64) Field      { return Int64("subject_id", id) }
func Score(score int) Field         { return Int("score", score) }
func Cell(ref string) Field         { return String("cell", ref) }
func Component(name string) Field   { return String("component", name) }
func Operation(name string) Field   { return String("operation", name) }
func Latency(d time.Duration) Field { return Duration("latency", d) }
