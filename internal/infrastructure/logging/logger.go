// Package logging provides structured logging infrastructure for the
// modelrouter engine. It wraps Go's standard log/slog package with
// context-aware logging and routing-specific log attributes.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"
)

// contextKey is used for storing logger-related values in context.
type contextKey string

const (
	// RequestIDKey is the context key for request correlation IDs.
	RequestIDKey contextKey = "request_id"
	// LabelKey is the context key for classification labels.
	LabelKey contextKey = "label"
	// TargetKey is the context key for resolved routing targets.
	TargetKey contextKey = "target"
)

// Level represents log levels.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Format represents log output formats.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// Config holds logging configuration.
type Config struct {
	Level      Level
	Format     Format
	Output     io.Writer
	AddSource  bool
	TimeFormat string
}

// DefaultConfig returns sensible default logging configuration.
func DefaultConfig() Config {
	return Config{
		Level:      LevelInfo,
		Format:     FormatText,
		Output:     os.Stderr,
		AddSource:  false,
		TimeFormat: time.RFC3339,
	}
}

// Logger wraps slog.Logger with routing-specific helpers.
type Logger struct {
	slogger *slog.Logger
}

// New creates a new Logger with the provided configuration.
func New(cfg Config) *Logger {
	opts := &slog.HandlerOptions{
		Level:     parseLevel(cfg.Level),
		AddSource: cfg.AddSource,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && cfg.TimeFormat != "" {
				if t, ok := a.Value.Any().(time.Time); ok {
					return slog.String(slog.TimeKey, t.Format(cfg.TimeFormat))
				}
			}
			return a
		},
	}

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	var handler slog.Handler
	switch cfg.Format {
	case FormatJSON:
		handler = slog.NewJSONHandler(output, opts)
	default:
		handler = slog.NewTextHandler(output, opts)
	}

	return &Logger{slogger: slog.New(handler)}
}

// Discard returns a Logger that drops all records. Useful in tests.
func Discard() *Logger {
	return &Logger{slogger: slog.New(slog.DiscardHandler)}
}

// parseLevel converts a Level to slog.Level.
func parseLevel(l Level) slog.Level {
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

// With returns a new Logger with the given attributes.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{slogger: l.slogger.With(args...)}
}

// Debug logs at debug level.
func (l *Logger) Debug(msg string, args ...any) {
	l.slogger.Debug(msg, args...)
}

// Info logs at info level.
func (l *Logger) Info(msg string, args ...any) {
	l.slogger.Info(msg, args...)
}

// Warn logs at warn level.
func (l *Logger) Warn(msg string, args ...any) {
	l.slogger.Warn(msg, args...)
}

// Error logs at error level.
func (l *Logger) Error(msg string, args ...any) {
	l.slogger.Error(msg, args...)
}

// InfoContext logs at info level with context enrichment.
func (l *Logger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.slogger.InfoContext(ctx, msg, enrichArgs(ctx, args)...)
}

// WarnContext logs at warn level with context enrichment.
func (l *Logger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.slogger.WarnContext(ctx, msg, enrichArgs(ctx, args)...)
}

// ErrorContext logs at error level with context enrichment.
func (l *Logger) ErrorContext(ctx context.Context, msg string, args ...any) {
	l.slogger.ErrorContext(ctx, msg, enrichArgs(ctx, args)...)
}

// enrichArgs extracts context values and adds them as log attributes.
func enrichArgs(ctx context.Context, args []any) []any {
	enriched := make([]any, 0, len(args)+6)

	if v := ctx.Value(RequestIDKey); v != nil {
		enriched = append(enriched, "request_id", v)
	}
	if v := ctx.Value(LabelKey); v != nil {
		enriched = append(enriched, "label", v)
	}
	if v := ctx.Value(TargetKey); v != nil {
		enriched = append(enriched, "target", v)
	}

	return append(enriched, args...)
}

// Underlying returns the wrapped slog.Logger.
func (l *Logger) Underlying() *slog.Logger {
	return l.slogger
}

// --- Context helpers ---

// WithRequestID adds a request correlation ID to the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

// WithLabel adds a classification label to the context.
func WithLabel(ctx context.Context, label string) context.Context {
	return context.WithValue(ctx, LabelKey, label)
}

// WithTarget adds a resolved routing target to the context.
func WithTarget(ctx context.Context, target string) context.Context {
	return context.WithValue(ctx, TargetKey, target)
}

// --- Domain-specific logging helpers ---

// LogClassification logs a completed classification decision.
func LogClassification(logger *Logger, model, label, target string) {
	logger.Debug("request classified",
		"model", model,
		"label", label,
		"target", target,
	)
}

// LogReloadSucceeded logs a successful configuration reload.
func LogReloadSucceeded(logger *Logger, path string, rules, routes int, duration time.Duration) {
	logger.Info("configuration reloaded",
		"path", path,
		"rules", rules,
		"routes", routes,
		"duration_ms", duration.Milliseconds(),
	)
}

// LogReloadFailed logs a failed configuration reload. The previously
// published state stays authoritative, so this is a warning, not a fatal.
func LogReloadFailed(logger *Logger, path string, err error) {
	logger.Warn("configuration reload failed, keeping previous state",
		"path", path,
		"error", err.Error(),
	)
}

// LogRuleSkipped logs a rule binding dropped during construction.
func LogRuleSkipped(logger *Logger, label, ruleType string, err error) {
	logger.Warn("skipping rule that failed to construct",
		"label", label,
		"rule_type", ruleType,
		"error", err.Error(),
	)
}
