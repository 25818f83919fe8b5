package infra

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

type contextKey string

const correlationIDKey contextKey = "correlation_id"

// LevelFatal sits above slog.LevelError and is only used by Fatalf.
const LevelFatal = slog.Level(12)

type Logger struct {
	logger *slog.Logger
}

// NewLogger returns a JSON logger at info level.
func NewLogger(out io.Writer, service string) *Logger {
	return NewLoggerWithOptions(out, service, "info", "json")
}

// NewLoggerWithOptions builds a logger writing JSON lines, or tint-coloured
// text when format is "text".
func NewLoggerWithOptions(out io.Writer, service, level, format string) *Logger {
	if out == nil {
		out = io.Discard
	}

	var handler slog.Handler
	if strings.EqualFold(strings.TrimSpace(format), "text") {
		handler = tint.NewHandler(out, &tint.Options{
			Level:      parseLevel(level),
			TimeFormat: time.TimeOnly,
			NoColor:    out != os.Stdout && out != os.Stderr,
		})
	} else {
		handler = slog.NewJSONHandler(out, &slog.HandlerOptions{
			Level:       parseLevel(level),
			ReplaceAttr: replaceAttr,
		})
	}

	l := slog.New(handler)
	if service = strings.TrimSpace(service); service != "" {
		l = l.With(slog.String("service", service))
	}
	return &Logger{logger: l}
}

func WithCorrelationID(ctx context.Context, id string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, correlationIDKey, strings.TrimSpace(id))
}

func CorrelationIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(correlationIDKey).(string); ok {
		return v
	}
	return ""
}

func (l *Logger) Printf(ctx context.Context, format string, v ...any) {
	if l == nil {
		return
	}
	l.log(ctx, slog.LevelInfo, fmt.Sprintf(format, v...))
}

func (l *Logger) Println(ctx context.Context, v ...any) {
	if l == nil {
		return
	}
	l.log(ctx, slog.LevelInfo, strings.TrimSpace(fmt.Sprintln(v...)))
}

func (l *Logger) Debugf(ctx context.Context, format string, v ...any) {
	if l == nil {
		return
	}
	l.log(ctx, slog.LevelDebug, fmt.Sprintf(format, v...))
}

func (l *Logger) Errorf(ctx context.Context, format string, v ...any) {
	if l == nil {
		return
	}
	l.log(ctx, slog.LevelError, fmt.Sprintf(format, v...))
}

func (l *Logger) Fatalf(ctx context.Context, format string, v ...any) {
	if l == nil {
		os.Exit(1)
	}
	l.log(ctx, LevelFatal, fmt.Sprintf(format, v...))
	os.Exit(1)
}

// Slog exposes the underlying structured logger for libraries that take one.
func (l *Logger) Slog() *slog.Logger {
	if l == nil {
		return slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return l.logger
}

func (l *Logger) log(ctx context.Context, level slog.Level, msg string) {
	if ctx == nil {
		ctx = context.Background()
	}
	if traceID := CorrelationIDFromContext(ctx); traceID != "" {
		l.logger.LogAttrs(ctx, level, msg, slog.String("trace_id", traceID))
		return
	}
	l.logger.LogAttrs(ctx, level, msg)
}

func replaceAttr(groups []string, a slog.Attr) slog.Attr {
	if len(groups) > 0 {
		return a
	}
	switch a.Key {
	case slog.TimeKey:
		if t, ok := a.Value.Any().(time.Time); ok {
			return slog.String("timestamp", t.UTC().Format(time.RFC3339Nano))
		}
	case slog.MessageKey:
		a.Key = "message"
	case slog.LevelKey:
		if lvl, ok := a.Value.Any().(slog.Level); ok {
			return slog.String(slog.LevelKey, levelName(lvl))
		}
	}
	return a
}

func levelName(lvl slog.Level) string {
	switch {
	case lvl >= LevelFatal:
		return "fatal"
	case lvl >= slog.LevelError:
		return "error"
	case lvl >= slog.LevelWarn:
		return "warn"
	case lvl >= slog.LevelInfo:
		return "info"
	default:
		return "debug"
	}
}

func parseLevel(level string) slog.Leveler {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
