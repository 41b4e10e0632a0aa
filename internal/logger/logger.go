package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
)

type contextKey string

const requestIDKey contextKey = "request_id"

var base = slog.New(slog.NewJSONHandler(os.Stdout, nil))

type Options struct {
	Service string
	Env     string
	Level   string
	Output  io.Writer
}

// Init replaces the package logger and the slog default.
func Init(opts Options) *slog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	h := slog.NewJSONHandler(out, &slog.HandlerOptions{Level: parseLevel(opts.Level)})
	base = slog.New(h).With(
		"service", opts.Service,
		"env", opts.Env,
	)

	slog.SetDefault(base)
	return base
}

func parseLevel(lvl string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(lvl)) {
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

// WithRequestID returns ctx carrying a request id, keeping an existing one.
func WithRequestID(ctx context.Context) context.Context {
	if _, ok := RequestID(ctx); ok {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, uuid.NewString())
}

// WithGivenRequestID stores id as the request id, e.g. one received from an upstream header.
func WithGivenRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return WithRequestID(ctx)
	}
	return context.WithValue(ctx, requestIDKey, id)
}

func RequestID(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(requestIDKey).(string)
	return id, ok
}

func fromCtx(ctx context.Context) *slog.Logger {
	if id, ok := RequestID(ctx); ok {
		return base.With("request_id", id)
	}
	return base
}

func Info(msg string, args ...any)  { base.Info(msg, args...) }
func Warn(msg string, args ...any)  { base.Warn(msg, args...) }
func Error(msg string, args ...any) { base.Error(msg, args...) }

func InfoCtx(ctx context.Context, msg string, args ...any) {
	fromCtx(ctx).InfoContext(ctx, msg, args...)
}

func WarnCtx(ctx context.Context, msg string, args ...any) {
	fromCtx(ctx).WarnContext(ctx, msg, args...)
}

func ErrorCtx(ctx context.Context, msg string, args ...any) {
	fromCtx(ctx).ErrorContext(ctx, msg, args...)
}
