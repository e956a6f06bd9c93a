// Package logger provides a structured, levelled logger built on log/slog.
//
// The key extension over plain slog is WithCtx: it creates a logger with the
// request ID already attached, so every log line from a handler is
// automatically correlated:
//
//	log := logger.WithCtx(r.Context())
//	log.Info("order delivered", "orderId", id)
//	// → time=... level=INFO msg="order delivered" request_id=a1b2c3d4 orderId=...
package logger

import (
	"context"
	"log/slog"
	"os"
)

// L is the process-wide base logger. It starts as a human-readable text
// logger and is reconfigured by Setup at boot.
var L *slog.Logger

func init() {
	L = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	slog.SetDefault(L)
}

// Setup configures the base logger for the given environment: JSON at INFO
// for production (structured for log aggregators), text at DEBUG otherwise.
// Extra handlers (such as the async Mongo handler) fan out alongside stdout.
func Setup(production bool, extra ...slog.Handler) {
	var stdout slog.Handler
	if production {
		stdout = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		stdout = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}

	handler := stdout
	if len(extra) > 0 {
		handler = NewMultiHandler(append([]slog.Handler{stdout}, extra...)...)
	}

	L = slog.New(handler)
	slog.SetDefault(L)
}

// ─────────────────────────────────────────────
// Context-aware logger
// ─────────────────────────────────────────────

// ctxKey is the unexported key used to store a per-request *slog.Logger.
type ctxKey struct{}

// WithCtx returns the *slog.Logger stored in ctx by the Logger middleware,
// pre-tagged with the request_id. If none is present the base logger is
// returned unchanged.
func WithCtx(ctx context.Context) *slog.Logger {
	if log, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && log != nil {
		return log
	}
	return L
}

// InjectLogger stores a *slog.Logger (pre-tagged with request_id) into ctx.
// Called by the Logger middleware — not usually needed in application code.
func InjectLogger(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

// ─────────────────────────────────────────────
// Short-hand helpers (use base logger)
// ─────────────────────────────────────────────

// Debug logs at DEBUG level.
func Debug(msg string, args ...any) { L.Debug(msg, args...) }

// Info logs at INFO level.
func Info(msg string, args ...any) { L.Info(msg, args...) }

// Warn logs at WARN level.
func Warn(msg string, args ...any) { L.Warn(msg, args...) }

// Error logs at ERROR level.
func Error(msg string, args ...any) { L.Error(msg, args...) }
