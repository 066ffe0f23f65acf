package common

import (
	"context"
	"log/slog"
)

// Context keys for storing values in context
type contextKey string

const (
	ContextKeyRequestID contextKey = "request_id"
	ContextKeyBatchID   contextKey = "batch_id"
)

// WithRequestID adds a request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// RequestIDFromContext extracts the request ID from context
func RequestIDFromContext(ctx context.Context) string {
	if requestID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return requestID
	}
	return ""
}

// WithBatchID tags the context with the extraction batch it belongs to.
func WithBatchID(ctx context.Context, batch uint64) context.Context {
	return context.WithValue(ctx, ContextKeyBatchID, batch)
}

// BatchIDFromContext returns the batch tag, or 0.
func BatchIDFromContext(ctx context.Context) uint64 {
	if b, ok := ctx.Value(ContextKeyBatchID).(uint64); ok {
		return b
	}
	return 0
}

// LoggerFrom decorates logger with the ids carried by ctx.
func LoggerFrom(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = slog.Default()
	}
	if rid := RequestIDFromContext(ctx); rid != "" {
		logger = logger.With("req_id", rid)
	}
	if b := BatchIDFromContext(ctx); b != 0 {
		logger = logger.With("batch_id", b)
	}
	return logger
}
