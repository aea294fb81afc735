// Package telemetry holds tracing bootstrap and request correlation helpers.
package telemetry

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

type ctxKey string

const requestIDKey ctxKey = "request_id"

// WithRequestID stores id in ctx.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFrom returns the request id stored in ctx, or "".
func RequestIDFrom(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

// NewRequestID returns a fresh random id.
func NewRequestID() string {
	return uuid.NewString()
}

// EnsureRequestID keeps a caller-supplied id (trimmed, max 128 bytes) or
// generates one.
func EnsureRequestID(supplied string) string {
	id := strings.TrimSpace(supplied)
	if id == "" || len(id) > 128 {
		return NewRequestID()
	}
	return id
}
