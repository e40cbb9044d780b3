// Package requestctx carries the per-request correlation id through
// context, so services and stores can log it without importing the
// HTTP layer.
package requestctx

import "context"

type contextKey struct{}

var requestIDKey contextKey

// WithRequestID stores the correlation id on the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// GetRequestID returns the correlation id, or "" when none was set.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
