// Package requestctx carries the per-request id through context so the
// audit trail and the response envelope share the same value.
package requestctx

import "context"

type key int

const requestIDKey key = 0

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// GetRequestID returns the id set by the request-id middleware, or ""
// for contexts that never passed through it.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
