package server

import "context"

type contextKey string

const contextKeyRequestID contextKey = "requestID"

// RequestIDFromContext returns the request id set by the request id middleware, if any.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(contextKeyRequestID).(string)
	return id
}
