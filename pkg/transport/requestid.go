package transport

import (
	"context"
	"crypto/rand"
	"encoding/hex"
)

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = "X-Request-ID"

// requestIDKeyType is the context key type for request IDs.
type requestIDKeyType struct{}

// requestIDKey is the context key for storing and retrieving request IDs.
var requestIDKey = requestIDKeyType{}

// RequestIDFromContext extracts the request ID from the context.
// Returns an empty string if no request ID is set.
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// ContextWithRequestID returns a new context with the given request ID.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestID returns middleware that assigns a unique request ID to each
// request. An ID already present in the context or in the X-Request-ID
// request header is kept; otherwise a new one is generated. The ID is
// echoed in the X-Request-ID response header.
func RequestID() Middleware {
	return func(next Stage) Stage {
		return StageFunc(func(ctx context.Context, x *Exchange) error {
			id := RequestIDFromContext(ctx)
			if id == "" && x.Request != nil {
				id = x.Request.Header.Get(RequestIDHeader)
			}
			if id == "" {
				id = generateRequestID()
			}
			ctx = ContextWithRequestID(ctx, id)
			x.Response.Header().Set(RequestIDHeader, id)
			return next.Serve(ctx, x)
		})
	}
}

// generateRequestID creates a new unique request ID as a hex string.
func generateRequestID() string {
	b := make([]byte, 16)
	rand.Read(b)
	return hex.EncodeToString(b)
}
