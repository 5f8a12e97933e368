package transport

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
)

// Recovery returns middleware that catches panics in later stages and
// converts them to an error wrapping ErrPanic. The server continues to
// accept new requests after a panic is recovered.
func Recovery(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next Stage) Stage {
		return StageFunc(func(ctx context.Context, x *Exchange) (retErr error) {
			defer func() {
				if r := recover(); r != nil {
					logger.ErrorContext(ctx, "panic recovered",
						slog.String("request_id", RequestIDFromContext(ctx)),
						slog.Any("panic", r),
						slog.String("stack", string(debug.Stack())),
					)
					retErr = fmt.Errorf("%w: %v", ErrPanic, r)
				}
			}()
			return next.Serve(ctx, x)
		})
	}
}
