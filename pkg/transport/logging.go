package transport

import (
	"context"
	"log/slog"
	"time"
)

// Logging returns middleware that emits one structured log entry per
// request with request ID, method, path, final status, the number of bytes
// that reached the sink, and duration. Failed requests are logged at
// error level.
//
// The byte count is read from the body that is current once later stages
// have returned, which is the host sink when every transformer restored
// the body it displaced.
func Logging(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next Stage) Stage {
		return StageFunc(func(ctx context.Context, x *Exchange) error {
			start := time.Now()

			err := next.Serve(ctx, x)

			attrs := []slog.Attr{
				slog.String("request_id", RequestIDFromContext(ctx)),
				slog.Int("status", x.Response.StatusCode),
				slog.Int64("bytes", x.Response.Body().Len()),
				slog.Duration("duration", time.Since(start)),
			}
			if x.Request != nil {
				attrs = append(attrs,
					slog.String("method", x.Request.Method),
					slog.String("path", x.Request.URL.Path),
				)
			}

			if err != nil {
				attrs = append(attrs, slog.String("error", err.Error()))
				logger.LogAttrs(ctx, slog.LevelError, "request failed", attrs...)
			} else {
				logger.LogAttrs(ctx, slog.LevelInfo, "request completed", attrs...)
			}

			return err
		})
	}
}
