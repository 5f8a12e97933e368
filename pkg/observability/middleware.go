package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/rhuss/respipe/pkg/transport"
)

// Middleware returns stage middleware that records request metrics.
//
// It captures:
//   - respipe_requests_total (counter): per request with method and status class labels
//   - respipe_request_duration_seconds (histogram): request duration by method
//   - respipe_requests_in_flight (gauge): requests currently inside the chain
//
// The status is read from the response once later stages have returned, so
// an error page substituted by a restart is counted with its final status.
func Middleware() transport.Middleware {
	return func(next transport.Stage) transport.Stage {
		return transport.StageFunc(func(ctx context.Context, x *transport.Exchange) error {
			start := time.Now()
			InFlightRequests.Inc()
			defer InFlightRequests.Dec()

			err := next.Serve(ctx, x)

			method := "UNKNOWN"
			if x.Request != nil {
				method = x.Request.Method
			}
			status := x.Response.StatusCode
			if err != nil && !x.Response.HeadersSent() {
				// The host answers with a 500 when nothing was sent yet.
				status = 500
			}
			RequestsTotal.WithLabelValues(method, StatusClass(status)).Inc()
			RequestDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
			return err
		})
	}
}

// StatusClass builds a status class label like "2xx", "4xx", "5xx".
func StatusClass(status int) string {
	return strconv.Itoa(status/100) + "xx"
}
