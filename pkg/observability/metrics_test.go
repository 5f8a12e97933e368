package observability

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/rhuss/respipe/pkg/transport"
)

// TestMetricsRegistered verifies that all metrics are registered in the
// default registry without panicking.
func TestMetricsRegistered(t *testing.T) {
	expected := map[string]bool{
		"respipe_requests_total":              false,
		"respipe_request_duration_seconds":    false,
		"respipe_requests_in_flight":          false,
		"respipe_transformer_decisions_total": false,
		"respipe_body_restarts_total":         false,
		"respipe_buffered_bytes":              false,
		"respipe_error_pages_total":           false,
	}

	// Vectors only appear after their first observation, so seed them.
	RequestsTotal.WithLabelValues("GET", "2xx").Inc()
	RequestDuration.WithLabelValues("GET").Observe(0.1)
	TransformerDecisionsTotal.WithLabelValues("test", DecisionWorking).Inc()
	BodyRestartsTotal.WithLabelValues("test").Inc()
	BufferedBytes.Observe(10)
	ErrorPagesTotal.WithLabelValues("test").Inc()

	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("unexpected gather error: %v", err)
	}

	for _, mf := range families {
		if _, ok := expected[mf.GetName()]; ok {
			expected[mf.GetName()] = true
		}
	}

	for name, found := range expected {
		if !found {
			t.Errorf("metric %q not found in default registry", name)
		}
	}
}

// TestMiddlewareRecordsRequestCount verifies that the middleware increments
// the request counter with the final status class.
func TestMiddlewareRecordsRequestCount(t *testing.T) {
	before := CounterValue(RequestsTotal, "GET", "4xx")

	stage := transport.StageFunc(func(ctx context.Context, x *transport.Exchange) error {
		x.Response.StatusCode = 404
		return nil
	})

	x, _ := transport.NewRecorder(httptest.NewRequest("GET", "/missing", nil), false)
	Middleware()(stage).Serve(context.Background(), x)

	after := CounterValue(RequestsTotal, "GET", "4xx")
	if after-before != 1 {
		t.Errorf("expected 4xx count to increase by 1, got delta=%f", after-before)
	}
}

// TestMiddlewareCountsUnsentFailureAs5xx verifies that a failed request with
// nothing sent is counted as a server error.
func TestMiddlewareCountsUnsentFailureAs5xx(t *testing.T) {
	before := CounterValue(RequestsTotal, "POST", "5xx")

	stage := transport.StageFunc(func(ctx context.Context, x *transport.Exchange) error {
		return errors.New("boom")
	})

	x, _ := transport.NewRecorder(httptest.NewRequest("POST", "/", nil), false)
	Middleware()(stage).Serve(context.Background(), x)

	after := CounterValue(RequestsTotal, "POST", "5xx")
	if after-before != 1 {
		t.Errorf("expected 5xx count to increase by 1, got delta=%f", after-before)
	}
}

// TestMiddlewareRecordsDuration verifies that the middleware records one
// duration observation per request.
func TestMiddlewareRecordsDuration(t *testing.T) {
	before := histogramCount(t, RequestDuration, "HEAD")

	stage := transport.StageFunc(func(ctx context.Context, x *transport.Exchange) error {
		return nil
	})

	x, _ := transport.NewRecorder(httptest.NewRequest("HEAD", "/", nil), false)
	Middleware()(stage).Serve(context.Background(), x)

	after := histogramCount(t, RequestDuration, "HEAD")
	if after-before != 1 {
		t.Errorf("expected histogram sample count to increase by 1, got delta=%d", after-before)
	}
}

// TestMiddlewareInFlightGauge verifies that the gauge is raised while the
// request is inside the chain and restored afterwards.
func TestMiddlewareInFlightGauge(t *testing.T) {
	baseline := gaugeValue(t, InFlightRequests)

	var during float64
	stage := transport.StageFunc(func(ctx context.Context, x *transport.Exchange) error {
		during = gaugeValue(t, InFlightRequests)
		return nil
	})

	x, _ := transport.NewRecorder(httptest.NewRequest("GET", "/", nil), false)
	Middleware()(stage).Serve(context.Background(), x)

	if during != baseline+1 {
		t.Errorf("expected gauge=%f during request, got %f", baseline+1, during)
	}
	if after := gaugeValue(t, InFlightRequests); after != baseline {
		t.Errorf("expected gauge=%f after request, got %f", baseline, after)
	}
}

func TestStatusClass(t *testing.T) {
	tests := map[int]string{200: "2xx", 204: "2xx", 304: "3xx", 404: "4xx", 500: "5xx"}
	for status, want := range tests {
		if got := StatusClass(status); got != want {
			t.Errorf("StatusClass(%d) = %q, want %q", status, got, want)
		}
	}
}

// histogramCount reads the observation count from a HistogramVec.
func histogramCount(t *testing.T, hv *prometheus.HistogramVec, labels ...string) uint64 {
	t.Helper()
	m := &dto.Metric{}
	obs, err := hv.GetMetricWithLabelValues(labels...)
	if err != nil {
		t.Fatalf("getting histogram metric: %v", err)
	}
	if err := obs.(prometheus.Metric).Write(m); err != nil {
		t.Fatalf("writing histogram metric: %v", err)
	}
	return m.GetHistogram().GetSampleCount()
}

// gaugeValue reads the current value of a Gauge.
func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	m := &dto.Metric{}
	if err := g.Write(m); err != nil {
		t.Fatalf("writing gauge metric: %v", err)
	}
	return m.GetGauge().GetValue()
}
