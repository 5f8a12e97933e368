package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// CounterValue reads the current value of one series of a CounterVec.
// It returns 0 for a series that cannot be written, which only happens for
// a label count mismatch.
func CounterValue(cv *prometheus.CounterVec, labels ...string) float64 {
	c, err := cv.GetMetricWithLabelValues(labels...)
	if err != nil {
		return 0
	}
	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		return 0
	}
	return m.GetCounter().GetValue()
}

// HistogramCount reads the number of observations of a Histogram.
func HistogramCount(h prometheus.Histogram) uint64 {
	m := &dto.Metric{}
	if err := h.Write(m); err != nil {
		return 0
	}
	return m.GetHistogram().GetSampleCount()
}
