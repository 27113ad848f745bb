package preview

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector holds Prometheus metrics for the preview service.
type Collector struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	renderedBytes   *prometheus.CounterVec
}

// NewCollector creates a new metrics collector.
func NewCollector() *Collector {
	return &Collector{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pagekit_requests_total",
				Help: "Total preview requests by operation and status code",
			},
			[]string{"operation", "code"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pagekit_request_duration_seconds",
				Help:    "Preview request processing duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		renderedBytes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pagekit_rendered_bytes_total",
				Help: "Total bytes of rendered output",
			},
			[]string{"format"},
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.requestsTotal.Describe(ch)
	c.requestDuration.Describe(ch)
	c.renderedBytes.Describe(ch)
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.requestsTotal.Collect(ch)
	c.requestDuration.Collect(ch)
	c.renderedBytes.Collect(ch)
}

// RecordRequest records a completed request.
func (c *Collector) RecordRequest(operation, code string, seconds float64) {
	c.requestsTotal.WithLabelValues(operation, code).Inc()
	c.requestDuration.WithLabelValues(operation).Observe(seconds)
}

// RecordRender records the size of a rendered output.
func (c *Collector) RecordRender(format string, n int) {
	c.renderedBytes.WithLabelValues(format).Add(float64(n))
}
