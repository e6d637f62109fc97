package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type promMetrics struct {
	requests       *prometheus.CounterVec
	responses      *prometheus.CounterVec
	upstreamErrors *prometheus.CounterVec
	duration       *prometheus.HistogramVec
	dropped        prometheus.Counter
}

func newPromMetrics(reg *prometheus.Registry) *promMetrics {
	m := &promMetrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "apiproxy_requests_total",
				Help: "Total number of proxied requests received, by service",
			},
			[]string{"service"},
		),
		responses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "apiproxy_responses_total",
				Help: "Total number of responses returned to callers, by service and status code",
			},
			[]string{"service", "code"},
		),
		upstreamErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "apiproxy_upstream_errors_total",
				Help: "Total number of failed backend calls, by service and failure kind",
			},
			[]string{"service", "kind"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "apiproxy_response_duration_seconds",
				Help:    "Time from request receipt to response completion, by service",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"service"},
		),
		dropped: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "apiproxy_metric_events_dropped_total",
				Help: "Metric events dropped because the collector buffer was full",
			},
		),
	}

	reg.MustRegister(m.requests, m.responses, m.upstreamErrors, m.duration, m.dropped)

	return m
}

func (m *promMetrics) observeResponse(service string, duration time.Duration, statusCode int) {
	m.responses.WithLabelValues(service, strconv.Itoa(statusCode)).Inc()
	m.duration.WithLabelValues(service).Observe(duration.Seconds())
}
