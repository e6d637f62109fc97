package metrics

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type EventType string

const (
	EventRequestReceived   EventType = "request_received"
	EventRouteMissing      EventType = "route_missing"
	EventResponseCompleted EventType = "response_completed"
	EventUpstreamFailed    EventType = "upstream_failed"
)

type MetricEvent struct {
	Type       EventType
	Timestamp  time.Time
	Service    string
	Duration   time.Duration
	StatusCode int
	Reason     string
}

type Collector struct {
	eventCh    chan MetricEvent
	metrics    *Metrics
	prometheus *promMetrics
	registry   *prometheus.Registry
	logger     *slog.Logger
	done       chan struct{}
}

// NewCollector creates a collector whose Prometheus collectors are registered
// on reg. It panics if reg already holds collectors with the same names.
func NewCollector(bufferSize int, logger *slog.Logger, reg *prometheus.Registry) *Collector {
	return &Collector{
		eventCh:    make(chan MetricEvent, bufferSize),
		metrics:    NewMetrics(),
		prometheus: newPromMetrics(reg),
		registry:   reg,
		logger:     logger,
		done:       make(chan struct{}),
	}
}

// Emit queues event without blocking. Events are dropped when the buffer is
// full.
func (c *Collector) Emit(event MetricEvent) {
	if c == nil {
		return
	}

	select {
	case c.eventCh <- event:
	default:
		c.prometheus.dropped.Inc()
	}
}

func (c *Collector) Start(ctx context.Context) {
	go c.run(ctx)
}

// Done is closed once the collector has drained its queue after ctx ends.
func (c *Collector) Done() <-chan struct{} {
	return c.done
}

func (c *Collector) run(ctx context.Context) {
	c.logger.Info("Metrics collector started")
	defer c.logger.Info("Metrics collector stopped")
	defer close(c.done)

	for {
		select {
		case event := <-c.eventCh:
			c.processEvent(event)
		case <-ctx.Done():
			c.drain()
			return
		}
	}
}

func (c *Collector) processEvent(event MetricEvent) {
	switch event.Type {
	case EventRequestReceived:
		c.metrics.IncrementRequests(event.Service)
		c.prometheus.requests.WithLabelValues(event.Service).Inc()

	case EventRouteMissing:
		c.metrics.IncrementRequests(UnroutedService)
		c.prometheus.requests.WithLabelValues(UnroutedService).Inc()

	case EventResponseCompleted:
		c.metrics.RecordResponse(event.Service, event.Duration, event.StatusCode)
		c.prometheus.observeResponse(event.Service, event.Duration, event.StatusCode)

	case EventUpstreamFailed:
		c.metrics.RecordUpstreamError(event.Service, event.Reason)
		c.prometheus.upstreamErrors.WithLabelValues(event.Service, event.Reason).Inc()
	}
}

func (c *Collector) drain() {
	for {
		select {
		case event := <-c.eventCh:
			c.processEvent(event)
		default:
			return
		}
	}
}

func (c *Collector) Snapshot() Snapshot {
	return c.metrics.Snapshot()
}
