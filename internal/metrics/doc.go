// Package metrics collects per-service proxy metrics.
//
// Request handlers emit events on a buffered channel without blocking; a
// single collector goroutine folds them into:
//   - Request counts per service, with unrouted names counted under one key
//   - Response times with percentile calculations (P50, P95, P99)
//   - HTTP status code distribution
//   - Upstream failures by kind (unavailable, timeout, canceled, protocol)
//
// The same events update Prometheus collectors registered on a caller-supplied
// registry. Example usage:
//
//	reg := prometheus.NewRegistry()
//	collector := metrics.NewCollector(1000, logger, reg)
//	collector.Start(ctx)
//
//	collector.Emit(metrics.MetricEvent{
//		Type:       metrics.EventResponseCompleted,
//		Service:    "ugc-gateway",
//		Duration:   150 * time.Millisecond,
//		StatusCode: 201,
//	})
//
//	snapshot := collector.Snapshot()
//
// On shutdown the collector drains queued events before returning.
package metrics
