package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/angeloszaimis/api-proxy/internal/forwarder"
	"github.com/angeloszaimis/api-proxy/internal/metrics"
	"github.com/angeloszaimis/api-proxy/internal/routes"
)

// ParamService is the route parameter holding the service name.
const ParamService = "service"

type ProxyHandler struct {
	logger           *slog.Logger
	table            *routes.Table
	forwarder        *forwarder.Forwarder
	metricsCollector *metrics.Collector
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (h *ProxyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	service := chi.URLParam(r, ParamService)

	target, err := forwarder.Resolve(h.table, service, escapedTail(r), r.URL.RawQuery)
	if err != nil {
		h.reject(w, r, service, err, start)
		return
	}

	h.emitEvent(metrics.MetricEvent{
		Type:      metrics.EventRequestReceived,
		Timestamp: time.Now(),
		Service:   service,
	})

	h.logger.Debug("Forwarding to backend",
		slog.String("service", service),
		slog.String("target", target.String()))

	wrapped := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

	var fwdErr error
	defer func() {
		h.complete(service, start, wrapped.statusCode, fwdErr)
	}()

	fwdErr = h.forwarder.Forward(wrapped, r, target)

	var upstreamErr *forwarder.UpstreamError
	if errors.As(fwdErr, &upstreamErr) && upstreamErr.Aborted && r.Context().Value(http.ServerContextKey) != nil {
		// Headers are already out; only dropping the connection tells the
		// caller the body is incomplete.
		panic(http.ErrAbortHandler)
	}
}

// complete records the outcome of a forwarded request.
func (h *ProxyHandler) complete(service string, start time.Time, status int, err error) {
	var upstreamErr *forwarder.UpstreamError
	if errors.As(err, &upstreamErr) {
		h.emitEvent(metrics.MetricEvent{
			Type:      metrics.EventUpstreamFailed,
			Timestamp: time.Now(),
			Service:   service,
			Reason:    upstreamErr.Kind.String(),
		})
	}

	h.emitEvent(metrics.MetricEvent{
		Type:       metrics.EventResponseCompleted,
		Timestamp:  time.Now(),
		Service:    service,
		Duration:   time.Since(start),
		StatusCode: status,
	})
}

// escapedTail returns the part of the escaped request path after
// /api/{service}, keeping the caller's percent-encoding. It is empty for the
// service root.
func escapedTail(r *http.Request) string {
	p := strings.TrimPrefix(r.URL.EscapedPath(), "/api/")
	if i := strings.IndexByte(p, '/'); i >= 0 {
		return p[i:]
	}

	return ""
}

// reject answers requests that never reach a backend.
func (h *ProxyHandler) reject(w http.ResponseWriter, r *http.Request, service string, err error, start time.Time) {
	status := forwarder.StatusFor(err)

	if errors.Is(err, forwarder.ErrUnknownService) {
		h.logger.Info("Unknown service",
			slog.String("service", service),
			slog.String("path", r.URL.Path))
		h.emitEvent(metrics.MetricEvent{
			Type:      metrics.EventRouteMissing,
			Timestamp: time.Now(),
			Service:   service,
		})
		service = metrics.UnroutedService
	} else {
		h.logger.Warn("Cannot build backend URI",
			slog.String("service", service),
			slog.String("path", r.URL.Path),
			slog.Any("err", err))
		h.emitEvent(metrics.MetricEvent{
			Type:      metrics.EventRequestReceived,
			Timestamp: time.Now(),
			Service:   service,
		})
	}

	w.WriteHeader(status)

	h.emitEvent(metrics.MetricEvent{
		Type:       metrics.EventResponseCompleted,
		Timestamp:  time.Now(),
		Service:    service,
		Duration:   time.Since(start),
		StatusCode: status,
	})
}

func (h *ProxyHandler) emitEvent(event metrics.MetricEvent) {
	if h.metricsCollector == nil {
		return
	}

	h.metricsCollector.Emit(event)
}

func (r *statusRecorder) WriteHeader(code int) {
	r.statusCode = code
	r.ResponseWriter.WriteHeader(code)
}

// Unwrap lets http.ResponseController reach the underlying writer, which the
// reverse proxy uses to flush streamed responses.
func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// NewProxyHandler creates the /api/{service}/ handler. collector may be nil.
func NewProxyHandler(logger *slog.Logger, table *routes.Table, fwd *forwarder.Forwarder, collector *metrics.Collector) *ProxyHandler {
	return &ProxyHandler{
		logger:           logger,
		table:            table,
		forwarder:        fwd,
		metricsCollector: collector,
	}
}

// Healthz always answers 200 with an empty body.
func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
