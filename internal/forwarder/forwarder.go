package forwarder

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"time"

	"github.com/angeloszaimis/api-proxy/internal/cors"
)

// ReverseProxy drops inbound forwarding headers when Rewrite is used. They are
// copied back so the backend sees the caller's headers unchanged.
var forwardedHeaders = []string{"Forwarded", "X-Forwarded-For", "X-Forwarded-Host", "X-Forwarded-Proto"}

type exchangeKey struct{}

// exchange carries the per-request target into the shared proxy and the
// outcome back out of it.
type exchange struct {
	target *url.URL
	err    error
}

// Forwarder relays requests to backend services over one shared transport.
type Forwarder struct {
	proxy   *httputil.ReverseProxy
	timeout time.Duration
	logger  *slog.Logger
}

// New creates a Forwarder. transport is shared by all requests and must be
// safe for concurrent use. A zero timeout leaves backend calls bounded only by
// the caller's context.
func New(transport http.RoundTripper, timeout time.Duration, logger *slog.Logger) *Forwarder {
	f := &Forwarder{
		timeout: timeout,
		logger:  logger,
	}

	f.proxy = &httputil.ReverseProxy{
		Transport:      transport,
		Rewrite:        f.rewrite,
		ModifyResponse: f.modifyResponse,
		ErrorHandler:   f.handleError,
		ErrorLog:       slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	return f
}

// Forward sends r to target and streams the response to w. Only the request
// URI is replaced; method, headers and body are reused as received.
//
// A non-nil error is always an *UpstreamError. Unless its Aborted field is
// set, a gateway error response has already been written to w. Aborted means
// the backend response was cut short after its headers were relayed; the
// caller owns the decision to abort the connection.
func (f *Forwarder) Forward(w http.ResponseWriter, r *http.Request, target *url.URL) (err error) {
	ctx := r.Context()
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	ex := &exchange{target: target}
	ctx = context.WithValue(ctx, exchangeKey{}, ex)

	defer func() {
		if p := recover(); p != nil {
			if p != http.ErrAbortHandler {
				panic(p)
			}
			ex.err = f.cutShort(ctx, target)
		} else if ex.err == nil && ctx.Err() != nil {
			ex.err = f.cutShort(ctx, target)
		}
		err = ex.err
	}()

	f.proxy.ServeHTTP(w, r.WithContext(ctx))

	return nil
}

// cutShort records a response whose body could not be relayed in full.
func (f *Forwarder) cutShort(ctx context.Context, target *url.URL) *UpstreamError {
	cause := ctx.Err()
	if cause == nil {
		cause = errBodyInterrupted
	}

	upstreamErr := &UpstreamError{
		Kind:    classify(ctx, cause),
		Target:  target.Host,
		Err:     cause,
		Aborted: true,
	}
	f.logFailure(target, upstreamErr)

	return upstreamErr
}

func (f *Forwarder) rewrite(pr *httputil.ProxyRequest) {
	ex := pr.In.Context().Value(exchangeKey{}).(*exchange)

	target := *ex.target
	pr.Out.URL = &target
	for _, name := range forwardedHeaders {
		if values, ok := pr.In.Header[name]; ok {
			pr.Out.Header[name] = values
		}
	}
}

func (f *Forwarder) modifyResponse(res *http.Response) error {
	cors.Decorate(res.Header)
	return nil
}

func (f *Forwarder) handleError(w http.ResponseWriter, r *http.Request, err error) {
	ex := r.Context().Value(exchangeKey{}).(*exchange)

	upstreamErr := &UpstreamError{
		Kind:   classify(r.Context(), err),
		Target: ex.target.Host,
		Err:    err,
	}
	ex.err = upstreamErr

	f.logFailure(ex.target, upstreamErr)

	cors.Decorate(w.Header())
	w.WriteHeader(StatusFor(upstreamErr))
}

func (f *Forwarder) logFailure(target *url.URL, upstreamErr *UpstreamError) {
	if upstreamErr.Kind == KindCanceled {
		f.logger.Debug("Caller went away before backend answered",
			slog.String("target", target.String()),
			slog.Bool("aborted", upstreamErr.Aborted),
			slog.String("err", upstreamErr.Err.Error()))
		return
	}

	f.logger.Warn("Backend call failed",
		slog.String("target", target.String()),
		slog.String("kind", upstreamErr.Kind.String()),
		slog.Bool("aborted", upstreamErr.Aborted),
		slog.String("err", upstreamErr.Err.Error()))
}
