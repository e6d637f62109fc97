package forwarder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
)

var (
	// ErrUnknownService is returned by Resolve for names missing from the
	// route table.
	ErrUnknownService = errors.New("unknown service")
	// ErrMalformedURI is returned when the backend URL cannot be parsed.
	ErrMalformedURI = errors.New("malformed target URI")

	errBodyInterrupted = fmt.Errorf("response body interrupted: %w", io.ErrUnexpectedEOF)
)

// Kind says why a backend call failed.
type Kind int

const (
	// KindUnavailable is a dial or connection failure.
	KindUnavailable Kind = iota
	// KindTimeout means the backend did not finish within the timeout.
	KindTimeout
	// KindCanceled means the caller went away.
	KindCanceled
	// KindProtocol is a malformed backend response.
	KindProtocol
)

func (k Kind) String() string {
	switch k {
	case KindUnavailable:
		return "unavailable"
	case KindTimeout:
		return "timeout"
	case KindCanceled:
		return "canceled"
	case KindProtocol:
		return "protocol"
	default:
		return "unknown"
	}
}

// UpstreamError reports a failed backend call. Aborted is set when the
// failure happened after the response headers had been relayed, so no
// gateway status could be written.
type UpstreamError struct {
	Kind    Kind
	Target  string
	Err     error
	Aborted bool
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s (%s): %v", e.Target, e.Kind, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// StatusFor maps an error returned by Resolve or Forward onto the status code
// the caller receives.
func StatusFor(err error) int {
	var upstreamErr *UpstreamError

	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrUnknownService):
		return http.StatusNotFound
	case errors.Is(err, ErrMalformedURI):
		return http.StatusBadRequest
	case errors.As(err, &upstreamErr) && upstreamErr.Kind == KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

// classify decides why a round trip failed. ctx is the outbound request
// context and takes precedence over the shape of err.
func classify(ctx context.Context, err error) Kind {
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded), errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	case errors.Is(ctx.Err(), context.Canceled), errors.Is(err, context.Canceled):
		return KindCanceled
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}

	var opErr *net.OpError
	var dnsErr *net.DNSError
	if errors.As(err, &opErr) || errors.As(err, &dnsErr) ||
		errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return KindUnavailable
	}

	return KindProtocol
}
