package forwarder

import (
	"net/http"
	"time"
)

type TransportOptions struct {
	MaxIdleConnsPerHost int
	IdleConnTimeout     time.Duration
}

// NewTransport returns the connection pool shared by all outbound calls. Dial,
// TLS and keep-alive behaviour come from http.DefaultTransport.
func NewTransport(opts TransportOptions) *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()

	if opts.MaxIdleConnsPerHost > 0 {
		t.MaxIdleConnsPerHost = opts.MaxIdleConnsPerHost
	}
	if opts.IdleConnTimeout > 0 {
		t.IdleConnTimeout = opts.IdleConnTimeout
	}

	return t
}
