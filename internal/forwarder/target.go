package forwarder

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/angeloszaimis/api-proxy/internal/routes"
)

// Resolve looks service up in table and builds its target URL.
func Resolve(table *routes.Table, service, rest, rawQuery string) (*url.URL, error) {
	port, ok := table.Lookup(service)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownService, service)
	}

	return Target(service, port, rest, rawQuery)
}

// Target builds http://{service}:{port}{rest}[?rawQuery]. The service name is
// used verbatim as the hostname. rest is an escaped path and keeps its
// percent-encoding; it always ends up starting with "/", so an empty rest
// addresses the backend root.
func Target(service string, port int, rest, rawQuery string) (*url.URL, error) {
	if !strings.HasPrefix(rest, "/") {
		rest = "/" + rest
	}

	raw := "http://" + net.JoinHostPort(service, strconv.Itoa(port)) + rest
	if rawQuery != "" {
		raw += "?" + rawQuery
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedURI, err)
	}

	return u, nil
}
