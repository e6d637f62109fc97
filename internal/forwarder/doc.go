// Package forwarder rewrites a routed request onto its backend service and
// relays the backend response, decorated with CORS headers, to the caller.
//
// One Forwarder, and the connection pool of its transport, is built at startup
// and shared by every request. Transport failures are returned to the caller as
// typed errors so they can be mapped onto 5xx responses instead of aborting the
// request.
package forwarder
