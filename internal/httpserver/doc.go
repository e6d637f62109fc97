// Package httpserver runs an http.Handler on a validated address with bounded
// timeouts and graceful shutdown.
package httpserver
