// Package handler implements the HTTP endpoints of the proxy: the health
// check, and the /api/{service}/ handler that resolves a service and hands the
// request to the forwarder.
package handler
