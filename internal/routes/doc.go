// Package routes holds the fixed table that maps a service name, as it appears
// in the /api/{service}/ path segment, to the port its backend listens on.
package routes
