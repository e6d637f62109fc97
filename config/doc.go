// Package config loads the proxy's runtime settings from an optional YAML file
// and environment variables: listener address and timeouts, backend call
// timeout and connection pool sizing, the metrics listener, and log level.
// The service route table is compiled in and is not configurable here.
package config
