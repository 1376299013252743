// Package config loads and validates the configuration of the nexus server
// and terminal client.
//
// Configuration is assembled from four sources, merged in priority order
// (environment variables, command-line flags, an optional JSON file, then
// built-in defaults). See [GetStructuredConfig] for server configuration and
// [GetClientConfig] for client-specific configuration.
package config
