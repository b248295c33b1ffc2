// Package config handles configuration loading, parsing, and validation
// from defaults, an optional YAML file and REGISTRY_* environment variables.
// It provides type-safe access to the settings needed by the server, the
// database pool, the dashboard cache and photo uploads.
package config
