// Package config defines service configuration structures and loading.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Layer optional YAML file and env vars on top via Load.
// - External errors are wrapped via this package's sentinel kinds.
package config

import "runtime"

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// ImportQueueSize bounds the in-memory intake queue.
	ImportQueueSize int `koanf:"import_queue_size"`

	// WorkerCount sets the number of intake workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize bounds the import fingerprint cache.
	DedupeSize int `koanf:"dedupe_size"`

	// MaxListLimit caps GET /clients?limit.
	MaxListLimit int `koanf:"max_list_limit"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:        "info",
		Addr:            ":9080",
		ImportQueueSize: 10_000,
		WorkerCount:     runtime.NumCPU() * 2,
		DedupeSize:      50_000,
		MaxListLimit:    500,
	}
}
