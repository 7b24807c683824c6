package config

import "time"

// Default configuration values.
const (
	DefaultAddr              = ":8080"
	DefaultMaxFacetLength    = 4096
	DefaultReadHeaderTimeout = 10 * time.Second
	DefaultShutdownTimeout   = 5 * time.Second
)

// DefaultServerConfig returns a ServerConfig with default values.
func DefaultServerConfig() ServerConfig {
	var s ServerConfig
	s.ApplyDefaults()
	return s
}
