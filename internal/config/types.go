// Package config provides shared configuration types for leapquery.
// This package is decoupled from CLI concerns so the HTTP binding can be
// configured without importing cobra or koanf.
package config

import (
	"fmt"
	"time"
)

// ServerConfig holds settings for the HTTP binding.
type ServerConfig struct {
	Addr              string        `koanf:"addr"`
	MaxFacetLength    int           `koanf:"max_facet_length"`
	ReadHeaderTimeout time.Duration `koanf:"read_header_timeout"`
	ShutdownTimeout   time.Duration `koanf:"shutdown_timeout"`
}

// ApplyDefaults fills unset fields with default values.
func (s *ServerConfig) ApplyDefaults() {
	if s.Addr == "" {
		s.Addr = DefaultAddr
	}
	if s.MaxFacetLength == 0 {
		s.MaxFacetLength = DefaultMaxFacetLength
	}
	if s.ReadHeaderTimeout == 0 {
		s.ReadHeaderTimeout = DefaultReadHeaderTimeout
	}
	if s.ShutdownTimeout == 0 {
		s.ShutdownTimeout = DefaultShutdownTimeout
	}
}

// Validate checks if the server configuration is usable.
func (s *ServerConfig) Validate() error {
	if s.MaxFacetLength < 0 {
		return fmt.Errorf("server.max_facet_length must not be negative, got %d", s.MaxFacetLength)
	}
	if s.ReadHeaderTimeout < 0 {
		return fmt.Errorf("server.read_header_timeout must not be negative, got %s", s.ReadHeaderTimeout)
	}
	if s.ShutdownTimeout < 0 {
		return fmt.Errorf("server.shutdown_timeout must not be negative, got %s", s.ShutdownTimeout)
	}
	return nil
}
