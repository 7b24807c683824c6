// Package config provides configuration management for the leapquery CLI.
//
// Settings are layered with koanf: defaults, then leapquery.yaml, then
// LEAPQUERY_* environment variables, then explicitly set flags. Server settings
// reuse the shared types from internal/config.
package config

import (
	sharedcfg "github.com/leapstack-labs/leapquery/internal/config"
)

// ServerConfig is an alias for the shared HTTP binding configuration.
type ServerConfig = sharedcfg.ServerConfig

// Config holds all CLI configuration options.
type Config struct {
	// Dialect is the dialect query objects are emitted in.
	Dialect      string       `koanf:"dialect"`
	OutputFormat string       `koanf:"output"`
	Verbose      bool         `koanf:"verbose"`
	LogLevel     string       `koanf:"log_level"`
	Server       ServerConfig `koanf:"server"`
}

// Output formats.
const (
	OutputJSON  = "json"
	OutputYAML  = "yaml"
	OutputTable = "table"
)

// Default configuration values.
const (
	DefaultDialect  = "legacy"
	DefaultOutput   = OutputJSON
	DefaultLogLevel = "info"
)

// OutputFormats lists the supported output formats.
var OutputFormats = []string{OutputJSON, OutputYAML, OutputTable}

// Default returns a Config populated with default values.
func Default() *Config {
	return &Config{
		Dialect:      DefaultDialect,
		OutputFormat: DefaultOutput,
		LogLevel:     DefaultLogLevel,
		Server:       sharedcfg.DefaultServerConfig(),
	}
}
