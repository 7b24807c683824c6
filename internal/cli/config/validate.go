package config

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/leapstack-labs/leapquery/pkg/dialect"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if _, err := dialect.Lookup(c.Dialect); err != nil {
		return fmt.Errorf("invalid dialect: %w\nHint: set dialect in leapquery.yaml or use --dialect", err)
	}
	if !slices.Contains(OutputFormats, c.OutputFormat) {
		return fmt.Errorf("unknown output format %q (available: %s)", c.OutputFormat, strings.Join(OutputFormats, ", "))
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	return c.Server.Validate()
}

// ParseLogLevel converts a level name into a slog level.
func ParseLogLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return 0, fmt.Errorf("unknown log level %q", name)
	}
	return level, nil
}
