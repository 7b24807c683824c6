package config

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("dialect", "", "")
	fs.StringP("output", "o", "", "")
	fs.BoolP("verbose", "v", false, "")
	fs.String("log-level", "", "")
	return fs
}

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	ResetConfig()

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultDialect, cfg.Dialect)
	assert.Equal(t, DefaultOutput, cfg.OutputFormat)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.False(t, cfg.Verbose)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 4096, cfg.Server.MaxFacetLength)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadHeaderTimeout)
	assert.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)
	assert.Empty(t, GetConfigFileUsed())
}

func TestLoadConfig_FileInWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeConfig(t, dir, "leapquery.yml", `
dialect: modern
output: yaml
server:
  addr: ":9090"
  read_header_timeout: 2s
`)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, "modern", cfg.Dialect)
	assert.Equal(t, OutputYAML, cfg.OutputFormat)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 2*time.Second, cfg.Server.ReadHeaderTimeout)
	assert.Equal(t, 4096, cfg.Server.MaxFacetLength, "unset server values keep defaults")
	assert.Equal(t, "leapquery.yml", GetConfigFileUsed())
}

func TestLoadConfig_Precedence(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := writeConfig(t, dir, "custom.yaml", `
dialect: modern
output: yaml
log_level: warn
server:
  max_facet_length: 100
`)

	t.Setenv("LEAPQUERY_OUTPUT", "table")
	t.Setenv("LEAPQUERY_SERVER__MAX_FACET_LENGTH", "200")

	fs := newFlagSet()
	require.NoError(t, fs.Parse([]string{"--dialect", "legacy", "--log-level", "debug"}))

	cfg, err := LoadConfig(path, fs)
	require.NoError(t, err)

	assert.Equal(t, "legacy", cfg.Dialect, "flag beats config file")
	assert.Equal(t, OutputTable, cfg.OutputFormat, "env beats config file")
	assert.Equal(t, 200, cfg.Server.MaxFacetLength, "env reaches nested keys")
	assert.Equal(t, "debug", cfg.LogLevel, "kebab-case flag maps to snake_case key")
	assert.Equal(t, path, GetConfigFileUsed())
}

func TestLoadConfig_UnchangedFlagsDoNotOverride(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeConfig(t, dir, "leapquery.yaml", "dialect: modern\n")

	fs := newFlagSet()
	require.NoError(t, fs.Parse(nil))

	cfg, err := LoadConfig("", fs)
	require.NoError(t, err)
	assert.Equal(t, "modern", cfg.Dialect)
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		errSubstr string
	}{
		{"unknown dialect", "dialect: mongo\n", "invalid dialect"},
		{"unknown output", "output: xml\n", "unknown output format"},
		{"unknown log level", "log_level: loud\n", "unknown log level"},
		{"negative facet length", "server:\n  max_facet_length: -1\n", "max_facet_length"},
		{"broken yaml", "dialect: [modern\n", "error reading config file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			t.Chdir(dir)
			path := writeConfig(t, dir, "leapquery.yaml", tt.content)

			_, err := LoadConfig(path, nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := LoadConfig("does-not-exist.yaml", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does-not-exist.yaml")
}

func TestContextAccessors(t *testing.T) {
	ctx := context.Background()

	assert.Equal(t, Default(), GetConfig(ctx), "default config when none stored")
	assert.NotNil(t, GetLogger(ctx), "discard logger when none stored")

	cfg := Default()
	cfg.Dialect = "modern"
	ctx = WithConfig(ctx, cfg)
	assert.Same(t, cfg, GetConfig(ctx))

	var buf bytes.Buffer
	logger := NewLogger(cfg, &buf)
	ctx = WithLogger(ctx, logger)
	assert.Same(t, logger, GetLogger(ctx))
}

func TestNewLogger_Levels(t *testing.T) {
	var buf bytes.Buffer

	cfg := Default()
	cfg.LogLevel = "warn"
	logger := NewLogger(cfg, &buf)
	logger.Info("hidden")
	logger.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")

	buf.Reset()
	cfg.Verbose = true
	logger = NewLogger(cfg, &buf)
	logger.Debug("debug line")
	assert.Contains(t, buf.String(), "debug line")
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"debug", false},
		{"INFO", false},
		{"warn", false},
		{"error", false},
		{"", true},
		{"chatty", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseLogLevel(tt.name)
			assert.Equal(t, tt.wantErr, err != nil)
		})
	}
}
