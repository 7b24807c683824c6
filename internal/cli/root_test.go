package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/leapquery/internal/cli/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	config.ResetConfig()

	cmd := NewRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRootCmd_Subcommands(t *testing.T) {
	cmd := NewRootCmd()

	assert.Equal(t, "leapquery", cmd.Use)
	for _, name := range []string{"parse", "convert", "dialects", "serve", "version", "completion"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, sub.Name())
	}

	for _, flag := range []string{"config", "dialect", "output", "verbose", "log-level"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), "flag %q should exist", flag)
	}
}

func TestRootCmd_ParseDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	out, _, err := run(t, "parse", "--select", "[a, {b: {select: [c]}}]")
	require.NoError(t, err)
	assert.Equal(t, `{"project":{"a":1,"b":{"project":["c"]}}}`+"\n", out)
}

func TestRootCmd_GlobalFlags(t *testing.T) {
	t.Chdir(t.TempDir())

	out, _, err := run(t, "parse", "--dialect", "modern", "-o", "yaml", "--select", "[a]")
	require.NoError(t, err)
	assert.Contains(t, out, "select:")
	assert.Contains(t, out, "- a")
}

func TestRootCmd_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "leapquery.yaml"), []byte("dialect: modern\n"), 0o600))

	out, _, err := run(t, "parse", "--select", "[a, {b: 1}]")
	require.NoError(t, err)
	assert.Equal(t, `{"select":["a",{"b":1}]}`+"\n", out)

	out, _, err = run(t, "parse", "--dialect", "legacy", "--select", "[a, {b: 1}]")
	require.NoError(t, err)
	assert.Equal(t, `{"project":{"a":1,"b":1}}`+"\n", out, "flag beats config file")
}

func TestRootCmd_VerboseLogsToStderr(t *testing.T) {
	t.Chdir(t.TempDir())

	out, errOut, err := run(t, "-v", "parse", "--limit", "1")
	require.NoError(t, err)
	assert.Equal(t, `{"limit":1}`+"\n", out)
	assert.Contains(t, errOut, "target dialect")
}

func TestRootCmd_Errors(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		errSubstr string
	}{
		{"unknown dialect", []string{"parse", "--dialect", "mongo"}, "invalid dialect"},
		{"unknown output", []string{"parse", "-o", "xml"}, "unknown output format"},
		{"missing config", []string{"--config", "nope.yaml", "dialects"}, "nope.yaml"},
		{"bad facet", []string{"parse", "--filter", "{a"}, "invalid filter"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			_, _, err := run(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestCompletionCommand(t *testing.T) {
	t.Chdir(t.TempDir())

	out, _, err := run(t, "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "leapquery")

	_, _, err = run(t, "completion", "tcsh")
	assert.Error(t, err)
}

func TestVersionFlag(t *testing.T) {
	out, _, err := run(t, "--version")
	require.NoError(t, err)
	assert.Equal(t, "leapquery "+Version+"\n", out)
}
