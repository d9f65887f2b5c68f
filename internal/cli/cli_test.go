package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePositionalWorkspace(t *testing.T) {
	var out bytes.Buffer
	cfg, exit, err := Parse([]string{"testdata/workspace.hcl"}, &out)
	require.NoError(t, err)
	require.False(t, exit)
	assert.Equal(t, "testdata/workspace.hcl", cfg.WorkspacePath)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, 0, cfg.HealthcheckPort)
}

func TestParseFlagsOverridePositional(t *testing.T) {
	var out bytes.Buffer
	cfg, exit, err := Parse([]string{"-workspace", "ws", "-log-format", "json", "-healthcheck-port", "8080", "ignored"}, &out)
	require.NoError(t, err)
	require.False(t, exit)
	assert.Equal(t, "ws", cfg.WorkspacePath)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 8080, cfg.HealthcheckPort)
}

func TestParseNoPathPrintsUsage(t *testing.T) {
	var out bytes.Buffer
	cfg, exit, err := Parse(nil, &out)
	require.NoError(t, err)
	assert.True(t, exit)
	assert.Nil(t, cfg)
	assert.Contains(t, out.String(), "Usage:")
}

func TestParseRejectsBadValues(t *testing.T) {
	var out bytes.Buffer

	_, _, err := Parse([]string{"-log-format", "yaml", "ws"}, &out)
	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 2, exitErr.Code)

	_, _, err = Parse([]string{"-log-level", "verbose", "ws"}, &out)
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 2, exitErr.Code)
}
