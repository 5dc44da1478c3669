package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_ProgramPathForms(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
	}{
		{"long flag", []string{"-program", "grids/demo"}},
		{"short flag", []string{"-p", "grids/demo"}},
		{"positional", []string{"grids/demo"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			cfg, exit, err := Parse(tt.args, &out)
			require.NoError(t, err)
			require.False(t, exit)
			assert.Equal(t, "grids/demo", cfg.ProgramPath)
			assert.Equal(t, "backends", cfg.BackendsPath)
			assert.Equal(t, "tree", cfg.Output)
		})
	}
}

func TestParse_NoArgsPrintsUsage(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	cfg, exit, err := Parse(nil, &out)
	require.NoError(t, err)
	assert.True(t, exit)
	assert.Nil(t, cfg)
	assert.Contains(t, out.String(), "Usage:")
}

func TestParse_Help(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	cfg, exit, err := Parse([]string{"-h"}, &out)
	require.NoError(t, err)
	assert.True(t, exit)
	assert.Nil(t, cfg)
}

func TestParse_Options(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	cfg, exit, err := Parse([]string{
		"-backends", "manifests",
		"-output", "json",
		"-log-format", "json",
		"-log-level", "debug",
		"grids/demo",
	}, &out)
	require.NoError(t, err)
	require.False(t, exit)
	assert.Equal(t, "manifests", cfg.BackendsPath)
	assert.Equal(t, "json", cfg.Output)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestParse_InvalidValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
	}{
		{"bad log format", []string{"-log-format", "xml", "grids/demo"}},
		{"bad log level", []string{"-log-level", "loud", "grids/demo"}},
		{"bad output", []string{"-output", "yaml", "grids/demo"}},
		{"unknown flag", []string{"-frobnicate", "grids/demo"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			_, _, err := Parse(tt.args, &out)
			var exitErr *ExitError
			require.ErrorAs(t, err, &exitErr)
			assert.Equal(t, 2, exitErr.Code)
		})
	}
}
