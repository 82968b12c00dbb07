package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWhenNoConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 3, cfg.TimezoneOffsetHours)
	assert.Equal(t, 0.85, cfg.Thresholds.EntityResolutionPersonThreshold)
}

func TestLoad_MergesUserYAMLOverDefaults(t *testing.T) {
	dir := t.TempDir()
	yamlContent := []byte("port: 9090\nthresholds:\n  graph_max_hops: 5\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yamlContent, 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 5, cfg.Thresholds.GraphMaxHops)
	// Untouched fields keep built-in defaults.
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.ChatModel)
}

func TestLoad_ExpandsEnvVars(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("RAFIQ_TEST_GRAPH_URI", "neo4j://example:7687")
	yamlContent := []byte("graph:\n  uri: \"${RAFIQ_TEST_GRAPH_URI}\"\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yamlContent, 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "neo4j://example:7687", cfg.Graph.URI)
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("port: [unterminated"), 0o644))

	_, err := Load(dir)
	assert.Error(t, err)
}

func TestValidate_RejectsBadPort(t *testing.T) {
	cfg := Default()
	cfg.Port = 0
	err := Validate(cfg)
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestLocalHourToUTC(t *testing.T) {
	cfg := Default()
	cfg.TimezoneOffsetHours = 3
	assert.Equal(t, 4, cfg.LocalHourToUTC(7))
	assert.Equal(t, 22, cfg.LocalHourToUTC(1))
}
