package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socialbench/internal/config"
)

func TestDefaultValidates(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, cfg.Validate())
	assert.Len(t, cfg.Catalog, 5)
	assert.Equal(t, "bolt://localhost:7687", cfg.Graph.URI)
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
graph:
  uri: bolt://db.internal:7687
  username: bench
bench:
  users: 250
  depth: 4
  anchor: User42
  product: Phone
`), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "bolt://db.internal:7687", cfg.Graph.URI)
	assert.Equal(t, "bench", cfg.Graph.Username)
	assert.Equal(t, 250, cfg.Bench.Users)
	assert.Equal(t, 4, cfg.Bench.Depth)
	// Untouched sections keep their defaults.
	assert.Len(t, cfg.Catalog, 5)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SOCIALBENCH_NEO4J_URI", "bolt://env-host:7687")
	t.Setenv("SOCIALBENCH_NEO4J_PASSWORD", "sekret")
	t.Setenv("SOCIALBENCH_USERS", "77")

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "bolt://env-host:7687", cfg.Graph.URI)
	assert.Equal(t, "sekret", cfg.Graph.Password)
	assert.Equal(t, 77, cfg.Bench.Users)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
bench:
  users: 0
`), 0o644))

	_, err := config.Load(path)
	assert.Error(t, err)
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := config.Load("/nonexistent/config.yaml")
	assert.Error(t, err)
}
