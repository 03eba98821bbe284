package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "0.1.0", cfg.Package.Version)
	assert.Equal(t, "out", cfg.Build.Out)
	assert.True(t, cfg.Build.Color)
	assert.False(t, cfg.Build.JSON)
	assert.Equal(t, []string{"*.liva"}, cfg.Watch.Patterns)
	assert.Equal(t, 200, cfg.Watch.DebounceMS)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "liva.toml"))
	require.NoError(t, err)
	assert.Equal(t, "out", cfg.Build.Out)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "liva.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[package]
name = "invoicer"
version = "1.2.0"

[build]
out = "dist"
json = true

[watch]
patterns = ["src/*.liva", "lib/*.liva"]
debounce_ms = 50
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "invoicer", cfg.Package.Name)
	assert.Equal(t, "1.2.0", cfg.Package.Version)
	assert.Equal(t, "dist", cfg.Build.Out)
	assert.True(t, cfg.Build.JSON)
	assert.Equal(t, []string{"src/*.liva", "lib/*.liva"}, cfg.Watch.Patterns)
	assert.Equal(t, 50, cfg.Watch.DebounceMS)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "liva.toml")
	require.NoError(t, os.WriteFile(path, []byte("[package]\nname = \"demo\"\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "demo", cfg.Package.Name)
	assert.Equal(t, "out", cfg.Build.Out)
	assert.Equal(t, 200, cfg.Watch.DebounceMS)
}

func TestLoad_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "liva.toml")
	require.NoError(t, os.WriteFile(path, []byte("[package\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("LIVAC_OUT", "build")
	t.Setenv("LIVAC_PACKAGE", "from_env")
	t.Setenv("NO_COLOR", "1")

	cfg, err := Load(filepath.Join(t.TempDir(), "liva.toml"))
	require.NoError(t, err)
	assert.Equal(t, "build", cfg.Build.Out)
	assert.Equal(t, "from_env", cfg.Package.Name)
	assert.False(t, cfg.Build.Color)
}
