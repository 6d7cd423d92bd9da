// ABOUTME: Tests for charm backend settings
// ABOUTME: Covers defaults, persistence, and the host override
package charm

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useTempConfigHome(t *testing.T) {
	t.Helper()
	orig := xdg.ConfigHome
	xdg.ConfigHome = t.TempDir()
	t.Cleanup(func() { xdg.ConfigHome = orig })
}

func TestLoadConfigDefaults(t *testing.T) {
	useTempConfigHome(t)
	t.Setenv(HostEnv, "")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, DefaultHost, cfg.Host)
	assert.True(t, cfg.AutoSync)
}

func TestConfigSaveAndOverride(t *testing.T) {
	useTempConfigHome(t)
	t.Setenv(HostEnv, "")

	require.NoError(t, (&Config{Host: "charm.example.com", AutoSync: false}).Save())

	info, err := os.Stat(ConfigPath())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "charm.example.com", cfg.Host)
	assert.False(t, cfg.AutoSync)

	t.Setenv(HostEnv, "charm.override.dev")
	cfg, err = LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "charm.override.dev", cfg.Host)
}

func TestLoadConfigCorrupt(t *testing.T) {
	useTempConfigHome(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(ConfigPath()), 0700))
	require.NoError(t, os.WriteFile(ConfigPath(), []byte("{nope"), 0600))

	_, err := LoadConfig()
	assert.Error(t, err)
}
