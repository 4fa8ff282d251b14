package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dorukarda/platformio/internal/platforms"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	s, err := Load()
	require.NoError(t, err)

	assert.Equal(t, platforms.DefaultRegistryURL, s.RegistryURL)
	assert.Empty(t, s.EnvPrefix)
	require.Len(t, s.BoardDirs, 1)
	assert.True(t, filepath.IsAbs(s.BoardDirs[0]))
}

func TestLoad_FileOverlaysDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".platformio")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	content := "registry_url: https://mirror.example.com/platforms\nenv_prefix: fw_\nboard_dirs:\n  - /opt/boards\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o644))

	s, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://mirror.example.com/platforms", s.RegistryURL)
	assert.Equal(t, "fw_", s.EnvPrefix)
	// Extra dirs extend the default user board dir.
	assert.Contains(t, s.BoardDirs, "/opt/boards")
	assert.Len(t, s.BoardDirs, 2)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".platformio")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName),
		[]byte("env_prefix: fw_\n"), 0o644))
	t.Setenv("PLATFORMIO_ENV_PREFIX", "ci_")

	s, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "ci_", s.EnvPrefix)
}

func TestLoad_InvalidYAML(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".platformio")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName),
		[]byte("registry_url: [broken\n"), 0o644))

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_RejectsSectionBreakingPrefix(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("PLATFORMIO_ENV_PREFIX", "bad]prefix")

	_, err := Load()
	assert.Error(t, err)
}

func TestWriteYAML_RoundTrip(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	s := Default()
	s.EnvPrefix = "fw_"
	path, err := Path()
	require.NoError(t, err)
	require.NoError(t, s.WriteYAML(path))

	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "fw_", loaded.EnvPrefix)
}
