package platforms

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeInstaller records install invocations.
type fakeInstaller struct {
	calls [][]string
	err   error
}

func (f *fakeInstaller) Install(_ context.Context, names []string) error {
	f.calls = append(f.calls, names)
	return f.err
}

func set(names ...string) map[string]struct{} {
	s := make(map[string]struct{})
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

func markInstalled(t *testing.T, root string, names ...string) {
	t.Helper()
	for _, name := range names {
		dir := filepath.Join(root, "platforms", name)
		require.NoError(t, os.MkdirAll(dir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, ManifestName), []byte("name: "+name+"\n"), 0o644))
	}
}

func TestMissing_SetDifference(t *testing.T) {
	tests := []struct {
		name      string
		requested map[string]struct{}
		installed map[string]struct{}
		want      map[string]struct{}
	}{
		{"all missing", set("a", "b"), set(), set("a", "b")},
		{"none missing", set("a"), set("a", "b"), set()},
		{"partial", set("a", "b", "c"), set("b"), set("a", "c")},
		{"empty request", set(), set("a"), set()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Missing(tt.requested, tt.installed))
		})
	}
}

func TestInstalled_EmptyWhenNoPlatformsDir(t *testing.T) {
	m := NewManager(t.TempDir(), &fakeInstaller{})

	installed, err := m.Installed()
	require.NoError(t, err)
	assert.Empty(t, installed)
}

func TestInstalled_RequiresManifest(t *testing.T) {
	root := t.TempDir()
	markInstalled(t, root, "atmelavr")
	// A directory without a manifest is an aborted install, not a platform.
	require.NoError(t, os.MkdirAll(filepath.Join(root, "platforms", "broken"), 0o755))

	m := NewManager(root, &fakeInstaller{})
	installed, err := m.Installed()
	require.NoError(t, err)

	assert.Equal(t, set("atmelavr"), installed)
}

func TestEnsureInstalled_NothingMissingSkipsInstaller(t *testing.T) {
	root := t.TempDir()
	markInstalled(t, root, "atmelavr", "espressif32")
	inst := &fakeInstaller{}
	m := NewManager(root, inst)

	names, err := m.EnsureInstalled(context.Background(), set("atmelavr", "espressif32"))
	require.NoError(t, err)

	assert.Nil(t, names)
	assert.Empty(t, inst.calls)
}

func TestEnsureInstalled_InstallsOnlyMissingSubset(t *testing.T) {
	root := t.TempDir()
	markInstalled(t, root, "atmelavr")
	inst := &fakeInstaller{}
	m := NewManager(root, inst)

	names, err := m.EnsureInstalled(context.Background(), set("atmelavr", "espressif32", "ststm32"))
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"espressif32", "ststm32"}, names)
	require.Len(t, inst.calls, 1)
	assert.ElementsMatch(t, []string{"espressif32", "ststm32"}, inst.calls[0])
}

func TestEnsureInstalled_PropagatesInstallerError(t *testing.T) {
	inst := &fakeInstaller{err: errors.New("download failed")}
	m := NewManager(t.TempDir(), inst)

	_, err := m.EnsureInstalled(context.Background(), set("atmelavr"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "download failed")
}
