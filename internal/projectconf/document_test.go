package projectconf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_MissingFileYieldsEmptyDocument(t *testing.T) {
	doc, err := Load(filepath.Join(t.TempDir(), FileName))

	require.NoError(t, err)
	assert.Empty(t, doc.Sections())
	assert.False(t, doc.Dirty())
}

func TestLoad_ParsesSectionsInOrder(t *testing.T) {
	path := writeConfig(t, `[platformio]
src_dir = firmware

[env:uno]
platform = atmelavr
board = uno

[custom]
answer = 42
`)

	doc, err := Load(path)
	require.NoError(t, err)

	sections := doc.Sections()
	require.Len(t, sections, 3)
	assert.Equal(t, "platformio", sections[0].Name())
	assert.Equal(t, "env:uno", sections[1].Name())
	assert.Equal(t, "custom", sections[2].Name())
}

func TestSection_EnvTagging(t *testing.T) {
	path := writeConfig(t, `[env:myenv]
board = uno

[platformio]
src_dir = src
`)

	doc, err := Load(path)
	require.NoError(t, err)

	env, ok := doc.Section("env:myenv")
	require.True(t, ok)
	assert.True(t, env.IsEnv())
	assert.Equal(t, "myenv", env.EnvName())

	meta, ok := doc.Section(MetaSection)
	require.True(t, ok)
	assert.False(t, meta.IsEnv())
	assert.Equal(t, "", meta.EnvName())
}

func TestEnvironments_FiltersEnvSections(t *testing.T) {
	path := writeConfig(t, `[platformio]
src_dir = src

[env:a]
board = uno

[env:b]
platform = atmelavr
`)

	doc, err := Load(path)
	require.NoError(t, err)

	envs := doc.Environments()
	require.Len(t, envs, 2)
	assert.Equal(t, "a", envs[0].EnvName())
	assert.Equal(t, "b", envs[1].EnvName())
}

func TestFirstBoard_SkipsEnvsWithoutBoard(t *testing.T) {
	path := writeConfig(t, `[env:generic]
platform = native

[env:blink]
board = uno
`)

	doc, err := Load(path)
	require.NoError(t, err)

	board, ok := doc.FirstBoard()
	assert.True(t, ok)
	assert.Equal(t, "uno", board)
}

func TestFirstBoard_NoEnvironments(t *testing.T) {
	doc := New()

	_, ok := doc.FirstBoard()
	assert.False(t, ok)
}

func TestSrcDir_DefaultAndOverride(t *testing.T) {
	assert.Equal(t, "src", New().SrcDir())

	path := writeConfig(t, `[platformio]
src_dir = firmware
`)
	doc, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "firmware", doc.SrcDir())
}

func TestAppendSection_RejectsDuplicates(t *testing.T) {
	doc := New()

	_, err := doc.AppendSection("env:uno")
	require.NoError(t, err)

	_, err = doc.AppendSection("env:uno")
	assert.Error(t, err)
}

func TestSection_SetPreservesPositionOnOverwrite(t *testing.T) {
	doc := New()
	sec, err := doc.AppendSection("env:uno")
	require.NoError(t, err)

	sec.Set("platform", "atmelavr")
	sec.Set("board", "uno")
	sec.Set("framework", "arduino")
	sec.Set("platform", "custom")

	assert.Equal(t, []string{"platform", "board", "framework"}, sec.Keys())
	assert.Equal(t, "custom", sec.Get("platform"))
}

func TestSave_NoPendingSectionsDoesNotTouchFile(t *testing.T) {
	path := writeConfig(t, "[env:uno]\nboard = uno\n")
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	doc, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, doc.Save(path))

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestSave_AppendsWithoutDisturbingExistingContent(t *testing.T) {
	original := `; user notes live here
[platformio]
src_dir = src

[env:uno]
platform = atmelavr
board = uno
`
	path := writeConfig(t, original)

	doc, err := Load(path)
	require.NoError(t, err)

	sec, err := doc.AppendSection("env:esp32dev")
	require.NoError(t, err)
	sec.Set("platform", "espressif32")
	sec.Set("board", "esp32dev")
	sec.Set("framework", "espidf")

	require.NoError(t, doc.Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	want := original + `
[env:esp32dev]
platform = espressif32
board = esp32dev
framework = espidf
`
	assert.Equal(t, want, string(data))
}

func TestSave_SerializationIsStable(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)

	build := func() *Document {
		doc := New()
		sec, err := doc.AppendSection("env:uno")
		require.NoError(t, err)
		sec.Set("platform", "atmelavr")
		sec.Set("board", "uno")
		return doc
	}

	require.NoError(t, build().Save(path))
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	require.NoError(t, os.Remove(path))
	require.NoError(t, build().Save(path))
	second, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.True(t, len(first) > 0 && first[len(first)-1] == '\n')
}

func TestSave_RepeatedSaveIsNoOpAfterFlush(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)

	doc := New()
	sec, err := doc.AppendSection("env:uno")
	require.NoError(t, err)
	sec.Set("board", "uno")

	require.NoError(t, doc.Save(path))
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	require.NoError(t, doc.Save(path))
	second, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.False(t, doc.Dirty())
}
