package ide

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dorukarda/platformio/internal/boards"
	pioerrors "github.com/dorukarda/platformio/internal/errors"
)

var uno = boards.Descriptor{
	ID:       "uno",
	Name:     "Arduino Uno",
	Platform: "atmelavr",
	MCU:      "atmega328p",
	FCPU:     16000000,
}

func TestSupportedIDEs_SortedAndStable(t *testing.T) {
	assert.Equal(t, []string{"clion", "vscode"}, SupportedIDEs())
}

func TestNewGenerator_RejectsUnknownIDE(t *testing.T) {
	_, err := NewGenerator(t.TempDir(), "src", "eclipse", uno)

	require.Error(t, err)
	assert.Equal(t, pioerrors.ErrCodeUnsupportedIDE, pioerrors.CodeOf(err))
}

func TestGenerate_VSCodeFiles(t *testing.T) {
	dir := t.TempDir()
	g, err := NewGenerator(dir, "src", "vscode", uno)
	require.NoError(t, err)

	require.NoError(t, g.Generate())

	data, err := os.ReadFile(filepath.Join(dir, ".vscode", "c_cpp_properties.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "F_CPU=16000000L")
	assert.Contains(t, string(data), filepath.ToSlash(dir)+"/src")

	assert.FileExists(t, filepath.Join(dir, ".vscode", "extensions.json"))
}

func TestGenerate_CLionUsesBoardMetadata(t *testing.T) {
	dir := t.TempDir()
	g, err := NewGenerator(dir, "firmware", "clion", uno)
	require.NoError(t, err)

	require.NoError(t, g.Generate())

	data, err := os.ReadFile(filepath.Join(dir, "CMakeListsPrivate.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `set(MCU "atmega328p")`)
	assert.Contains(t, string(data), "/firmware")
}

func TestGenerate_OverwritesPreviousOutput(t *testing.T) {
	dir := t.TempDir()
	g, err := NewGenerator(dir, "src", "clion", uno)
	require.NoError(t, err)
	require.NoError(t, g.Generate())

	other := uno
	other.MCU = "atmega2560"
	g, err = NewGenerator(dir, "src", "clion", other)
	require.NoError(t, err)
	require.NoError(t, g.Generate())

	data, err := os.ReadFile(filepath.Join(dir, "CMakeListsPrivate.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "atmega2560")
	assert.NotContains(t, string(data), "atmega328p")
}
