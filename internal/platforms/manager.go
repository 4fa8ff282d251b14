// Package platforms manages build platform availability.
//
// A platform is installed when a directory with its manifest exists under
// <home>/platforms. The manager only decides which requested platforms are
// missing and hands that subset to an Installer; it never uninstalls or
// upgrades anything.
package platforms

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	pioerrors "github.com/dorukarda/platformio/internal/errors"
)

// ManifestName is the manifest file marking an installed platform.
const ManifestName = "platform.yaml"

// Installer installs build platforms by name.
type Installer interface {
	Install(ctx context.Context, names []string) error
}

// Manager reconciles requested platforms against the installed set.
type Manager struct {
	root      string
	installer Installer
	log       *slog.Logger
}

// DefaultHome returns the pio home directory (~/.platformio).
func DefaultHome() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".platformio"), nil
}

// NewManager creates a Manager rooted at the given pio home.
func NewManager(root string, installer Installer) *Manager {
	return &Manager{root: root, installer: installer, log: slog.Default()}
}

// PlatformsDir returns the directory holding installed platforms.
func (m *Manager) PlatformsDir() string {
	return filepath.Join(m.root, "platforms")
}

// Installed returns the set of installed platform names. A platform counts
// as installed only when its directory carries a manifest, so an aborted
// install is not mistaken for a working one.
func (m *Manager) Installed() (map[string]struct{}, error) {
	installed := make(map[string]struct{})

	entries, err := os.ReadDir(m.PlatformsDir())
	if os.IsNotExist(err) {
		return installed, nil
	}
	if err != nil {
		return nil, pioerrors.Wrap(pioerrors.ErrCodePlatformList, err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		manifest := filepath.Join(m.PlatformsDir(), entry.Name(), ManifestName)
		if _, err := os.Stat(manifest); err == nil {
			installed[entry.Name()] = struct{}{}
		}
	}
	return installed, nil
}

// Missing returns the requested platforms not present in installed.
// Pure set difference; input order is irrelevant.
func Missing(requested, installed map[string]struct{}) map[string]struct{} {
	missing := make(map[string]struct{})
	for name := range requested {
		if _, ok := installed[name]; !ok {
			missing[name] = struct{}{}
		}
	}
	return missing
}

// EnsureInstalled installs the requested platforms that are missing and
// returns their names. When nothing is missing the installer is not
// invoked at all.
func (m *Manager) EnsureInstalled(ctx context.Context, requested map[string]struct{}) ([]string, error) {
	installed, err := m.Installed()
	if err != nil {
		return nil, err
	}

	missing := Missing(requested, installed)
	if len(missing) == 0 {
		m.log.Debug("all requested platforms installed", slog.Int("requested", len(requested)))
		return nil, nil
	}

	names := make([]string, 0, len(missing))
	for name := range missing {
		names = append(names, name)
	}
	sort.Strings(names)

	m.log.Info("installing missing platforms", slog.Any("platforms", names))
	if err := m.installer.Install(ctx, names); err != nil {
		return nil, err
	}
	return names, nil
}
