// Package settings loads user-level pio configuration.
//
// Settings live in ~/.platformio/pio.yaml and apply to every project.
// Precedence, lowest to highest: built-in defaults, the settings file,
// PLATFORMIO_* environment variables.
package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	pioerrors "github.com/dorukarda/platformio/internal/errors"
	"github.com/dorukarda/platformio/internal/platforms"
)

// FileName is the settings file name inside the pio home directory.
const FileName = "pio.yaml"

// Settings holds user-level configuration.
type Settings struct {
	// RegistryURL is the base URL platforms are installed from.
	RegistryURL string `yaml:"registry_url"`

	// EnvPrefix is prepended to every generated environment name
	// unless overridden on the command line.
	EnvPrefix string `yaml:"env_prefix"`

	// BoardDirs lists extra directories searched for board manifests,
	// in addition to the bundled set. Later directories win.
	BoardDirs []string `yaml:"board_dirs"`
}

// Default returns the built-in settings. The user board directory is
// included when a home directory can be resolved.
func Default() *Settings {
	s := &Settings{
		RegistryURL: platforms.DefaultRegistryURL,
	}
	if home, err := platforms.DefaultHome(); err == nil {
		s.BoardDirs = []string{filepath.Join(home, "boards")}
	}
	return s
}

// Path returns the settings file location, or an error when no home
// directory can be resolved.
func Path() (string, error) {
	home, err := platforms.DefaultHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, FileName), nil
}

// Load builds the effective settings.
func Load() (*Settings, error) {
	s := Default()

	path, err := Path()
	if err == nil {
		if err := s.loadYAML(path); err != nil {
			return nil, err
		}
	}

	s.applyEnvOverrides()

	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// loadYAML overlays the file at path onto s. A missing file is not an
// error.
func (s *Settings) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading settings: %w", err)
	}

	var file Settings
	if err := yaml.Unmarshal(data, &file); err != nil {
		return pioerrors.New(pioerrors.ErrCodeConfigParse,
			fmt.Sprintf("parsing %s", path), err)
	}
	s.mergeWith(&file)
	return nil
}

func (s *Settings) mergeWith(other *Settings) {
	if other.RegistryURL != "" {
		s.RegistryURL = other.RegistryURL
	}
	if other.EnvPrefix != "" {
		s.EnvPrefix = other.EnvPrefix
	}
	s.BoardDirs = append(s.BoardDirs, other.BoardDirs...)
}

// applyEnvOverrides applies PLATFORMIO_* variables, the highest
// precedence layer.
func (s *Settings) applyEnvOverrides() {
	if v := os.Getenv("PLATFORMIO_REGISTRY_URL"); v != "" {
		s.RegistryURL = v
	}
	if v := os.Getenv("PLATFORMIO_ENV_PREFIX"); v != "" {
		s.EnvPrefix = v
	}
	if v := os.Getenv("PLATFORMIO_BOARD_DIRS"); v != "" {
		s.BoardDirs = append(s.BoardDirs, filepath.SplitList(v)...)
	}
}

func (s *Settings) validate() error {
	if s.RegistryURL == "" {
		return pioerrors.New(pioerrors.ErrCodeInvalidInput,
			"registry_url must not be empty", nil)
	}
	if strings.ContainsAny(s.EnvPrefix, "[]#;=") {
		return pioerrors.New(pioerrors.ErrCodeInvalidInput,
			fmt.Sprintf("env_prefix %q contains characters not allowed in section names", s.EnvPrefix), nil)
	}
	return nil
}

// WriteYAML persists s to path, creating parent directories.
func (s *Settings) WriteYAML(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating settings directory: %w", err)
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
