// Package scaffold creates the base project layout.
//
// Everything here is idempotent plumbing: a file that already exists is
// never overwritten, and re-running against a scaffolded directory changes
// nothing. The environment merge happens elsewhere; scaffolding only
// guarantees its preconditions (a configuration file and the source and
// library directories).
package scaffold

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dorukarda/platformio/configs"
	"github.com/dorukarda/platformio/internal/projectconf"
)

// gitignore entries for generated build artifacts.
var ignoreEntries = []string{".pioenvs/", ".piolibdeps/"}

// IsProject reports whether dir already carries a project configuration.
func IsProject(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, projectconf.FileName))
	return err == nil
}

// EnsureProject makes dir a valid project: configuration file from the
// embedded template, source and library directories, library readme, CI
// starter configuration, and ignore entries for build artifacts.
func EnsureProject(dir string) error {
	if !IsProject(dir) {
		path := filepath.Join(dir, projectconf.FileName)
		if err := os.WriteFile(path, []byte(configs.ProjectConfigTemplate), 0o644); err != nil {
			return fmt.Errorf("creating %s: %w", projectconf.FileName, err)
		}
	}

	doc, err := projectconf.Load(filepath.Join(dir, projectconf.FileName))
	if err != nil {
		return err
	}

	srcDir := filepath.Join(dir, doc.SrcDir())
	libDir := filepath.Join(dir, "lib")
	for _, d := range []string{srcDir, libDir} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", d, err)
		}
	}

	if err := ensureFile(filepath.Join(libDir, "readme.txt"), configs.LibReadmeTemplate); err != nil {
		return err
	}
	if err := ensureFile(filepath.Join(dir, ".travis.yml"), configs.CIConfigTemplate); err != nil {
		return err
	}
	return ensureGitignore(dir)
}

// ensureFile writes content to path unless the file already exists.
func ensureFile(path, content string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	return nil
}

// ensureGitignore appends the build-artifact entries to .gitignore when
// missing, preserving the file's existing line endings.
func ensureGitignore(dir string) error {
	path := filepath.Join(dir, ".gitignore")

	content, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading .gitignore: %w", err)
	}

	lineEnding := "\n"
	if bytes.Contains(content, []byte("\r\n")) {
		lineEnding = "\r\n"
	}

	present := make(map[string]bool)
	for _, line := range bytes.Split(content, []byte("\n")) {
		present[string(bytes.TrimRight(line, "\r"))] = true
	}

	var missing []string
	for _, entry := range ignoreEntries {
		if !present[entry] {
			missing = append(missing, entry)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	if len(content) > 0 && !bytes.HasSuffix(content, []byte("\n")) {
		content = append(content, []byte(lineEnding)...)
	}
	for _, entry := range missing {
		content = append(content, []byte(entry+lineEnding)...)
	}

	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}
	return nil
}
