// Package projectconf implements the project configuration store.
//
// The on-disk format is the classic platformio.ini: an INI file whose
// sections beginning with "env:" define build environments, while the
// optional [platformio] section carries tool-level options such as src_dir.
// Parsing is delegated to gopkg.in/ini.v1; this package adds the typed
// section view and the append-only persistence discipline: saving never
// rewrites existing content, it appends the sections produced since load,
// so user edits and comments survive byte for byte.
package projectconf

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"gopkg.in/ini.v1"

	pioerrors "github.com/dorukarda/platformio/internal/errors"
)

const (
	// FileName is the canonical project configuration file name.
	FileName = "platformio.ini"

	// EnvPrefix tags sections that define build environments.
	EnvPrefix = "env:"

	// MetaSection is the reserved section for tool-level options.
	MetaSection = "platformio"
)

func init() {
	// go-ini defaults to aligning "=" signs across a section; the on-disk
	// format is the plain `key = value` form, stable across writes.
	ini.PrettyFormat = false
	ini.PrettyEqual = true
}

// Section is one named block of the project configuration.
type Section struct {
	sec *ini.Section
}

// Name returns the literal section name, including any env: prefix.
func (s *Section) Name() string {
	return s.sec.Name()
}

// IsEnv reports whether the section defines a build environment.
func (s *Section) IsEnv() bool {
	return strings.HasPrefix(s.sec.Name(), EnvPrefix)
}

// EnvName returns the environment name (the part after the env: prefix).
// Empty for non-environment sections.
func (s *Section) EnvName() string {
	if !s.IsEnv() {
		return ""
	}
	return strings.TrimPrefix(s.sec.Name(), EnvPrefix)
}

// Has reports whether the section defines the given option.
func (s *Section) Has(key string) bool {
	return s.sec.HasKey(key)
}

// Get returns the option value, or empty when absent.
func (s *Section) Get(key string) string {
	if !s.sec.HasKey(key) {
		return ""
	}
	return s.sec.Key(key).String()
}

// Set creates or overwrites an option. An overwritten option keeps its
// original position within the section.
func (s *Section) Set(key, value string) {
	if s.sec.HasKey(key) {
		s.sec.Key(key).SetValue(value)
		return
	}
	_, _ = s.sec.NewKey(key, value)
}

// Keys returns the option keys in definition order.
func (s *Section) Keys() []string {
	return s.sec.KeyStrings()
}

// Document is the in-memory model of one project configuration file.
// It tracks the sections appended since load so that Save can persist
// exactly the new content.
type Document struct {
	file     *ini.File
	appended []*Section
}

// New returns an empty document.
func New() *Document {
	return &Document{file: ini.Empty()}
}

// Load parses the project configuration at path. A missing file yields an
// empty document, matching a freshly scaffolded project.
func Load(path string) (*Document, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return New(), nil
	}
	f, err := ini.Load(path)
	if err != nil {
		return nil, pioerrors.Wrap(pioerrors.ErrCodeConfigParse, err)
	}
	return &Document{file: f}, nil
}

// Sections returns all sections in file order, excluding the implicit
// default section.
func (d *Document) Sections() []*Section {
	var out []*Section
	for _, sec := range d.file.Sections() {
		if sec.Name() == ini.DefaultSection {
			continue
		}
		out = append(out, &Section{sec: sec})
	}
	return out
}

// Section returns the named section if present.
func (d *Document) Section(name string) (*Section, bool) {
	sec, err := d.file.GetSection(name)
	if err != nil {
		return nil, false
	}
	return &Section{sec: sec}, true
}

// Environments returns the env: sections in file order.
func (d *Document) Environments() []*Section {
	var out []*Section
	for _, sec := range d.Sections() {
		if sec.IsEnv() {
			out = append(out, sec)
		}
	}
	return out
}

// FirstBoard returns the board of the first environment section that
// defines one. Used to pick a default board for IDE generation.
func (d *Document) FirstBoard() (string, bool) {
	for _, env := range d.Environments() {
		if env.Has("board") {
			return env.Get("board"), true
		}
	}
	return "", false
}

// SrcDir returns the source directory configured in the [platformio]
// section, or "src" when not overridden.
func (d *Document) SrcDir() string {
	if meta, ok := d.Section(MetaSection); ok && meta.Has("src_dir") {
		return meta.Get("src_dir")
	}
	return "src"
}

// AppendSection adds a new section after all existing content and marks it
// for persistence. Duplicate section names are rejected.
func (d *Document) AppendSection(name string) (*Section, error) {
	if _, err := d.file.GetSection(name); err == nil {
		return nil, pioerrors.New(pioerrors.ErrCodeSectionDup,
			fmt.Sprintf("section %q already defined", name), nil)
	}
	sec, err := d.file.NewSection(name)
	if err != nil {
		return nil, pioerrors.Wrap(pioerrors.ErrCodeInvalidInput, err)
	}
	s := &Section{sec: sec}
	d.appended = append(d.appended, s)
	return s, nil
}

// Dirty reports whether the document has sections pending persistence.
func (d *Document) Dirty() bool {
	return len(d.appended) > 0
}

// Save appends the pending sections to the file at path and clears the
// pending list. When nothing is pending the file is not touched at all.
// Writes are serialized across processes with a flock sibling lock.
func (d *Document) Save(path string) error {
	if !d.Dirty() {
		return nil
	}

	rendered, err := renderSections(d.appended)
	if err != nil {
		return pioerrors.ConfigWriteError(path, err)
	}

	lock := flock.New(lockPath(path))
	if err := lock.Lock(); err != nil {
		return pioerrors.ConfigWriteError(path, err)
	}
	defer func() { _ = lock.Unlock() }()

	existing, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return pioerrors.ConfigWriteError(path, err)
	}

	var buf bytes.Buffer
	buf.Write(existing)
	if len(existing) > 0 {
		if !bytes.HasSuffix(existing, []byte("\n")) {
			buf.WriteByte('\n')
		}
		// Appended sections are separated from prior content by a blank line.
		buf.WriteByte('\n')
	}
	buf.Write(rendered)

	out := append(bytes.TrimRight(buf.Bytes(), "\n"), '\n')
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return pioerrors.ConfigWriteError(path, err)
	}

	d.appended = nil
	return nil
}

// renderSections serializes sections through the same INI codec used for
// parsing, so appended content matches the format of loaded content.
func renderSections(sections []*Section) ([]byte, error) {
	out := ini.Empty()
	for _, s := range sections {
		sec, err := out.NewSection(s.Name())
		if err != nil {
			return nil, err
		}
		for _, key := range s.Keys() {
			if _, err := sec.NewKey(key, s.Get(key)); err != nil {
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if _, err := out.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// lockPath derives a stable per-file lock location outside the project
// directory, so locking never leaves artifacts next to user files.
func lockPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	sum := sha256.Sum256([]byte(abs))
	return filepath.Join(os.TempDir(), fmt.Sprintf("pio-%x.lock", sum[:8]))
}
