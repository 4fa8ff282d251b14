// Package boards implements the board registry.
//
// Boards are described by YAML manifests, one file per board. The registry
// merges the manifests bundled with the binary (configs/boards) with any
// user-supplied manifest directories (typically ~/.platformio/boards);
// when the same identifier appears in several sources the last source
// wins, so user manifests override bundled ones.
//
// Manifest indexing happens once at construction; manifest files are
// parsed lazily on Resolve and the decoded descriptors are kept in a
// small LRU cache.
package boards

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/dorukarda/platformio/configs"
	pioerrors "github.com/dorukarda/platformio/internal/errors"
)

// DefaultCacheSize bounds the number of decoded descriptors kept in memory.
// A single invocation rarely touches more than a handful of boards.
const DefaultCacheSize = 128

// Descriptor describes one hardware target. Immutable once resolved.
type Descriptor struct {
	ID         string   `yaml:"id"`
	Name       string   `yaml:"name"`
	Platform   string   `yaml:"platform"`
	Frameworks []string `yaml:"frameworks"`
	MCU        string   `yaml:"mcu"`
	FCPU       int64    `yaml:"f_cpu"`
	RAM        int64    `yaml:"ram"`
	Flash      int64    `yaml:"flash"`
}

// DefaultFramework returns the first supported framework, or empty when
// the board supports none.
func (d Descriptor) DefaultFramework() string {
	if len(d.Frameworks) == 0 {
		return ""
	}
	return d.Frameworks[0]
}

// manifestRef points at one board manifest inside its source filesystem.
type manifestRef struct {
	fsys fs.FS
	path string
}

// Registry resolves board identifiers against the indexed manifests.
// Safe for concurrent use.
type Registry struct {
	index map[string]manifestRef
	ids   []string // sorted
	cache *lru.Cache[string, Descriptor]
}

// Option configures a Registry.
type Option func(*options)

type options struct {
	dirs      []string
	cacheSize int
}

// WithManifestDir adds a directory of *.yaml board manifests. Directories
// added later override earlier sources, including the bundled manifests.
// Missing directories are skipped.
func WithManifestDir(dir string) Option {
	return func(o *options) {
		o.dirs = append(o.dirs, dir)
	}
}

// WithCacheSize overrides the descriptor cache size.
func WithCacheSize(n int) Option {
	return func(o *options) {
		o.cacheSize = n
	}
}

// New builds a registry from the bundled manifests plus any configured
// manifest directories.
func New(opts ...Option) (*Registry, error) {
	o := options{cacheSize: DefaultCacheSize}
	for _, opt := range opts {
		opt(&o)
	}

	sources := []struct {
		fsys fs.FS
		root string
	}{
		{configs.Boards, "boards"},
	}
	for _, dir := range o.dirs {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			continue
		}
		sources = append(sources, struct {
			fsys fs.FS
			root string
		}{os.DirFS(dir), "."})
	}

	// Index every source concurrently; merge in source order afterwards
	// so override precedence stays deterministic.
	indexes := make([]map[string]manifestRef, len(sources))
	var g errgroup.Group
	for i, src := range sources {
		g.Go(func() error {
			idx, err := indexSource(src.fsys, src.root)
			if err != nil {
				return err
			}
			indexes[i] = idx
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := make(map[string]manifestRef)
	for _, idx := range indexes {
		for id, ref := range idx {
			merged[id] = ref
		}
	}

	ids := make([]string, 0, len(merged))
	for id := range merged {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	cache, err := lru.New[string, Descriptor](o.cacheSize)
	if err != nil {
		return nil, err
	}

	return &Registry{index: merged, ids: ids, cache: cache}, nil
}

// indexSource maps board identifiers to manifest files under root.
// The identifier is the manifest file name without extension; the id field
// inside the manifest must agree, which Resolve verifies on parse.
func indexSource(fsys fs.FS, root string) (map[string]manifestRef, error) {
	idx := make(map[string]manifestRef)
	entries, err := fs.ReadDir(fsys, root)
	if err != nil {
		return nil, pioerrors.Wrap(pioerrors.ErrCodeBoardManifest, err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := filepath.Ext(name)
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		id := strings.TrimSuffix(name, ext)
		idx[id] = manifestRef{fsys: fsys, path: joinFS(root, name)}
	}
	return idx, nil
}

func joinFS(root, name string) string {
	if root == "." {
		return name
	}
	return root + "/" + name
}

// Len returns the number of known boards.
func (r *Registry) Len() int {
	return len(r.ids)
}

// Resolve looks up a board identifier. Unknown identifiers yield an
// unknown-board error pointing the user at `pio boards`.
func (r *Registry) Resolve(id string) (Descriptor, error) {
	if desc, ok := r.cache.Get(id); ok {
		return desc, nil
	}

	ref, ok := r.index[id]
	if !ok {
		return Descriptor{}, pioerrors.UnknownBoardError(id)
	}

	desc, err := parseManifest(ref)
	if err != nil {
		return Descriptor{}, err
	}
	if desc.ID == "" {
		desc.ID = id
	}

	r.cache.Add(id, desc)
	return desc, nil
}

// All returns every known board, ordered by identifier.
func (r *Registry) All() ([]Descriptor, error) {
	out := make([]Descriptor, 0, len(r.ids))
	for _, id := range r.ids {
		desc, err := r.Resolve(id)
		if err != nil {
			return nil, err
		}
		out = append(out, desc)
	}
	return out, nil
}

// Search returns the boards whose identifier, name, platform, or framework
// contains the query, case-insensitively. An empty query matches all.
func (r *Registry) Search(query string) ([]Descriptor, error) {
	all, err := r.All()
	if err != nil {
		return nil, err
	}
	if query == "" {
		return all, nil
	}

	q := strings.ToLower(query)
	var out []Descriptor
	for _, desc := range all {
		if matches(desc, q) {
			out = append(out, desc)
		}
	}
	return out, nil
}

func matches(desc Descriptor, q string) bool {
	if strings.Contains(strings.ToLower(desc.ID), q) ||
		strings.Contains(strings.ToLower(desc.Name), q) ||
		strings.Contains(strings.ToLower(desc.Platform), q) {
		return true
	}
	for _, fw := range desc.Frameworks {
		if strings.Contains(strings.ToLower(fw), q) {
			return true
		}
	}
	return false
}

func parseManifest(ref manifestRef) (Descriptor, error) {
	data, err := fs.ReadFile(ref.fsys, ref.path)
	if err != nil {
		return Descriptor{}, pioerrors.Wrap(pioerrors.ErrCodeBoardManifest, err)
	}
	var desc Descriptor
	if err := yaml.Unmarshal(data, &desc); err != nil {
		return Descriptor{}, pioerrors.New(pioerrors.ErrCodeBoardManifest,
			"parsing board manifest "+ref.path, err)
	}
	return desc, nil
}
