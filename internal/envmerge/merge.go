// Package envmerge computes the environment sections to add to a project
// configuration for a set of requested boards.
//
// The merge is idempotent: a board that already backs an environment
// section is never configured twice, whether it reappears within one
// request or across invocations. Resolution is validated for the whole
// batch before the document is touched, so one unknown identifier leaves
// the configuration exactly as it was.
package envmerge

import (
	"strings"

	"github.com/dorukarda/platformio/internal/boards"
	"github.com/dorukarda/platformio/internal/projectconf"
)

// Resolver looks up a board identifier in the registry.
// *boards.Registry satisfies it.
type Resolver interface {
	Resolve(id string) (boards.Descriptor, error)
}

// Request describes one merge operation.
type Request struct {
	// BoardIDs are the requested board identifiers, in user order.
	// Duplicates are permitted and collapse to one environment.
	BoardIDs []string

	// Options are raw key=value strings applied to every new environment.
	// Entries without "=" are ignored; keys and values are trimmed; a
	// later duplicate key overrides an earlier one.
	Options []string

	// EnvPrefix is prepended to the board identifier when forming the
	// environment name.
	EnvPrefix string
}

// Result reports what a merge produced.
type Result struct {
	// Added lists the appended section names, in production order.
	Added []string

	// Platforms is the set of platforms referenced by the requested
	// batch. It covers boards that were skipped as already configured:
	// their environments still need the platform installed.
	Platforms map[string]struct{}
}

// Merge appends one environment section per newly requested board to doc.
//
// Every requested identifier is resolved up front; an unknown board aborts
// the merge before any mutation. When Result.Added is empty the document
// is unchanged and the caller must not rewrite the file.
func Merge(doc *projectconf.Document, resolver Resolver, req Request) (Result, error) {
	resolved, err := resolveAll(resolver, req.BoardIDs)
	if err != nil {
		return Result{}, err
	}

	used := usedBoards(doc)
	overrides := parseOptions(req.Options)

	result := Result{Platforms: make(map[string]struct{})}
	for _, id := range req.BoardIDs {
		desc := resolved[id]
		result.Platforms[desc.Platform] = struct{}{}

		if _, ok := used[id]; ok {
			continue
		}
		used[id] = struct{}{}

		sec, err := doc.AppendSection(projectconf.EnvPrefix + req.EnvPrefix + id)
		if err != nil {
			return Result{}, err
		}
		sec.Set("platform", desc.Platform)
		sec.Set("board", id)
		if fw := desc.DefaultFramework(); fw != "" {
			sec.Set("framework", fw)
		}
		for _, opt := range overrides {
			sec.Set(opt.key, opt.value)
		}

		result.Added = append(result.Added, sec.Name())
	}

	return result, nil
}

// resolveAll resolves every distinct identifier once, in input order.
func resolveAll(resolver Resolver, ids []string) (map[string]boards.Descriptor, error) {
	resolved := make(map[string]boards.Descriptor, len(ids))
	for _, id := range ids {
		if _, ok := resolved[id]; ok {
			continue
		}
		desc, err := resolver.Resolve(id)
		if err != nil {
			return nil, err
		}
		resolved[id] = desc
	}
	return resolved, nil
}

// usedBoards collects the board option values of existing environment
// sections. Recomputed on every merge; never cached across calls.
func usedBoards(doc *projectconf.Document) map[string]struct{} {
	used := make(map[string]struct{})
	for _, env := range doc.Environments() {
		if env.Has("board") {
			used[env.Get("board")] = struct{}{}
		}
	}
	return used
}

type option struct {
	key   string
	value string
}

// parseOptions parses raw key=value overrides, keeping input order.
// Entries without "=" are skipped.
func parseOptions(raw []string) []option {
	var out []option
	for _, item := range raw {
		key, value, ok := strings.Cut(item, "=")
		if !ok {
			continue
		}
		out = append(out, option{
			key:   strings.TrimSpace(key),
			value: strings.TrimSpace(value),
		})
	}
	return out
}
