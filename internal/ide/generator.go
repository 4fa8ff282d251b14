// Package ide generates editor project files for a resolved board.
package ide

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"text/template"

	"github.com/dorukarda/platformio/internal/boards"
	pioerrors "github.com/dorukarda/platformio/internal/errors"
)

//go:embed templates
var templates embed.FS

// ideFile maps one template to its rendered location in the project.
type ideFile struct {
	tmpl string
	out  string
}

var ideFiles = map[string][]ideFile{
	"vscode": {
		{tmpl: "templates/vscode/c_cpp_properties.json.tmpl", out: ".vscode/c_cpp_properties.json"},
		{tmpl: "templates/vscode/extensions.json.tmpl", out: ".vscode/extensions.json"},
	},
	"clion": {
		{tmpl: "templates/clion/CMakeListsPrivate.txt.tmpl", out: "CMakeListsPrivate.txt"},
	},
}

// SupportedIDEs returns the IDE names with bundled templates, sorted.
func SupportedIDEs() []string {
	names := make([]string, 0, len(ideFiles))
	for name := range ideFiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Generator renders project files for one IDE.
type Generator struct {
	ide        string
	projectDir string
	srcDir     string
	board      boards.Descriptor
}

// NewGenerator creates a Generator. The IDE name must be one of
// SupportedIDEs.
func NewGenerator(projectDir, srcDir, ide string, board boards.Descriptor) (*Generator, error) {
	if _, ok := ideFiles[ide]; !ok {
		return nil, pioerrors.New(pioerrors.ErrCodeUnsupportedIDE,
			fmt.Sprintf("unsupported IDE %q", ide), nil).
			WithSuggestion(fmt.Sprintf("Supported IDEs: %v", SupportedIDEs()))
	}
	return &Generator{ide: ide, projectDir: projectDir, srcDir: srcDir, board: board}, nil
}

// templateData is what the templates see.
type templateData struct {
	ProjectDir string
	SrcDir     string
	Board      boards.Descriptor
}

// Generate renders every template of the configured IDE into the project
// directory, overwriting previously generated files.
func (g *Generator) Generate() error {
	data := templateData{
		ProjectDir: filepath.ToSlash(g.projectDir),
		SrcDir:     g.srcDir,
		Board:      g.board,
	}

	for _, f := range ideFiles[g.ide] {
		tmpl, err := template.ParseFS(templates, f.tmpl)
		if err != nil {
			return fmt.Errorf("parsing template %s: %w", f.tmpl, err)
		}

		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, data); err != nil {
			return fmt.Errorf("rendering %s: %w", f.out, err)
		}

		out := filepath.Join(g.projectDir, filepath.FromSlash(f.out))
		if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", f.out, err)
		}
	}
	return nil
}
