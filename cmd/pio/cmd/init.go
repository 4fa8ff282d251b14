package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dorukarda/platformio/internal/boards"
	"github.com/dorukarda/platformio/internal/envmerge"
	pioerrors "github.com/dorukarda/platformio/internal/errors"
	"github.com/dorukarda/platformio/internal/ide"
	"github.com/dorukarda/platformio/internal/output"
	"github.com/dorukarda/platformio/internal/platforms"
	"github.com/dorukarda/platformio/internal/projectconf"
	"github.com/dorukarda/platformio/internal/scaffold"
	"github.com/dorukarda/platformio/internal/settings"
)

// initOptions collects the init command flags.
type initOptions struct {
	projectDir       string
	boardIDs         []string
	projectOptions   []string
	envPrefix        string
	ideName          string
	installPlatforms bool
}

func newInitCmd() *cobra.Command {
	var opts initOptions

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new project or update an existing one",
		Long: `Initialize a project directory for embedded development.

This command:
1. Creates platformio.ini, src/ and lib/ unless already present
2. Adds one [env:<board>] section per newly requested board
3. Optionally generates IDE project files for the first board
4. Optionally installs the build platforms the environments need

Re-running against an initialized project is safe: existing sections,
directories and files are never touched, and an already configured
board is not configured twice.`,
		Example: `  # Initialize in the current directory
  pio init

  # Configure build environments for two boards
  pio init -b uno -b esp32dev

  # Set extra options on every new environment
  pio init -b uno -O upload_speed=115200

  # Generate VSCode project files as well
  pio init -b uno --ide vscode`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runInit(ctx, cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.projectDir, "project-dir", "d", ".", "Project directory")
	cmd.Flags().StringArrayVarP(&opts.boardIDs, "board", "b", nil, "Board identifier (repeatable)")
	cmd.Flags().StringArrayVarP(&opts.projectOptions, "project-option", "O", nil, "key=value option for every new environment (repeatable)")
	cmd.Flags().StringVar(&opts.envPrefix, "env-prefix", "", "Prefix for generated environment names")
	cmd.Flags().StringVar(&opts.ideName, "ide", "", fmt.Sprintf("Generate project files for an IDE %v", ide.SupportedIDEs()))
	cmd.Flags().BoolVar(&opts.installPlatforms, "install-platforms", false, "Install missing build platforms for the requested boards")

	return cmd
}

func runInit(ctx context.Context, cmd *cobra.Command, opts initOptions) error {
	out := output.New(cmd.OutOrStdout())

	dir, err := filepath.Abs(opts.projectDir)
	if err != nil {
		return fmt.Errorf("resolving project directory: %w", err)
	}

	st, err := settings.Load()
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("env-prefix") {
		opts.envPrefix = st.EnvPrefix
	}

	freshProject := !scaffold.IsProject(dir)
	if err := scaffold.EnsureProject(dir); err != nil {
		return err
	}

	if freshProject {
		out.Statusf("The following files/directories have been created in %s", out.Accent(dir))
		out.Statusf("%s - Project Configuration File", out.Accent(projectconf.FileName))
		out.Statusf("%s - Put your source files here", out.Accent("src"))
		out.Statusf("%s - Put here project specific (private) libraries", out.Accent("lib"))
	}

	registry, err := newRegistry(st)
	if err != nil {
		return err
	}

	configPath := filepath.Join(dir, projectconf.FileName)
	doc, err := projectconf.Load(configPath)
	if err != nil {
		return err
	}

	result, err := envmerge.Merge(doc, registry, envmerge.Request{
		BoardIDs:  opts.boardIDs,
		Options:   opts.projectOptions,
		EnvPrefix: opts.envPrefix,
	})
	if err != nil {
		return err
	}

	if doc.Dirty() {
		if err := doc.Save(configPath); err != nil {
			return err
		}
		out.Statusf("Added environments: %s", out.Accent(strings.Join(result.Added, ", ")))
		slog.Debug("environments added", slog.Any("sections", result.Added))
	}

	if opts.ideName != "" {
		if err := generateIDE(out, registry, doc, dir, opts); err != nil {
			return err
		}
	}

	// Platform reconciliation runs after the configuration is persisted;
	// an install failure never rolls back the merge.
	if opts.installPlatforms || opts.ideName != "" {
		if err := reconcilePlatforms(ctx, out, st, result.Platforms); err != nil {
			return err
		}
	}

	out.Newline()
	out.Success("Project has been successfully initialized!")
	out.Status("Useful commands:")
	out.Status("`platformio run` - process/build project from the current directory")
	out.Status("`platformio run --target upload` - upload firmware to embedded board")
	out.Status("`platformio run --target clean` - clean project (remove compiled files)")
	return nil
}

// newRegistry builds the board registry, merging bundled manifests with
// the user's board directories. Missing directories are skipped.
func newRegistry(st *settings.Settings) (*boards.Registry, error) {
	opts := make([]boards.Option, 0, len(st.BoardDirs))
	for _, dir := range st.BoardDirs {
		opts = append(opts, boards.WithManifestDir(dir))
	}
	return boards.New(opts...)
}

// generateIDE renders IDE project files for the first board: the first
// requested one, or the first configured one when no boards were requested.
func generateIDE(out *output.Writer, registry *boards.Registry, doc *projectconf.Document, dir string, opts initOptions) error {
	boardID := ""
	switch {
	case len(opts.boardIDs) > 0:
		boardID = opts.boardIDs[0]
	default:
		first, ok := doc.FirstBoard()
		if !ok {
			return errBoardNotDefined()
		}
		boardID = first
	}

	if len(opts.boardIDs) > 1 {
		out.Warningf("You have initialized the project with more than 1 board for the specified IDE.\n"+
			"The IDE features have been configured for the first board %q from your list %q.",
			opts.boardIDs[0], strings.Join(opts.boardIDs, ", "))
	}

	desc, err := registry.Resolve(boardID)
	if err != nil {
		return err
	}

	gen, err := ide.NewGenerator(dir, doc.SrcDir(), opts.ideName, desc)
	if err != nil {
		return err
	}
	if err := gen.Generate(); err != nil {
		return err
	}
	out.Statusf("Generated %s project files for board %s", out.Accent(opts.ideName), out.Accent(boardID))
	return nil
}

// errBoardNotDefined reports IDE generation without any board to bind to.
func errBoardNotDefined() error {
	return pioerrors.New(pioerrors.ErrCodeBoardNotDefined,
		"no board defined for IDE project generation", nil).
		WithSuggestion("Pass a board with `pio init -b <ID> --ide <NAME>`")
}

// reconcilePlatforms installs the platforms referenced by the requested
// batch that are not yet present in the pio home.
func reconcilePlatforms(ctx context.Context, out *output.Writer, st *settings.Settings, requested map[string]struct{}) error {
	if len(requested) == 0 {
		return nil
	}

	home, err := platforms.DefaultHome()
	if err != nil {
		return err
	}

	manager := platforms.NewManager(home,
		platforms.NewHTTPInstaller(filepath.Join(home, "platforms"),
			platforms.WithRegistryURL(st.RegistryURL)))

	installed, err := manager.EnsureInstalled(ctx, requested)
	if err != nil {
		return err
	}
	if len(installed) > 0 {
		out.Statusf("Installed platforms: %s", out.Accent(strings.Join(installed, ", ")))
	}
	return nil
}
