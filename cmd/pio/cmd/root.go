// Package cmd provides the CLI commands for pio.
package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	pioerrors "github.com/dorukarda/platformio/internal/errors"
	"github.com/dorukarda/platformio/internal/logging"
	"github.com/dorukarda/platformio/pkg/version"
)

// Debug logging flag
var (
	debugMode      bool
	loggingCleanup func()
)

// NewRootCmd creates the root command for the pio CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pio",
		Short: "Initialize and manage embedded firmware projects",
		Long: `pio scaffolds embedded firmware projects and keeps their
platformio.ini build environments in sync with the board registry.

Run 'pio init -b <board>' in a project directory to get started.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetVersionTemplate("pio version {{.Version}}\n")

	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging to ~/.platformio/logs/")
	cmd.PersistentPreRunE = startLogging
	cmd.PersistentPostRunE = stopLogging

	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newBoardsCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// startLogging enables debug logging when --debug is set.
func startLogging(_ *cobra.Command, _ []string) error {
	if !debugMode {
		return nil
	}
	logger, cleanup, err := logging.Setup(logging.DebugConfig())
	if err != nil {
		return fmt.Errorf("failed to setup debug logging: %w", err)
	}
	loggingCleanup = cleanup
	slog.SetDefault(logger)
	slog.Debug("debug logging enabled",
		slog.String("log_file", logging.DefaultLogPath()),
		slog.String("version", version.Version))
	return nil
}

// stopLogging flushes the debug log file.
func stopLogging(_ *cobra.Command, _ []string) error {
	if loggingCleanup != nil {
		loggingCleanup()
		loggingCleanup = nil
	}
	return nil
}

// Execute runs the root command. Errors carrying a user suggestion print
// it below the error message.
func Execute() error {
	err := NewRootCmd().Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		var pe *pioerrors.PioError
		if errors.As(err, &pe) && pe.Suggestion != "" {
			fmt.Fprintln(os.Stderr, pe.Suggestion)
		}
	}
	return err
}
