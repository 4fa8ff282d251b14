package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dorukarda/platformio/internal/output"
	"github.com/dorukarda/platformio/internal/settings"
)

func newBoardsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "boards [QUERY]",
		Short: "List known boards",
		Long: `List the boards known to the registry, optionally filtered by a
query matched against identifier, name, platform and frameworks.`,
		Example: `  # All known boards
  pio boards

  # Boards of one platform
  pio boards ststm32`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := ""
			if len(args) > 0 {
				query = args[0]
			}
			return runBoards(cmd, query)
		},
	}
	return cmd
}

func runBoards(cmd *cobra.Command, query string) error {
	out := output.New(cmd.OutOrStdout())

	st, err := settings.Load()
	if err != nil {
		return err
	}
	registry, err := newRegistry(st)
	if err != nil {
		return err
	}

	found, err := registry.Search(query)
	if err != nil {
		return err
	}
	if len(found) == 0 {
		out.Statusf("No boards found for %q", query)
		return nil
	}

	out.Statusf("%-20s %-15s %-14s %-10s %s", "ID", "Platform", "MCU", "Frequency", "Frameworks")
	out.Status(strings.Repeat("-", 78))
	for _, desc := range found {
		out.Statusf("%-20s %-15s %-14s %-10s %s",
			desc.ID, desc.Platform, desc.MCU,
			formatFrequency(desc.FCPU), strings.Join(desc.Frameworks, ", "))
	}
	return nil
}

// formatFrequency renders an f_cpu value in MHz.
func formatFrequency(hz int64) string {
	if hz == 0 {
		return "-"
	}
	return fmt.Sprintf("%dMHz", hz/1000000)
}
