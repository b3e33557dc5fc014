package cli

import (
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/depscope/pkg/conflict"
)

// conflictsCommand creates the conflicts command for listing dependencies
// omitted by version-conflict resolution.
func (c *CLI) conflictsCommand() *cobra.Command {
	var (
		flags       analysisFlags
		interactive bool
	)

	cmd := &cobra.Command{
		Use:   "conflicts [project-dir]",
		Short: "List dependencies omitted for a version conflict",
		Long: `List dependencies omitted for a version conflict.

For every node the dependency tree marks as omitted, the command prints the
path from the project root to the omitted node and the path to the node that
replaced it. Winners that are not part of the tree are flagged.

Use --interactive to browse the entries in a terminal UI.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, _, err := c.options(cmd, projectDirArg(args), &flags)
			if err != nil {
				return err
			}
			result, err := c.runPipeline(cmd, opts)
			if err != nil {
				return err
			}

			if interactive {
				p := tea.NewProgram(NewConflictListModel(result.Conflicts.Entries),
					tea.WithContext(cmd.Context()), tea.WithOutput(cmd.OutOrStdout()))
				if _, err := p.Run(); err != nil {
					return fmt.Errorf("conflict browser: %w", err)
				}
				return nil
			}
			printConflicts(cmd.OutOrStdout(), result.Conflicts)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "browse conflicts in a terminal UI")

	return cmd
}

func printConflicts(w io.Writer, r conflict.Report) {
	if len(r.Entries) == 0 {
		printSuccess(w, "No dependency was omitted for a conflict")
		return
	}
	printInfo(w, "%d omitted, %d with winner in tree", len(r.Entries), r.Resolved())
	for _, e := range r.Entries {
		printNewline(w)
		fmt.Fprintln(w, StyleValue.Render(e.Summary()))
		printDetail(w, "omitted: %s", conflict.FormatPath(e.OmittedPath))
		if e.Resolved() {
			printDetail(w, "winner:  %s", conflict.FormatPath(e.WinnerPath))
		} else {
			printWarning(w, "winner %s not found in tree", e.Omitted.Winner)
		}
	}
}
