package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/depscope/pkg/errors"
)

// unusedCommand creates the unused command for listing unreferenced archives.
func (c *CLI) unusedCommand() *cobra.Command {
	var (
		flags        analysisFlags
		all          bool
		failOnUnused bool
	)

	cmd := &cobra.Command{
		Use:   "unused [project-dir]",
		Short: "List dependency archives the compiled classes never reference",
		Long: `List dependency archives the compiled classes never reference.

An archive counts as used when one of the types it contains is referenced by
a class under the classes directory, or when its file name matches the
allow-list of compile-only libraries such as lombok. Archives that are
missing from the local repository or cannot be read are treated as used.

With --fail-on-unused the command exits non-zero when anything is unused,
which makes it usable as a build gate.`,
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

			w := cmd.OutOrStdout()
			verdicts := result.UnusedVerdicts()
			if all {
				verdicts = result.Verdicts
			}

			if len(result.Unused) == 0 {
				printSuccess(w, "No unused dependencies among %d archives", len(result.Verdicts))
			} else {
				printWarning(w, "%d unused of %d archives", len(result.UnusedVerdicts()), len(result.Verdicts))
			}
			if result.Index != nil && result.Index.Missing {
				printWarning(w, "classes directory %s not found; nothing is referenced", opts.ClassesDir)
			}
			if len(verdicts) > 0 {
				fmt.Fprintln(w, verdictTable(verdicts))
			}
			for _, v := range result.UnusedVerdicts() {
				if v.Declared {
					printDetail(w, "%s is declared in pom.xml", v.Coordinates[0])
				}
			}

			if failOnUnused && len(result.Unused) > 0 {
				return errors.New(errors.ErrCodeUnusedFound, "%d unused dependencies", len(result.Unused))
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVarP(&all, "all", "a", false, "list every archive, not only unused ones")
	cmd.Flags().BoolVar(&failOnUnused, "fail-on-unused", false, "exit with an error when unused dependencies are found")

	return cmd
}
