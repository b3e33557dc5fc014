package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	pkgio "github.com/matzehuels/depscope/pkg/io"
	"github.com/matzehuels/depscope/pkg/pipeline"
)

// analyzeCommand creates the analyze command: a full run that writes every
// artifact to the output directory.
func (c *CLI) analyzeCommand() *cobra.Command {
	var (
		flags      analysisFlags
		output     string
		formatsStr string
	)

	cmd := &cobra.Command{
		Use:   "analyze [project-dir]",
		Short: "Find unused and conflict-omitted dependencies",
		Long: `Analyze a compiled Maven project against its resolved dependency tree.

The project's classes are indexed, every dependency archive from the local
repository is classified as used or unused, and the tree is annotated with
the result. Omitted dependencies are reported with the paths to both the
omitted node and its winner.

Produces in the output directory (default <project-dir>/target):
  dependency-tree.json    the annotated tree
  depscope-report.json    verdicts, unused list and conflicts
  dependency-tree.<fmt>   diagrams for each --format

The graph is the output of 'mvn dependency:tree -Dverbose' or its JSON form.
When --graph is not given, target/dependency-tree.txt and a few other
conventional names are tried.`,
		Example: `  # Analyze the project in the current directory
  depscope analyze

  # Write an SVG diagram next to the JSON files
  depscope analyze ./service -f svg -o reports`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectDir := projectDirArg(args)
			opts, cfg, err := c.options(cmd, projectDir, &flags)
			if err != nil {
				return err
			}

			opts.Formats = cfg.Output.Formats
			if cmd.Flags().Changed("format") {
				opts.Formats = parseFormats(formatsStr)
			}
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}

			outDir := resolvePath(projectDir, cfg.Output.Dir)
			if cmd.Flags().Changed("output") {
				outDir = output
			}
			if outDir == "" {
				outDir = filepath.Join(projectDir, "target")
			}
			return c.runAnalyze(cmd, opts, outDir)
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&flags.detailed, "detailed", false, "show scope, winner and archive path in diagram labels")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output directory (default <project-dir>/target)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "diagram format(s): dot, svg, png (comma-separated)")

	return cmd
}

func (c *CLI) runAnalyze(cmd *cobra.Command, opts pipeline.Options, outDir string) error {
	w := cmd.OutOrStdout()

	result, err := c.runPipeline(cmd, opts)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	treePath := filepath.Join(outDir, treeFileName)
	if err := pkgio.ExportTree(result.Tree, treePath); err != nil {
		return fmt.Errorf("write tree: %w", err)
	}
	reportPath := filepath.Join(outDir, reportFileName)
	if err := pkgio.ExportReport(result.Report(), reportPath); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	written := []string{treePath, reportPath}

	for _, format := range pipeline.SortedFormats(result.Artifacts) {
		path := filepath.Join(outDir, pipeline.ArtifactFileName(format))
		if err := os.WriteFile(path, result.Artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", format, err)
		}
		written = append(written, path)
	}

	printSuccess(w, "Analysis complete")
	printSummary(w, result)
	printNewline(w)
	for _, path := range written {
		printFile(w, path)
	}
	return nil
}

// runPipeline runs one analysis behind a spinner.
func (c *CLI) runPipeline(cmd *cobra.Command, opts pipeline.Options) (*pipeline.Result, error) {
	ctx := cmd.Context()
	spinner := newSpinnerWithContext(ctx, "Analyzing dependencies...").WithOutput(cmd.OutOrStdout())
	spinner.Start()

	st := startStage(opts.Logger)
	result, err := pipeline.NewRunner(opts.Logger).Run(ctx, opts)
	if err != nil {
		spinner.StopWithError("Analysis failed")
		return nil, err
	}
	spinner.Stop()
	st.done("Analyzed %d nodes and %d archives", result.Stats.Nodes, result.Stats.Archives)
	return result, nil
}
