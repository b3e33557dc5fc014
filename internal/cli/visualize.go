package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/depscope/pkg/deptree"
	pkgio "github.com/matzehuels/depscope/pkg/io"
	"github.com/matzehuels/depscope/pkg/pipeline"
	"github.com/matzehuels/depscope/pkg/render/nodelink"
)

// visualizeCommand creates the visualize command for rendering a graph file.
func (c *CLI) visualizeCommand() *cobra.Command {
	var (
		formatsStr string
		output     string
		opts       nodelink.Options
	)

	cmd := &cobra.Command{
		Use:   "visualize <graph>",
		Short: "Render a dependency graph as a diagram",
		Long: `Render a dependency graph as a node-link diagram.

The input is 'mvn dependency:tree -Dverbose' output, its JSON form, or a
dependency-tree.json written by 'analyze'. Omitted nodes are drawn dashed
with a dotted edge to their winner. No classes are read, so unused flags
are not shown; use 'analyze --format' for a diagram with usage verdicts.`,
		Example: `  depscope visualize target/dependency-tree.txt
  depscope visualize tree.txt -f svg,png -o build/deps --hide-omitted`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formats := parseFormats(formatsStr)
			if len(formats) == 0 {
				formats = []string{pipeline.FormatSVG}
			}
			if err := pipeline.ValidateFormats(formats); err != nil {
				return err
			}
			return c.runVisualize(cmd, args[0], formats, output, opts)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), dot, png (comma-separated)")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "show scope and winner in labels")
	cmd.Flags().BoolVar(&opts.HideOmitted, "hide-omitted", false, "leave out omitted nodes and their subtrees")

	return cmd
}

func (c *CLI) runVisualize(cmd *cobra.Command, input string, formats []string, output string, opts nodelink.Options) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)
	st := startStage(logger)

	g, err := pkgio.ImportGraph(input)
	if err != nil {
		return err
	}
	tree := deptree.Annotate(g, deptree.Options{Logger: logger})
	logger.Debug("graph loaded", "nodes", tree.Len(), "omitted", len(tree.Omitted()))

	spinner := newSpinnerWithContext(ctx, "Rendering...").WithOutput(cmd.OutOrStdout())
	spinner.Start()
	artifacts, err := pipeline.Render(ctx, tree, formats, opts)
	if err != nil {
		spinner.StopWithError("Rendering failed")
		return err
	}
	spinner.Stop()

	w := cmd.OutOrStdout()
	printSuccess(w, "Rendered %d nodes", tree.Len())
	for _, format := range pipeline.SortedFormats(artifacts) {
		path := outputPath(input, output, format, len(artifacts) > 1)
		if err := os.WriteFile(path, artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", format, err)
		}
		printFile(w, path)
	}
	st.done("Rendered %s", strings.Join(formats, ", "))
	return nil
}

// outputPath derives the file for one format. A single format writes to
// output as given; several formats use output as base path.
func outputPath(input, output, format string, multi bool) string {
	if output == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		return base + "." + format
	}
	if multi {
		return strings.TrimSuffix(output, filepath.Ext(output)) + "." + format
	}
	return output
}
