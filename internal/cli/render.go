package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cellgraph/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output     string   // output file path (or base path for multiple outputs)
	formats    []string // output formats: "svg", "dot", "states"
	detailed   bool     // show IDs and bounds in node labels
	positioned bool     // keep view coordinates in the Graphviz layout
	padding    float64  // states SVG padding
	refresh    bool     // ignore cached artifacts
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render <document>",
		Short: "Render a document to SVG, DOT or a state SVG",
		Long: `Render builds the graph of a document and writes one file per format:

  svg     Graphviz layout of the node-link export
  dot     the Graphviz source
  states  plain SVG of the computed view states

Artifacts are cached by document content and options.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeDocument,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = pipeline.ParseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), dot, states (comma-separated)")
	cmd.RegisterFlagCompletionFunc("format", completeFormats)
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show cell IDs and bounds in node labels")
	cmd.Flags().BoolVar(&opts.positioned, "positioned", false, "pin nodes to their view coordinates")
	cmd.Flags().Float64Var(&opts.padding, "padding", 0, "padding around the state SVG")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "re-render even if cached")

	return cmd
}

// runRender executes the pipeline and writes the artifacts.
func (c *CLI) runRender(ctx context.Context, input string, opts renderOpts) error {
	runner, err := c.newRunner(ctx)
	if err != nil {
		return err
	}
	defer runner.Close()

	spinner := newSpinner(ctx, input)
	spinner.Start()
	result, err := runner.Execute(ctx, input, pipeline.Options{
		Formats:    opts.formats,
		Detailed:   opts.detailed,
		Positioned: opts.positioned,
		Padding:    opts.padding,
		Refresh:    opts.refresh,
		OnStage:    spinner.Stage,
		Logger:     c.Logger,
	})
	if err != nil {
		if spinner.Cancelled() {
			spinner.Stop()
			return ctx.Err()
		}
		spinner.StopWithError(err)
		return err
	}
	spinner.StopWithSuccess("Rendered %s (%s)", input, strings.Join(opts.formats, ", "))
	printStats(result.Report, result.CacheInfo.RenderHit)

	for _, format := range opts.formats {
		path := outputPath(input, opts.output, format, len(opts.formats))
		if err := os.WriteFile(path, result.Artifacts[format], 0644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}
	return nil
}

// outputPath returns the file for one artifact: the given output for a
// single format, otherwise base.ext.
func outputPath(input, output, format string, formats int) string {
	if output != "" && formats == 1 {
		return output
	}
	return basePath(output, input) + "." + artifactExt(format)
}
