package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gitnetwork/pkg/graph"
	"github.com/matzehuels/gitnetwork/pkg/pipeline"
)

// renderCommand creates the render command, which renders a layout file
// produced by "layout -f json" without reading history again.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		output     string
		formatsStr string
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "render [layout.json]",
		Short: "Render a saved layout",
		Long: `Render a saved layout as text, SVG or Graphviz DOT.

The input is a layout file written by 'gitnetwork layout -f json'. Pass
--run to render a stored layout by its run id instead.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			runID, _ := cmd.Flags().GetString("run")
			switch {
			case runID != "" && len(args) == 1:
				return fmt.Errorf("pass either a layout file or --run, not both")
			case runID != "":
				return c.runRenderStored(cmd.Context(), runID, opts, output)
			case len(args) == 1:
				return c.runRender(cmd.Context(), args[0], opts, output)
			}
			return fmt.Errorf("a layout file or --run is required")
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): text (default), svg, dot, json (comma-separated)")
	cmd.Flags().String("run", "", "render a stored layout by run id")
	cmd.Flags().BoolVar(&opts.Color, "color", false, "colorize text output")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "label commits in SVG and DOT output")
	cmd.Flags().BoolVar(&opts.Graphviz, "graphviz", false, "produce SVG through Graphviz")

	return cmd
}

// runRender renders a layout file.
func (c *CLI) runRender(ctx context.Context, input string, opts pipeline.Options, output string) error {
	data, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("read layout: %w", err)
	}
	opts.Logger = c.Logger
	artifacts, err := pipeline.RenderFromLayoutData(ctx, data, opts)
	if err != nil {
		return err
	}
	return c.emit(artifacts, opts.Formats, input, output)
}

// runRenderStored renders a layout loaded from the configured store.
func (c *CLI) runRenderStored(ctx context.Context, id string, opts pipeline.Options, output string) error {
	st, err := c.newStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	l, err := st.Load(ctx, id)
	if err != nil {
		return err
	}
	opts.Logger = c.Logger
	artifacts, err := pipeline.RenderFromLayout(ctx, *l, opts)
	if err != nil {
		return err
	}
	return c.emit(artifacts, opts.Formats, id, output)
}

// emit prints lone text output and writes everything else to files.
func (c *CLI) emit(artifacts map[string][]byte, formats []string, input, output string) error {
	if output == "" && len(formats) == 1 && formats[0] == graph.FormatText {
		_, err := stdout.Write(artifacts[graph.FormatText])
		return err
	}
	return writeArtifacts(artifacts, formats, input, output)
}
