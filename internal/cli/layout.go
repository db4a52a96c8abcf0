package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gitnetwork/pkg/graph"
	"github.com/matzehuels/gitnetwork/pkg/pipeline"
)

// extensions maps formats to output file suffixes.
var extensions = map[string]string{
	graph.FormatText: "txt",
	graph.FormatSVG:  "svg",
	graph.FormatDOT:  "dot",
	graph.FormatJSON: "layout.json",
}

// layoutCommand creates the layout command, which runs the full pipeline
// against a repository or history file.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output     string
		formatsStr string
		noCache    bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "layout [repo]",
		Short: "Lay out the commit network of a repository",
		Long: `Lay out the commit network of a repository.

The argument is a git working tree (default ".") or a JSON/YAML history file.
The newest commits reachable from --ref are placed on lanes; with --target the
window is centered on that commit instead of the newest one.

Text output goes to stdout unless -o is given. Other formats are written to
files named after the input. Layouts are cached by head commit and refs.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Repo = "."
			if len(args) == 1 {
				opts.Repo = args[0]
			}
			opts.Formats = parseFormats(formatsStr)
			return c.runLayout(cmd.Context(), opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): text (default), svg, dot, json (comma-separated)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "recompute even when a cached layout exists")
	cmd.Flags().BoolVar(&opts.Save, "save", false, "store the layout for later retrieval")

	cmd.Flags().StringVar(&opts.Ref, "ref", "", "history to walk (default: HEAD)")
	cmd.Flags().StringVar(&opts.Target, "target", "", "commit or ref to center the window on")
	cmd.Flags().StringVar(&opts.PrimaryRef, "primary-ref", "", "ref whose commits take lane 1 (default: from config, then main)")
	cmd.Flags().IntVar(&opts.MaxCommits, "max-commits", 0, "window size (default: from config, then 650)")

	cmd.Flags().BoolVar(&opts.Color, "color", false, "colorize text output")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "label commits in SVG and DOT output")
	cmd.Flags().BoolVar(&opts.Graphviz, "graphviz", false, "produce SVG through Graphviz")

	return cmd
}

// runLayout executes the pipeline and writes every requested artifact.
func (c *CLI) runLayout(ctx context.Context, opts pipeline.Options, output string, noCache bool) error {
	c.setCLIDefaults(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, noCache, opts.Save)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spin := newSpinner(ctx, "Laying out "+opts.Repo+"...").start()
	result, err := runner.Execute(ctx, opts)
	spin.stop()
	if err != nil {
		return err
	}

	if output == "" && len(opts.Formats) == 1 && opts.Formats[0] == graph.FormatText {
		_, err := stdout.Write(result.Artifacts[graph.FormatText])
		return err
	}

	printSuccess("Laid out %s", opts.Repo)
	printStats(result.Stats.Commits, result.Stats.Lanes, result.CacheInfo.LayoutHit)
	if err := writeArtifacts(result.Artifacts, opts.Formats, opts.Repo, output); err != nil {
		return err
	}
	if result.RunID != "" {
		printKeyValue("Run", result.RunID)
	}
	return nil
}

// writeArtifacts writes artifacts in the order of formats and prints each path.
func writeArtifacts(artifacts map[string][]byte, formats []string, input, output string) error {
	for _, f := range formats {
		path := outputPath(input, output, f, len(formats) == 1)
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}
		}
		if err := os.WriteFile(path, artifacts[f], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", f, err)
		}
		printFile(path)
	}
	return nil
}

// outputPath picks the file for one format. A single format uses output
// verbatim; several formats treat it as a base name.
func outputPath(input, output, format string, single bool) string {
	ext := extensions[format]
	if output == "" {
		return defaultOutput(input, ext)
	}
	if single {
		return output
	}
	base := strings.TrimSuffix(output, filepath.Ext(output))
	base = strings.TrimSuffix(base, ".layout")
	return base + "." + ext
}
