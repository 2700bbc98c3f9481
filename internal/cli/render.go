package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/okanele/orrery/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output      string   // output file path (or base path for multiple formats)
	formats     []string // output formats: "svg", "png", "dot", "json"
	detailed    bool     // include node index and coordinates in labels
	showWeights bool     // label edges with their weights
	noCache     bool
}

// renderCommand creates the render command for turning drawings into
// images. Without an argument it opens an interactive picker over the
// drawing files in the current directory.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [drawing]",
		Short: "Render a drawing to SVG, PNG, or DOT",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}

			input := ""
			if len(args) == 1 {
				input = args[0]
			} else {
				selected, err := pickDrawing(".")
				if err != nil {
					return err
				}
				if selected == "" {
					return nil // user quit the picker
				}
				input = selected
			}
			return c.runRender(cmd, input, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, dot, json (comma-separated)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show node indices and coordinates")
	cmd.Flags().BoolVar(&opts.showWeights, "weights", false, "label edges with weights")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the pipeline cache")

	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, input string, opts *renderOpts) error {
	ctx := c.withLogger(cmd.Context())

	d, err := readDrawing(input)
	if err != nil {
		return err
	}
	printInfo("Rendering %s", input)
	printStats(len(d.Nodes), len(d.Edges), 1, false)

	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	popts := c.pipelineOptions()
	popts.Formats = opts.formats
	popts.Detailed = opts.detailed
	popts.ShowWeights = opts.showWeights

	artifacts, hit, err := runner.RenderWithCacheInfo(ctx, d, popts)
	if err != nil {
		return err
	}

	base := renderBasePath(opts.output, input)
	for _, format := range opts.formats {
		path := opts.output
		if path == "" || len(opts.formats) > 1 {
			path = base + "." + format
		}
		if err := os.WriteFile(path, artifacts[format], 0644); err != nil {
			return err
		}
		printFile(path)
	}

	status := "rendered"
	if hit {
		status = "cached"
	}
	printSuccess("Generated %d file(s) (%s)", len(opts.formats), status)
	return nil
}

// renderBasePath derives the base output path from the output and input
// file paths, stripping a known format extension from the output and
// the .drawing.json suffix from the input.
func renderBasePath(output, input string) string {
	if output != "" {
		ext := filepath.Ext(output)
		if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
			return strings.TrimSuffix(output, ext)
		}
		return output
	}
	base := strings.TrimSuffix(input, filepath.Ext(input))
	return strings.TrimSuffix(base, ".drawing")
}

// pickDrawing opens the interactive drawing picker over dir and returns
// the chosen path, or "" when the user quits.
func pickDrawing(dir string) (string, error) {
	entries, err := listDrawings(dir)
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		printInfo("No drawings found in %s", dir)
		printNextStep("Create one", fmt.Sprintf("%s layout graph.json", appName))
		return "", nil
	}
	return runDrawingPicker(entries)
}
