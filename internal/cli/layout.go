package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/okanele/orrery/pkg/drawing"
)

// layoutOpts holds the command-line flags for the layout command.
type layoutOpts struct {
	output        string // output drawing path; derived from input when empty
	inputFormat   string // input format override: "json" or "edgelist"
	quality       string // quality preset: draft, standard, nice
	seed          uint64 // random seed
	unitLength    float64
	singleLevel   bool // skip the multilevel scheme
	keepPositions bool // seed the forces from positions in the input
	refresh       bool // recompute even on cache hit
	noCache       bool
}

// layoutCommand creates the layout command. It loads a graph, runs the
// multilevel force engine and writes the resulting drawing as JSON.
func (c *CLI) layoutCommand() *cobra.Command {
	var opts layoutOpts

	cmd := &cobra.Command{
		Use:   "layout [file]",
		Short: "Compute a force-directed layout for a graph",
		Long: `Layout loads a graph from a JSON or edge-list file, computes node
positions with the multilevel force-directed engine and writes the
drawing to a JSON file next to the input.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd, args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output drawing file (default: input with .drawing.json)")
	cmd.Flags().StringVar(&opts.inputFormat, "input-format", "", "input format: json, edgelist (default: by extension)")
	cmd.Flags().StringVarP(&opts.quality, "quality", "q", "", "quality preset: draft, standard, nice")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "random seed (default from config)")
	cmd.Flags().Float64Var(&opts.unitLength, "unit-length", 0, "target edge length in layout units")
	cmd.Flags().BoolVar(&opts.singleLevel, "single-level", false, "skip multilevel coarsening")
	cmd.Flags().BoolVar(&opts.keepPositions, "keep-positions", false, "start from positions stored in the input")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute even when cached")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the pipeline cache")

	return cmd
}

func (c *CLI) runLayout(cmd *cobra.Command, input string, opts *layoutOpts) error {
	ctx := c.withLogger(cmd.Context())

	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	popts := c.pipelineOptions()
	popts.Input = input
	popts.InputFormat = opts.inputFormat
	popts.Refresh = opts.refresh
	popts.SingleLevel = opts.singleLevel
	popts.KeepPositions = opts.keepPositions
	if opts.quality != "" {
		popts.Quality = opts.quality
	}
	if opts.seed != 0 {
		popts.Seed = opts.seed
	}
	if opts.unitLength != 0 {
		popts.UnitEdgeLength = opts.unitLength
	}

	g, loadHit, err := runner.LoadWithCacheInfo(ctx, popts)
	if err != nil {
		return err
	}
	comps, _ := g.ConnectedComponents()
	printInfo("Loaded %s", input)
	printStats(g.NodeCount(), g.EdgeCount(), len(comps), loadHit)

	spin := newSpinner(ctx, fmt.Sprintf("Laying out %d nodes...", g.NodeCount()))
	spin.Start()
	p := newProgress(c.Logger)

	d, drawingHit, err := runner.LayoutWithCacheInfo(ctx, g, popts)
	if err != nil {
		spin.StopWithError("Layout failed")
		return err
	}
	spin.Stop()
	p.done(fmt.Sprintf("Laid out %d nodes", g.NodeCount()))

	outputPath := opts.output
	if outputPath == "" {
		outputPath = drawingPath(input)
	}
	if err := drawing.WriteFile(d, outputPath); err != nil {
		return err
	}

	status := "computed"
	if drawingHit {
		status = "cached"
	}
	printSuccess("Drawing saved (%s, canvas %.0fx%.0f, seed %d)", status, d.Width, d.Height, d.Seed)
	printFile(outputPath)
	printNextStep("Render it", fmt.Sprintf("%s render %s", appName, outputPath))
	return nil
}

// drawingPath derives the drawing output path from the input file.
func drawingPath(input string) string {
	base := strings.TrimSuffix(input, filepath.Ext(input))
	return base + ".drawing.json"
}

// readDrawing loads a drawing JSON file, reporting a friendly error for
// files that are graphs rather than drawings.
func readDrawing(path string) (drawing.Drawing, error) {
	d, err := drawing.ReadFile(path)
	if err != nil {
		if _, statErr := os.Stat(path); statErr == nil {
			printDetail("Is %s a graph file? Run '%s layout %s' first.", path, appName, path)
		}
		return drawing.Drawing{}, err
	}
	return d, nil
}
