package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/okanele/orrery/pkg/drawing"
	"github.com/okanele/orrery/pkg/errors"
)

// pointsPerUnit converts layout coordinates to Graphviz points. One
// layout unit maps to one point, which keeps the default unit edge
// length (100) readable without further scaling.
const pointsPerUnit = 1.0

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed includes node index and coordinates in labels.
	// When false, only the node label (or index) is shown.
	Detailed bool

	// ShowWeights labels edges with their weight when it isn't 1 or 0.
	ShowWeights bool
}

// ToDOT converts a drawing to Graphviz DOT with pinned positions. Every
// node carries pos="x,y!"; the trailing bang tells layout engines to
// keep the coordinate. Y is flipped because drawings grow downward while
// Graphviz's coordinate system grows upward.
func ToDOT(d *drawing.Drawing, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=circle, style=filled, fillcolor=white, fixedsize=true, width=0.3, fontsize=10];\n")
	buf.WriteString("  edge [color=\"#666666\"];\n")
	buf.WriteString("\n")

	for _, n := range d.Nodes {
		label := fmtLabel(n, opts.Detailed)
		fmt.Fprintf(&buf, "  n%d [label=%q, pos=\"%.2f,%.2f!\"];\n",
			n.ID, label, n.X*pointsPerUnit, (d.Height-n.Y)*pointsPerUnit)
	}

	buf.WriteString("\n")
	for _, e := range d.Edges {
		if opts.ShowWeights && e.Weight != 0 && e.Weight != 1 {
			fmt.Fprintf(&buf, "  n%d -- n%d [label=\"%g\"];\n", e.Source, e.Target, e.Weight)
			continue
		}
		fmt.Fprintf(&buf, "  n%d -- n%d;\n", e.Source, e.Target)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n drawing.Node, detailed bool) string {
	label := n.Label
	if label == "" {
		label = strconv.Itoa(n.ID)
	}
	if !detailed {
		return label
	}
	return fmt.Sprintf("%s\n#%d (%.0f, %.0f)", label, n.ID, n.X, n.Y)
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	return render(ctx, dot, graphviz.SVG, normalizeViewBox)
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return render(ctx, dot, graphviz.PNG, nil)
}

func render(ctx context.Context, dot string, format graphviz.Format, post func([]byte) []byte) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render %s", format)
	}
	out := buf.Bytes()
	if post != nil {
		out = post(out)
	}
	return out, nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the SVG root element so the view box starts
// at the origin and the element carries explicit pixel dimensions, which
// browsers need for consistent scaling.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
