package pipeline

import (
	"context"

	"github.com/okanele/orrery/pkg/drawing"
	"github.com/okanele/orrery/pkg/errors"
	"github.com/okanele/orrery/pkg/render/nodelink"
)

// renderFormats produces every requested artifact from a drawing. The
// DOT source is built once and shared by the Graphviz-backed formats.
func renderFormats(ctx context.Context, d *drawing.Drawing, opts Options) (map[string][]byte, error) {
	nlOpts := nodelink.Options{
		Detailed:    opts.Detailed,
		ShowWeights: opts.ShowWeights,
	}

	var dot string
	for _, format := range opts.Formats {
		if format != FormatJSON {
			dot = nodelink.ToDOT(d, nlOpts)
			break
		}
	}

	out := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		if _, done := out[format]; done {
			continue
		}
		switch format {
		case FormatDOT:
			out[format] = []byte(dot)
		case FormatSVG:
			svg, err := nodelink.RenderSVG(ctx, dot)
			if err != nil {
				return nil, err
			}
			out[format] = svg
		case FormatPNG:
			png, err := nodelink.RenderPNG(ctx, dot)
			if err != nil {
				return nil, err
			}
			out[format] = png
		case FormatJSON:
			data, err := drawing.Marshal(*d)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInternal, err, "marshal drawing")
			}
			out[format] = data
		default:
			return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown format %q", format)
		}
	}
	return out, nil
}
