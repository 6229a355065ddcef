package pipeline

import (
	"context"

	"github.com/matzehuels/cellgraph/pkg/errors"
	"github.com/matzehuels/cellgraph/pkg/render"
	"github.com/matzehuels/cellgraph/pkg/render/nodelink"
)

// Render produces one artifact of d without caching.
func Render(ctx context.Context, d render.Diagram, format string, opts Options) ([]byte, error) {
	dotOpts := nodelink.Options{Detailed: opts.Detailed, Positioned: opts.Positioned}

	switch render.Format(format) {
	case render.FormatStates:
		var svgOpts []render.SVGOption
		if opts.Padding > 0 {
			svgOpts = append(svgOpts, render.WithPadding(opts.Padding))
		}
		return render.StatesSVG(d, svgOpts...), nil
	case render.FormatDOT:
		return []byte(nodelink.ToDOT(d, dotOpts)), nil
	case render.FormatSVG:
		data, err := nodelink.RenderSVG(ctx, nodelink.ToDOT(d, dotOpts))
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "render %s", format)
		}
		return data, nil
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "unsupported format: %s", format)
	}
}
