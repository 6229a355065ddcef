// Package render turns the validated view of a graph into pictures.
//
// # Overview
//
// Rendering is a leaf consumer of the view: it reads [view.CellState]
// values and never changes the model. Two renderers are provided:
//
//   - [StatesSVG] draws the cell states as plain SVG primitives at their
//     view coordinates (rectangles, ellipses, polylines, labels).
//   - The [nodelink] subpackage exports the model as Graphviz DOT and lays
//     it out with Graphviz, either freely or pinned to the view positions.
//
// Both accept a [Diagram], which *graph.Graph implements:
//
//	g := graph.New()
//	// ... insert cells ...
//	svg := render.StatesSVG(g)
//
//	dot := nodelink.ToDOT(g, nodelink.Options{Positioned: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// Shapes are approximations: stroke geometry, markers and text placement
// are kept simple and are not meant to match an interactive canvas.
//
// [nodelink]: github.com/matzehuels/cellgraph/pkg/render/nodelink
package render
