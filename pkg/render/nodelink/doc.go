// Package nodelink renders graphs as Graphviz node-link diagrams.
//
// # Overview
//
// [ToDOT] exports the visible vertices and edges of a [render.Diagram] as
// Graphviz DOT source. Vertices become boxes (or ellipses and diamonds by
// their shape style), edges become arrows between their visible terminals,
// and expanded containers with vertex children become clusters.
//
// # Usage
//
//	dot := nodelink.ToDOT(g, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// # Options
//
//   - Detailed: labels include the cell ID and its view bounds.
//   - Positioned: nodes are pinned to their view coordinates and the
//     neato engine is used instead of dot's layered layout.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering.
package nodelink
