// Package pkg provides the core libraries for cellgraph diagram documents.
//
// # Overview
//
// Cellgraph keeps a diagram as a tree of cells (layers, groups, vertices
// and edges), computes a view of it and records every mutation as an
// undoable edit. The pkg directory is organized into three areas:
//
//  1. Core - the cell model, its view and the graph facade
//  2. Codecs - documents (JSON, YAML) and change logs (XML)
//  3. Infrastructure - configuration, caching, storage and the pipeline
//
// # Architecture
//
// The typical data flow through cellgraph:
//
//	Document (JSON/YAML) or store record
//	         ↓
//	    [codec] package (restore the model)
//	         ↓
//	    [graph] package (model + view + selection + undo)
//	         ↓
//	    [pipeline] package (validate, render, cache)
//	         ↓
//	    SVG/DOT/state SVG output
//
// # Quick Start
//
// Build a graph and undo an edit:
//
//	g := graph.New()
//	g.Batch(func() {
//	    a := g.InsertVertex("", "A", 20, 20, 80, 30, style.Style{})
//	    b := g.InsertVertex("", "B", 200, 150, 80, 30, style.MustParse("shape=ellipse"))
//	    g.InsertEdge("", nil, a, b, style.Style{})
//	})
//	g.Undo() // removes all three cells
//
// Replay a change log against a stored document:
//
//	doc, _ := codec.ReadFile("order.yaml")
//	m, _ := codec.ToModel(doc)
//	n, _ := codec.Replay(m, changes)
//
// # Main Packages
//
// ## Core
//
// [cell] - The cell record: value, style, geometry, tree and terminal links.
//
// [model] - The cell arena. Every mutation runs as a change inside an edit;
// EndUpdate publishes the committed edit as a Change event.
//
// [view] - Cell states in view coordinates: absolute bounds, edge points,
// perimeter ports and the view scale, translate and current root.
//
// [graph] - The facade tying model, view, selection and undo together, with
// editing, grouping, swimlane and multiplicity validation capabilities.
//
// [undo] - The undo history of significant edits.
//
// [selection], [event], [geometry], [style] - supporting types.
//
// ## Codecs
//
// [codec] - Document snapshots of a model and the XML change log format.
//
// [render] - Draw order, plain state SVG and the Graphviz node-link export.
//
// ## Infrastructure
//
// [pipeline] - Load, build, validate and render with caching, shared by the
// CLI and the HTTP API.
//
// [config] - The TOML configuration file.
//
// [cache] - Artifact caching with file, Redis and null backends.
//
// [store] - Document persistence in memory, files, SQLite or MongoDB.
//
// [observability] - Hooks for metrics and tracing.
//
// [errors] - Coded errors and input validation.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...          # All tests
//	go test ./pkg/graph/...    # Specific package
//	go test -run Example       # Examples only
package pkg
