// Package pkg provides the core libraries for orrery graph layout.
//
// # Overview
//
// Orrery computes force-directed layouts for large undirected graphs
// using a multilevel scheme that coarsens the graph into "solar
// systems" before solving the force model level by level. The pkg
// directory is organized into five main areas:
//
//  1. [graph] - Graph structure (nodes, edges, connected components)
//  2. [layout/fmmm] - The multilevel force-directed layout engine
//  3. [drawing] - Serialization types for finished layouts
//  4. [render] - Node-link diagram rendering via Graphviz
//  5. [pipeline] - Orchestration (load → layout → render) with caching
//
// Supporting packages: [cache] (file/Redis backends), [store] (drawing
// persistence), [errors] (structured error codes), [observability]
// (instrumentation hooks), [buildinfo] (version stamping).
//
// # Architecture
//
// The typical data flow through orrery:
//
//	Graph file (JSON / edge list)
//	         ↓
//	    [graph] package (structure + components)
//	         ↓
//	    [layout/fmmm] package (multilevel force layout)
//	         ↓
//	    [drawing] package (positions + canvas)
//	         ↓
//	    [render/nodelink] package (DOT → SVG/PNG)
//
// # Quick Start
//
// Lay out a graph and render it:
//
//	import (
//	    "context"
//	    "github.com/okanele/orrery/pkg/pipeline"
//	)
//
//	runner := pipeline.NewRunner(nil, nil, nil)
//	result, err := runner.Execute(context.Background(), pipeline.Options{
//	    Input:   "graph.json",
//	    Formats: []string{pipeline.FormatSVG},
//	})
//
// The [pipeline] package is the supported entry point; the layout
// engine can also be driven directly through [layout/fmmm.Layout] for
// callers that manage their own serialization.
package pkg
