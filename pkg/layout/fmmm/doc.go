// Package fmmm implements the Fast Multilayer Method for force-directed
// graph layout (multipole-free variant).
//
// # Overview
//
// The engine computes 2D positions for the nodes of an arbitrary, possibly
// disconnected and non-simple graph. For each connected component it runs a
// multilevel scheme:
//
//  1. Coarsen: partition the graph into "solar systems" (a sun, its planet
//     neighbors, and moons attached to planets), collapse each system into
//     one coarse node, and repeat until the graph is small.
//  2. Place: lay out the coarsest level, then lift positions level by level,
//     seeding each finer node inside an angular sector around its sun.
//  3. Iterate: refine every level with spring and repulsive forces.
//
// Repulsive forces come in an exact O(n²) flavor and a grid-approximated
// flavor that bins nodes into cells and resolves only the upper/right half
// of each 3×3 neighborhood so no pair is counted twice.
//
// Disconnected graphs are laid out one component per worker and the
// resulting drawings are packed into rows on a single canvas.
//
// # Usage
//
//	opts := fmmm.DefaultOptions()
//	opts.UnitEdgeLength = 80
//
//	rect, err := fmmm.Layout(opts, g, nil, nil, func(node int, p r2.Vec) {
//	    fmt.Printf("node %d at (%.1f, %.1f)\n", node, p.X, p.Y)
//	})
//
// Given the same RandSeed two runs produce identical positions, also when
// components are laid out in parallel: every component task derives its own
// RNG seed from the component index.
package fmmm
