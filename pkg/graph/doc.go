// Package graph provides the undirected multigraph consumed by the layout
// engine.
//
// Nodes and edges are identified by dense integer indices assigned at
// insertion time. This arena-style representation keeps per-node and
// per-edge attribute storage as plain parallel slices, which is what the
// multilevel layout engine builds its level attributes on.
//
// # Structure
//
// A [Graph] may be disconnected and non-simple: self-loops and parallel
// edges are accepted by [Graph.AddEdge]. Algorithms that need a simple
// graph call [Graph.MakeSimple] and redirect lookups through the returned
// edge maps; algorithms that work per component call
// [Graph.ConnectedComponents].
//
// # Example
//
//	g := graph.New(3, 2)
//	a := g.AddNode(graph.Node{Label: "a"})
//	b := g.AddNode(graph.Node{Label: "b"})
//	g.AddNode(graph.Node{Label: "isolated"})
//	g.AddEdge(graph.Edge{Source: a, Target: b, Weight: 1})
//
//	comps, _ := g.ConnectedComponents() // two components
package graph
