package graph

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownSourceNode is returned by [Graph.AddEdge] when the Source
	// index does not refer to an existing node.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [Graph.AddEdge] when the Target
	// index does not refer to an existing node.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrNegativeWeight is returned by [Graph.AddEdge] for edges with a
	// negative weight. Zero weights are allowed and treated as "unweighted"
	// by consumers that substitute a default length.
	ErrNegativeWeight = errors.New("edge weight must not be negative")

	// ErrInvalidEdgeEndpoint is returned by [Graph.Validate] when an edge
	// references a node that doesn't exist. This indicates graph corruption.
	ErrInvalidEdgeEndpoint = errors.New("invalid edge endpoint")
)

// Node represents a vertex of an undirected graph. Nodes are identified by
// their dense index in the graph (0..NodeCount-1); the index is assigned by
// [Graph.AddNode] and never changes. Width and Height describe the drawn
// extent of the node and may be zero for point nodes.
//
// X and Y optionally carry an initial position. Layout engines only consult
// them when explicitly asked to keep positions.
type Node struct {
	Label         string  // Display label (optional, not required to be unique)
	Width, Height float64 // Drawn extent in user units
	X, Y          float64 // Optional initial position
}

// Edge represents an undirected connection between two node indices.
// Self-loops (Source == Target) and parallel edges are permitted; use
// [Graph.MakeSimple] to obtain a simplified copy when an algorithm
// requires a simple graph.
type Edge struct {
	Source, Target int
	Weight         float64 // Non-negative; 0 means "use the caller's default"
}

// Opposite returns the endpoint of e that is not v.
// For self-loops it returns v itself.
func (e Edge) Opposite(v int) int {
	if e.Source == v {
		return e.Target
	}
	return e.Source
}

// IsSelfLoop reports whether both endpoints coincide.
func (e Edge) IsSelfLoop() bool { return e.Source == e.Target }

// Graph is an undirected multigraph with dense integer node and edge
// indices. The representation is arena-style: nodes and edges live in
// slices and all cross-references are indices, which lets per-node and
// per-edge attribute storage be plain parallel slices.
//
// The zero value is usable and empty. Graph is not safe for concurrent
// mutation without external synchronization.
type Graph struct {
	nodes    []Node
	edges    []Edge
	incident [][]int // node index -> indices of incident edges
}

// New creates an empty graph with capacity hints for nodes and edges.
// Both hints may be zero.
func New(nodeHint, edgeHint int) *Graph {
	return &Graph{
		nodes:    make([]Node, 0, max(nodeHint, 0)),
		edges:    make([]Edge, 0, max(edgeHint, 0)),
		incident: make([][]int, 0, max(nodeHint, 0)),
	}
}

// AddNode appends a node and returns its index.
func (g *Graph) AddNode(n Node) int {
	g.nodes = append(g.nodes, n)
	g.incident = append(g.incident, nil)
	return len(g.nodes) - 1
}

// AddEdge appends an edge between two existing nodes and returns its index.
// Returns ErrUnknownSourceNode or ErrUnknownTargetNode for out-of-range
// endpoints and ErrNegativeWeight for negative weights.
func (g *Graph) AddEdge(e Edge) (int, error) {
	if e.Source < 0 || e.Source >= len(g.nodes) {
		return -1, ErrUnknownSourceNode
	}
	if e.Target < 0 || e.Target >= len(g.nodes) {
		return -1, ErrUnknownTargetNode
	}
	if e.Weight < 0 {
		return -1, ErrNegativeWeight
	}
	idx := len(g.edges)
	g.edges = append(g.edges, e)
	g.incident[e.Source] = append(g.incident[e.Source], idx)
	if e.Target != e.Source {
		g.incident[e.Target] = append(g.incident[e.Target], idx)
	}
	return idx, nil
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Node returns a pointer to the node at index v for in-place mutation.
// The pointer is invalidated by subsequent AddNode calls.
func (g *Graph) Node(v int) *Node { return &g.nodes[v] }

// Edge returns a pointer to the edge at index e.
// The pointer is invalidated by subsequent AddEdge calls.
func (g *Graph) Edge(e int) *Edge { return &g.edges[e] }

// IncidentEdges returns the indices of edges incident to v.
// Self-loops appear once. The returned slice must not be modified.
func (g *Graph) IncidentEdges(v int) []int { return g.incident[v] }

// Degree returns the number of edges incident to v, counting self-loops once.
func (g *Graph) Degree(v int) int { return len(g.incident[v]) }

// Neighbors returns the opposite endpoints of all edges incident to v.
// Parallel edges produce repeated entries; self-loops produce v itself.
func (g *Graph) Neighbors(v int) []int {
	out := make([]int, 0, len(g.incident[v]))
	for _, ei := range g.incident[v] {
		out = append(out, g.edges[ei].Opposite(v))
	}
	return out
}

// Validate checks internal consistency: every edge endpoint must refer to
// an existing node. Returns ErrInvalidEdgeEndpoint on the first violation.
func (g *Graph) Validate() error {
	for i, e := range g.edges {
		if e.Source < 0 || e.Source >= len(g.nodes) || e.Target < 0 || e.Target >= len(g.nodes) {
			return fmt.Errorf("edge %d: %w", i, ErrInvalidEdgeEndpoint)
		}
	}
	return nil
}

// Clone returns a deep copy of the graph.
func (g *Graph) Clone() *Graph {
	out := &Graph{
		nodes:    make([]Node, len(g.nodes)),
		edges:    make([]Edge, len(g.edges)),
		incident: make([][]int, len(g.incident)),
	}
	copy(out.nodes, g.nodes)
	copy(out.edges, g.edges)
	for v, inc := range g.incident {
		out.incident[v] = append([]int(nil), inc...)
	}
	return out
}
