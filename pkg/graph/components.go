package graph

// Component is one connected component extracted by
// [Graph.ConnectedComponents]: a standalone subgraph plus index maps back
// to the graph it was extracted from.
type Component struct {
	Graph *Graph

	// GlobalNode maps local node index -> node index in the source graph.
	GlobalNode []int

	// GlobalEdge maps local edge index -> edge index in the source graph.
	GlobalEdge []int
}

// NodeRef locates a source-graph node inside the component decomposition.
type NodeRef struct {
	Component int // index into the slice returned by ConnectedComponents
	Node      int // local node index within that component
}

// IsConnected reports whether the graph is connected. The empty graph and
// single-node graphs count as connected. Edge direction is ignored.
func (g *Graph) IsConnected() bool {
	if len(g.nodes) <= 1 {
		return true
	}
	visited := make([]bool, len(g.nodes))
	count := g.bfs(0, visited, nil)
	return count == len(g.nodes)
}

// ConnectedComponents splits the graph into connected components.
// The second result maps every source node index to its location in the
// decomposition. Components come out in order of their smallest node
// index, and node order within a component follows BFS discovery order.
func (g *Graph) ConnectedComponents() ([]Component, []NodeRef) {
	refs := make([]NodeRef, len(g.nodes))
	visited := make([]bool, len(g.nodes))
	var comps []Component

	var order []int
	for start := range g.nodes {
		if visited[start] {
			continue
		}
		order = order[:0]
		g.bfs(start, visited, &order)

		comp := Component{
			Graph:      New(len(order), 0),
			GlobalNode: append([]int(nil), order...),
		}
		ci := len(comps)
		for local, global := range order {
			comp.Graph.AddNode(g.nodes[global])
			refs[global] = NodeRef{Component: ci, Node: local}
		}
		for _, global := range order {
			for _, ei := range g.incident[global] {
				e := g.edges[ei]
				// Visit each edge once, from its source endpoint.
				if e.Source != global {
					continue
				}
				local := Edge{
					Source: refs[e.Source].Node,
					Target: refs[e.Target].Node,
					Weight: e.Weight,
				}
				if _, err := comp.Graph.AddEdge(local); err == nil {
					comp.GlobalEdge = append(comp.GlobalEdge, ei)
				}
			}
		}
		comps = append(comps, comp)
	}
	return comps, refs
}

// bfs visits the component containing start, marking visited nodes and
// optionally recording discovery order. Returns the number of nodes seen.
func (g *Graph) bfs(start int, visited []bool, order *[]int) int {
	queue := []int{start}
	visited[start] = true
	count := 0
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		count++
		if order != nil {
			*order = append(*order, v)
		}
		for _, ei := range g.incident[v] {
			w := g.edges[ei].Opposite(v)
			if !visited[w] {
				visited[w] = true
				queue = append(queue, w)
			}
		}
	}
	return count
}
