package graph

// SimpleResult describes a simplified copy of a multigraph produced by
// [Graph.MakeSimple], together with bidirectional edge maps back to the
// original. Node indices are preserved one-to-one, so no node map is
// needed: index v in the simple graph is index v in the original.
type SimpleResult struct {
	Graph *Graph

	// EdgeToOriginal maps each simple-graph edge index to the first
	// original edge of its parallel class.
	EdgeToOriginal []int

	// OriginalToSimple maps each original edge index to its representative
	// in the simple graph, or -1 for dropped self-loops.
	OriginalToSimple []int
}

// IsSimple reports whether the graph has neither self-loops nor parallel
// edges. Parallel detection treats edges as unordered pairs.
func (g *Graph) IsSimple() bool {
	seen := make(map[[2]int]struct{}, len(g.edges))
	for _, e := range g.edges {
		if e.IsSelfLoop() {
			return false
		}
		key := pairKey(e.Source, e.Target)
		if _, dup := seen[key]; dup {
			return false
		}
		seen[key] = struct{}{}
	}
	return true
}

// MakeSimple returns a simplified copy of the graph: self-loops are
// dropped and each class of parallel edges collapses to a single edge
// carrying the weight of the first member. Node indices are preserved.
//
// Downstream weight or position lookups on the simple graph should be
// redirected through the returned edge maps so results stay expressed in
// terms of the caller's original edges.
func (g *Graph) MakeSimple() SimpleResult {
	out := New(len(g.nodes), len(g.edges))
	for _, n := range g.nodes {
		out.AddNode(n)
	}

	res := SimpleResult{
		Graph:            out,
		OriginalToSimple: make([]int, len(g.edges)),
	}
	rep := make(map[[2]int]int, len(g.edges)) // unordered pair -> simple edge index
	for i, e := range g.edges {
		if e.IsSelfLoop() {
			res.OriginalToSimple[i] = -1
			continue
		}
		key := pairKey(e.Source, e.Target)
		if si, ok := rep[key]; ok {
			res.OriginalToSimple[i] = si
			continue
		}
		si, _ := out.AddEdge(e)
		rep[key] = si
		res.OriginalToSimple[i] = si
		res.EdgeToOriginal = append(res.EdgeToOriginal, i)
	}
	return res
}

func pairKey(a, b int) [2]int {
	if a > b {
		a, b = b, a
	}
	return [2]int{a, b}
}
