package graph

import (
	"errors"
	"testing"
)

func TestAddEdge_UnknownEndpoints(t *testing.T) {
	g := New(0, 0)
	g.AddNode(Node{})

	if _, err := g.AddEdge(Edge{Source: 5, Target: 0}); !errors.Is(err, ErrUnknownSourceNode) {
		t.Errorf("AddEdge() error = %v, want ErrUnknownSourceNode", err)
	}
	if _, err := g.AddEdge(Edge{Source: 0, Target: -1}); !errors.Is(err, ErrUnknownTargetNode) {
		t.Errorf("AddEdge() error = %v, want ErrUnknownTargetNode", err)
	}
	if _, err := g.AddEdge(Edge{Source: 0, Target: 0, Weight: -2}); !errors.Is(err, ErrNegativeWeight) {
		t.Errorf("AddEdge() error = %v, want ErrNegativeWeight", err)
	}
}

func TestDegreeAndNeighbors(t *testing.T) {
	g := New(3, 3)
	a := g.AddNode(Node{})
	b := g.AddNode(Node{})
	c := g.AddNode(Node{})
	g.AddEdge(Edge{Source: a, Target: b})
	g.AddEdge(Edge{Source: a, Target: c})
	g.AddEdge(Edge{Source: a, Target: a}) // self-loop

	if got := g.Degree(a); got != 3 {
		t.Errorf("Degree(a) = %d, want 3", got)
	}
	if got := g.Degree(b); got != 1 {
		t.Errorf("Degree(b) = %d, want 1", got)
	}

	nbrs := g.Neighbors(a)
	if len(nbrs) != 3 {
		t.Fatalf("Neighbors(a) = %v, want 3 entries", nbrs)
	}
	if nbrs[0] != b || nbrs[1] != c || nbrs[2] != a {
		t.Errorf("Neighbors(a) = %v, want [b c a] = [1 2 0]", nbrs)
	}
}

func TestIsSimple(t *testing.T) {
	g := New(2, 2)
	a := g.AddNode(Node{})
	b := g.AddNode(Node{})
	g.AddEdge(Edge{Source: a, Target: b})

	if !g.IsSimple() {
		t.Error("single-edge graph should be simple")
	}

	g.AddEdge(Edge{Source: b, Target: a}) // parallel (unordered)
	if g.IsSimple() {
		t.Error("parallel edges should make the graph non-simple")
	}
}

func TestMakeSimple(t *testing.T) {
	g := New(3, 5)
	a := g.AddNode(Node{})
	b := g.AddNode(Node{})
	c := g.AddNode(Node{})
	g.AddEdge(Edge{Source: a, Target: b, Weight: 2}) // 0: kept
	g.AddEdge(Edge{Source: b, Target: a, Weight: 7}) // 1: parallel to 0
	g.AddEdge(Edge{Source: a, Target: a, Weight: 1}) // 2: self-loop, dropped
	g.AddEdge(Edge{Source: b, Target: c, Weight: 3}) // 3: kept

	res := g.MakeSimple()

	if res.Graph.NodeCount() != 3 {
		t.Errorf("NodeCount() = %d, want 3", res.Graph.NodeCount())
	}
	if res.Graph.EdgeCount() != 2 {
		t.Errorf("EdgeCount() = %d, want 2", res.Graph.EdgeCount())
	}
	if !res.Graph.IsSimple() {
		t.Error("MakeSimple() result should be simple")
	}

	wantOrig := []int{0, 3}
	for i, want := range wantOrig {
		if res.EdgeToOriginal[i] != want {
			t.Errorf("EdgeToOriginal[%d] = %d, want %d", i, res.EdgeToOriginal[i], want)
		}
	}
	wantSimple := []int{0, 0, -1, 1}
	for i, want := range wantSimple {
		if res.OriginalToSimple[i] != want {
			t.Errorf("OriginalToSimple[%d] = %d, want %d", i, res.OriginalToSimple[i], want)
		}
	}
	// Representative keeps the first parallel edge's weight.
	if got := res.Graph.Edge(0).Weight; got != 2 {
		t.Errorf("representative weight = %g, want 2", got)
	}
}

func TestIsConnected(t *testing.T) {
	g := New(3, 1)
	a := g.AddNode(Node{})
	b := g.AddNode(Node{})
	g.AddNode(Node{})
	g.AddEdge(Edge{Source: a, Target: b})

	if g.IsConnected() {
		t.Error("graph with isolated node should not be connected")
	}

	empty := New(0, 0)
	if !empty.IsConnected() {
		t.Error("empty graph counts as connected")
	}
}

func TestConnectedComponents(t *testing.T) {
	g := New(5, 3)
	a := g.AddNode(Node{Label: "a"})
	b := g.AddNode(Node{Label: "b"})
	c := g.AddNode(Node{Label: "c"})
	d := g.AddNode(Node{Label: "d"})
	e := g.AddNode(Node{Label: "e"})
	g.AddEdge(Edge{Source: a, Target: b, Weight: 1})
	g.AddEdge(Edge{Source: c, Target: d, Weight: 2})
	g.AddEdge(Edge{Source: d, Target: e, Weight: 3})

	comps, refs := g.ConnectedComponents()

	if len(comps) != 2 {
		t.Fatalf("got %d components, want 2", len(comps))
	}
	if comps[0].Graph.NodeCount() != 2 || comps[1].Graph.NodeCount() != 3 {
		t.Errorf("component sizes = %d/%d, want 2/3",
			comps[0].Graph.NodeCount(), comps[1].Graph.NodeCount())
	}
	if comps[1].Graph.EdgeCount() != 2 {
		t.Errorf("second component EdgeCount() = %d, want 2", comps[1].Graph.EdgeCount())
	}

	// Round trip: global -> (component, local) -> global.
	for global := 0; global < g.NodeCount(); global++ {
		ref := refs[global]
		back := comps[ref.Component].GlobalNode[ref.Node]
		if back != global {
			t.Errorf("node %d round-trips to %d", global, back)
		}
	}

	// Edge maps point at edges with matching weight.
	for _, comp := range comps {
		for local, global := range comp.GlobalEdge {
			if comp.Graph.Edge(local).Weight != g.Edge(global).Weight {
				t.Errorf("edge weight mismatch local=%d global=%d", local, global)
			}
		}
	}
}

func TestClone_Independent(t *testing.T) {
	g := New(2, 1)
	a := g.AddNode(Node{Label: "a"})
	b := g.AddNode(Node{Label: "b"})
	g.AddEdge(Edge{Source: a, Target: b})

	clone := g.Clone()
	clone.Node(0).Label = "changed"
	clone.AddNode(Node{})

	if g.Node(0).Label != "a" {
		t.Error("mutating clone node leaked into original")
	}
	if g.NodeCount() != 2 {
		t.Errorf("NodeCount() = %d, want 2", g.NodeCount())
	}
}
