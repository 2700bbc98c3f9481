package drawing

import (
	"math"
	"testing"

	"github.com/okanele/orrery/pkg/errors"
	"github.com/okanele/orrery/pkg/graph"
)

func sampleGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.New(3, 2)
	g.AddNode(graph.Node{Label: "a", X: 10, Y: 20, Width: 4, Height: 2})
	g.AddNode(graph.Node{Label: "b", X: 110, Y: 20})
	g.AddNode(graph.Node{Label: "c", X: 60, Y: 120})
	if _, err := g.AddEdge(graph.Edge{Source: 0, Target: 1, Weight: 2}); err != nil {
		t.Fatalf("AddEdge: %v", err)
	}
	if _, err := g.AddEdge(graph.Edge{Source: 1, Target: 2}); err != nil {
		t.Fatalf("AddEdge: %v", err)
	}
	return g
}

func TestRoundTripThroughJSON(t *testing.T) {
	g := sampleGraph(t)
	d := FromGraph(g, 200, 150, 7)
	if d.ID == "" {
		t.Error("FromGraph assigned no ID")
	}

	data, err := Marshal(d)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	back, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	g2, err := back.ToGraph()
	if err != nil {
		t.Fatalf("ToGraph: %v", err)
	}
	if g2.NodeCount() != g.NodeCount() || g2.EdgeCount() != g.EdgeCount() {
		t.Fatalf("round trip changed sizes: %d/%d nodes, %d/%d edges",
			g2.NodeCount(), g.NodeCount(), g2.EdgeCount(), g.EdgeCount())
	}
	for v := 0; v < g.NodeCount(); v++ {
		a, b := g.Node(v), g2.Node(v)
		if *a != *b {
			t.Errorf("node %d: %+v != %+v", v, *a, *b)
		}
	}
}

func TestValidateCatchesBadDrawings(t *testing.T) {
	base := FromGraph(sampleGraph(t), 200, 150, 7)

	tests := []struct {
		name   string
		mutate func(*Drawing)
	}{
		{"negative canvas", func(d *Drawing) { d.Width = -1 }},
		{"sparse node ids", func(d *Drawing) { d.Nodes[1].ID = 9 }},
		{"NaN position", func(d *Drawing) { d.Nodes[0].X = math.NaN() }},
		{"edge out of range", func(d *Drawing) { d.Edges[0].Target = 99 }},
		{"negative weight", func(d *Drawing) { d.Edges[0].Weight = -3 }},
	}
	for _, tt := range tests {
		d := base
		d.Nodes = append([]Node(nil), base.Nodes...)
		d.Edges = append([]Edge(nil), base.Edges...)
		tt.mutate(&d)
		if err := d.Validate(); !errors.Is(err, errors.ErrCodeInvalidDrawing) {
			t.Errorf("%s: Validate error = %v, want INVALID_DRAWING", tt.name, err)
		}
	}
}

func TestReadWriteFile(t *testing.T) {
	path := t.TempDir() + "/drawing.json"
	d := FromGraph(sampleGraph(t), 200, 150, 7)

	if err := WriteFile(d, path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	back, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if back.ID != d.ID || len(back.Nodes) != len(d.Nodes) {
		t.Errorf("file round trip lost data: %+v", back)
	}

	if _, err := ReadFile(path + ".missing"); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("ReadFile(missing) error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestUnmarshalRejectsGarbage(t *testing.T) {
	if _, err := Unmarshal([]byte("{not json")); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("Unmarshal garbage error = %v, want INVALID_FORMAT", err)
	}
}
