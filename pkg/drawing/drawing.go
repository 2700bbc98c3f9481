// Package drawing defines the serialization format for finished layouts.
//
// A Drawing is the canonical output of the layout engine: the graph
// structure together with final node positions and the canvas rectangle.
// The format is human-readable JSON designed for round-trip fidelity:
// layout → export → re-import → render produces identical results. BSON
// tags support document storage.
package drawing

import (
	"encoding/json"
	"math"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/okanele/orrery/pkg/errors"
	"github.com/okanele/orrery/pkg/graph"
)

// Node is a serialized node with its final position.
type Node struct {
	ID     int     `json:"id" bson:"id"`
	Label  string  `json:"label,omitempty" bson:"label,omitempty"`
	X      float64 `json:"x" bson:"x"`
	Y      float64 `json:"y" bson:"y"`
	Width  float64 `json:"width,omitempty" bson:"width,omitempty"`
	Height float64 `json:"height,omitempty" bson:"height,omitempty"`
}

// Edge is a serialized connection between two node IDs.
type Edge struct {
	Source int     `json:"source" bson:"source"`
	Target int     `json:"target" bson:"target"`
	Weight float64 `json:"weight,omitempty" bson:"weight,omitempty"`
}

// Drawing is a laid-out graph ready for storage or rendering.
type Drawing struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty" bson:"created_at,omitempty"`

	// Canvas extent; positions live inside [0,Width]×[0,Height] for
	// disconnected inputs, or wherever the forces settled otherwise.
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`

	// Seed reproduces the layout when re-run with the same options.
	Seed uint64 `json:"seed,omitempty" bson:"seed,omitempty"`

	Nodes []Node `json:"nodes" bson:"nodes"`
	Edges []Edge `json:"edges,omitempty" bson:"edges,omitempty"`
}

// NewID returns a fresh drawing identifier.
func NewID() string { return uuid.NewString() }

// FromGraph captures a laid-out graph as a Drawing. Node IDs are the
// graph's dense indices, so the mapping back is the identity.
func FromGraph(g *graph.Graph, width, height float64, seed uint64) Drawing {
	d := Drawing{
		ID:        NewID(),
		CreatedAt: time.Now().UTC(),
		Width:     width,
		Height:    height,
		Seed:      seed,
		Nodes:     make([]Node, g.NodeCount()),
		Edges:     make([]Edge, g.EdgeCount()),
	}
	for v := 0; v < g.NodeCount(); v++ {
		n := g.Node(v)
		d.Nodes[v] = Node{
			ID:     v,
			Label:  n.Label,
			X:      n.X,
			Y:      n.Y,
			Width:  n.Width,
			Height: n.Height,
		}
	}
	for e := 0; e < g.EdgeCount(); e++ {
		ed := g.Edge(e)
		d.Edges[e] = Edge{Source: ed.Source, Target: ed.Target, Weight: ed.Weight}
	}
	return d
}

// ToGraph reconstructs the graph with positions applied. Node IDs must be
// the dense range 0..len(Nodes)-1.
func (d *Drawing) ToGraph() (*graph.Graph, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	g := graph.New(len(d.Nodes), len(d.Edges))
	for _, n := range d.Nodes {
		g.AddNode(graph.Node{
			Label:  n.Label,
			Width:  n.Width,
			Height: n.Height,
			X:      n.X,
			Y:      n.Y,
		})
	}
	for i, e := range d.Edges {
		if _, err := g.AddEdge(graph.Edge{Source: e.Source, Target: e.Target, Weight: e.Weight}); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidDrawing, err, "edge %d", i)
		}
	}
	return g, nil
}

// Validate checks structural consistency: dense node IDs, finite
// coordinates, in-range edge endpoints and non-negative canvas extents.
func (d *Drawing) Validate() error {
	if d.Width < 0 || d.Height < 0 {
		return errors.New(errors.ErrCodeInvalidDrawing,
			"canvas extent %gx%g must not be negative", d.Width, d.Height)
	}
	for i, n := range d.Nodes {
		if n.ID != i {
			return errors.New(errors.ErrCodeInvalidDrawing,
				"node at position %d has id %d, want dense ids", i, n.ID)
		}
		if !isFinite(n.X) || !isFinite(n.Y) {
			return errors.New(errors.ErrCodeInvalidDrawing,
				"node %d has non-finite position (%g, %g)", n.ID, n.X, n.Y)
		}
	}
	for i, e := range d.Edges {
		if e.Source < 0 || e.Source >= len(d.Nodes) || e.Target < 0 || e.Target >= len(d.Nodes) {
			return errors.New(errors.ErrCodeInvalidDrawing,
				"edge %d references node outside 0..%d", i, len(d.Nodes)-1)
		}
		if e.Weight < 0 {
			return errors.New(errors.ErrCodeInvalidDrawing,
				"edge %d has negative weight %g", i, e.Weight)
		}
	}
	return nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Marshal serializes a Drawing to pretty-printed JSON bytes.
func Marshal(d Drawing) ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// Unmarshal deserializes JSON bytes into a Drawing and validates it.
func Unmarshal(data []byte) (Drawing, error) {
	var d Drawing
	if err := json.Unmarshal(data, &d); err != nil {
		return Drawing{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "unmarshal drawing")
	}
	if err := d.Validate(); err != nil {
		return Drawing{}, err
	}
	return d, nil
}

// WriteFile writes a Drawing to a JSON file.
func WriteFile(d Drawing, path string) error {
	data, err := Marshal(d)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadFile reads a Drawing from a JSON file.
func ReadFile(path string) (Drawing, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Drawing{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "read %s", path)
		}
		return Drawing{}, errors.Wrap(errors.ErrCodeInternal, err, "read %s", path)
	}
	return Unmarshal(data)
}
