package fmmm

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/okanele/orrery/pkg/graph"
)

// nodeKind is a node's role in its level's solar-system partition.
type nodeKind uint8

const (
	kindUnspecified nodeKind = iota // only valid while coarsening is in flight
	kindSun
	kindPlanet
	kindPlanetWithMoons
	kindMoon
)

// edgeRole classifies a level's edges. The roles are set once during
// classification and only cleared by a full multilevel reset.
type edgeRole uint8

const (
	rolePlain edgeRole = iota
	roleMoon           // attaches a moon to its planet
	roleExtra          // synthetic inter-solar edge composed on a coarser level
)

// sectorEpsilon guards against degenerate (zero-width) placement sectors.
const sectorEpsilon = 1e-9

// nodeAttrs is the per-level mutable state of one node.
type nodeAttrs struct {
	pos           r2.Vec
	width, height float64

	// mass counts the finer-level nodes collapsed into this one.
	// Leaves start at 1; freshly created representatives at 0.
	mass int

	kind         nodeKind
	dedicatedSun int      // node index at this level; suns point to themselves
	sunDistance  float64  // ideal-length path distance to the dedicated sun
	dedicatedPM  int      // for moons: the planet-with-moons they attach to
	moons        []int    // for planets-with-moons only

	// Parallel lists: for each inter-solar edge touching this node, the
	// fractional split point toward the neighboring sun.
	lambdas      []float64
	neighborSuns []int

	lowerLevel  int // index of the represented node one level down, -1 if none
	higherLevel int // index of the representative one level up, -1 if none

	// Placement sector [angle1, angle2); invariant: never degenerate.
	angle1, angle2 float64

	placed bool
}

// setSector stores a placement sector, widening it to a half circle when
// the bounds (nearly) coincide so the sector is never degenerate.
func (a *nodeAttrs) setSector(a1, a2 float64) {
	if math.Abs(a2-a1) < sectorEpsilon {
		a2 = a1 + math.Pi
	}
	a.angle1, a.angle2 = a1, a2
}

// edgeAttrs is the per-level mutable state of one edge.
type edgeAttrs struct {
	length          float64 // ideal length for the force model
	originalEdge    int     // finest-level provenance, -1 if synthetic
	higherLevelEdge int     // counterpart one level up, -1 if none
	role            edgeRole
}

// level bundles one coarsening level: its own graph instance plus dense
// attribute arrays parallel to the graph's node and edge indices.
type level struct {
	graph *graph.Graph
	node  []nodeAttrs
	edge  []edgeAttrs
}

// newLevel wraps a graph with freshly initialized attributes. Node masses
// start at 1 (every node represents itself); link fields start at -1.
func newLevel(g *graph.Graph) *level {
	lv := &level{
		graph: g,
		node:  make([]nodeAttrs, g.NodeCount()),
		edge:  make([]edgeAttrs, g.EdgeCount()),
	}
	for v := range lv.node {
		n := g.Node(v)
		lv.node[v] = nodeAttrs{
			pos:          r2.Vec{X: n.X, Y: n.Y},
			width:        n.Width,
			height:       n.Height,
			mass:         1,
			dedicatedSun: -1,
			dedicatedPM:  -1,
			lowerLevel:   -1,
			higherLevel:  -1,
			angle1:       0,
			angle2:       2 * math.Pi,
		}
	}
	for e := range lv.edge {
		lv.edge[e] = edgeAttrs{
			originalEdge:    -1,
			higherLevelEdge: -1,
		}
	}
	return lv
}

// addNode appends a node to the level graph together with its attributes
// and returns the new index.
func (lv *level) addNode(n graph.Node, attrs nodeAttrs) int {
	v := lv.graph.AddNode(n)
	lv.node = append(lv.node, attrs)
	return v
}

// addEdge appends an edge with attributes; endpoints must exist.
func (lv *level) addEdge(e graph.Edge, attrs edgeAttrs) (int, error) {
	idx, err := lv.graph.AddEdge(e)
	if err != nil {
		return -1, err
	}
	lv.edge = append(lv.edge, attrs)
	return idx, nil
}

// radius returns the bounding-circle radius of node v.
func (lv *level) radius(v int) float64 {
	a := &lv.node[v]
	return math.Hypot(a.width, a.height) / 2
}

// averageIdealEdgeLength returns the mean ideal length over all edges, or
// fallback for edgeless graphs.
func (lv *level) averageIdealEdgeLength(fallback float64) float64 {
	if len(lv.edge) == 0 {
		return fallback
	}
	sum := 0.0
	for e := range lv.edge {
		sum += lv.edge[e].length
	}
	return sum / float64(len(lv.edge))
}
