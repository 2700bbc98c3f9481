package fmmm

import (
	"github.com/okanele/orrery/pkg/graph"
)

// layoutComponent computes positions for one connected component and
// writes them onto the component graph's nodes. The component may contain
// self-loops and parallel edges; the engine works on a simplified copy and
// maps results back through the preserved node indices.
func layoutComponent(opts *Options, comp *graph.Graph, seed uint64) error {
	n := comp.NodeCount()
	switch n {
	case 0:
		return nil
	case 1:
		nd := comp.Node(0)
		nd.X, nd.Y = 0, 0
		return nil
	}

	sr := comp.MakeSimple()
	base := newLevel(sr.Graph)
	assignIdealEdgeLengths(opts, comp, sr, base)

	guard := NewStabilityGuard(seed)
	sol := newSolver(opts, guard)

	laid := false
	if opts.UseSimpleAlgorithmForChainsAndCycles {
		laid = sol.layoutChainOrCycle(base)
	}
	if !laid {
		ml := newMultilevel(opts, seed, guard)
		ml.build(base)
		top := len(ml.levels) - 1
		sol.initialPlacement(ml.levels[top], top)
		sol.run(ml.levels[top], sol.iterationBudget(top, top))
		for k := top - 1; k >= 0; k-- {
			ml.placeLevel(k)
			sol.run(ml.levels[k], sol.iterationBudget(k, top))
		}
		sol.postProcess(base)
	}
	if opts.ResizeDrawing {
		sol.resize(base)
	}

	for v := 0; v < n; v++ {
		nd := comp.Node(v)
		nd.X, nd.Y = base.node[v].pos.X, base.node[v].pos.Y
	}
	return nil
}

// assignIdealEdgeLengths fills the base level's ideal lengths. Each simple
// edge gets the mean weight of its parallel class (zero weights count as
// one) times the unit edge length; the bounding-circle measurement then
// lengthens edges by their endpoints' radii so wide nodes keep clearance.
func assignIdealEdgeLengths(opts *Options, orig *graph.Graph, sr graph.SimpleResult, base *level) {
	sums := make([]float64, len(base.edge))
	counts := make([]int, len(base.edge))
	for i := 0; i < orig.EdgeCount(); i++ {
		si := sr.OriginalToSimple[i]
		if si < 0 {
			continue
		}
		w := orig.Edge(i).Weight
		if w <= 0 {
			w = 1
		}
		sums[si] += w
		counts[si]++
	}

	for ei := range base.edge {
		w := 1.0
		if counts[ei] > 0 {
			w = sums[ei] / float64(counts[ei])
		}
		length := w * opts.UnitEdgeLength
		if opts.EdgeLengthMeasurement == MeasureBoundingCircle {
			e := base.graph.Edge(ei)
			length += base.radius(e.Source) + base.radius(e.Target)
		}
		base.edge[ei].length = length
		base.edge[ei].originalEdge = sr.EdgeToOriginal[ei]
	}
}
