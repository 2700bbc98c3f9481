package fmmm

import (
	"math"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/spatial/r2"
)

// thresholdIterationCap bounds the force loop when the stop criterion is
// threshold-only, so a threshold the forces never reach cannot spin forever.
const thresholdIterationCap = 10000

// zigzagAngle is the initial fold angle of the chain fast path; the
// smoothing rounds relax it afterwards.
const zigzagAngle = math.Pi / 6

// solver runs the spring/repulsion iteration on a single level.
type solver struct {
	opts   *Options
	guard  *StabilityGuard
	kernel repulsionKernel
}

func newSolver(opts *Options, guard *StabilityGuard) *solver {
	return &solver{
		opts:   opts,
		guard:  guard,
		kernel: repulsionKernel{guard: guard, gridQuotient: opts.FRGridQuotient},
	}
}

// initialPlacement seeds positions on the coarsest level. The reproducible
// random mode derives its seed from RandSeed and the level number, so the
// same configuration scatters identically on every run.
func (s *solver) initialPlacement(lv *level, levelNr int) {
	n := lv.graph.NodeCount()
	avg := lv.averageIdealEdgeLength(s.opts.UnitEdgeLength)
	boxLength := math.Sqrt(float64(n)) * avg

	switch s.opts.InitialPlacementForces {
	case PlacementKeepPositions:
		// Positions carried on the level already.
	case PlacementUniformGrid:
		cols := int(math.Ceil(math.Sqrt(float64(n))))
		for v := range lv.node {
			lv.node[v].pos = r2.Vec{X: float64(v%cols) * avg, Y: float64(v/cols) * avg}
		}
	case PlacementRandomTime:
		s.scatter(lv, boxLength, rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), uint64(n+1))))
	default: // PlacementRandomRandIterNr
		seed := s.opts.RandSeed + uint64(levelNr)
		s.scatter(lv, boxLength, rand.New(rand.NewPCG(seed, seed^0xbb67ae8584caa73b)))
	}
	for v := range lv.node {
		lv.node[v].placed = true
	}
}

func (s *solver) scatter(lv *level, boxLength float64, rng *rand.Rand) {
	for v := range lv.node {
		lv.node[v].pos = r2.Vec{X: rng.Float64() * boxLength, Y: rng.Float64() * boxLength}
	}
}

// iterationBudget returns the iteration count for levelNr in a pyramid
// whose coarsest level is maxLevel.
func (s *solver) iterationBudget(levelNr, maxLevel int) int {
	fixed := s.opts.FixedIterations
	switch s.opts.MaxIterChange {
	case IterChangeLinearlyDecreasing:
		if maxLevel == 0 {
			return fixed
		}
		top := s.opts.MaxIterFactor * fixed
		return fixed + (top-fixed)*levelNr/maxLevel
	case IterChangeRapidlyDecreasing:
		budget := s.opts.MaxIterFactor * fixed
		for l := maxLevel; l > levelNr; l-- {
			budget = max(fixed, budget/2)
		}
		return budget
	default:
		return fixed
	}
}

// run executes the main force iteration on one level.
func (s *solver) run(lv *level, budget int) {
	s.iterate(lv, budget, s.opts.SpringStrength, s.opts.RepForcesStrength, s.opts.ForceScalingFactor)
}

// postProcess runs the fine-tuning rounds on the finest level with the
// post-processing strengths and a reduced step size.
func (s *solver) postProcess(lv *level) {
	if s.opts.FineTuningIterations <= 0 {
		return
	}
	rep := s.opts.PostStrengthOfRepForces
	if s.opts.AdjustPostRepStrengthDynamically {
		rep = 0.06*math.Log(float64(lv.graph.NodeCount())) + 0.5
	}
	s.iterate(lv, s.opts.FineTuningIterations, s.opts.PostSpringStrength, rep,
		s.opts.ForceScalingFactor*s.opts.FineTuneScalar)
}

// iterate is the shared force loop. Each round computes repulsive forces
// (scaled by repStrength times the squared average ideal edge length),
// adds spring forces, then moves every node by the scaled net force with
// the per-step displacement clamped to one average edge length.
func (s *solver) iterate(lv *level, budget int, springStrength, repStrength, scaling float64) {
	n := lv.graph.NodeCount()
	if n <= 1 {
		return
	}
	avg := lv.averageIdealEdgeLength(s.opts.UnitEdgeLength)
	s.guard.SetScale(avg)

	pos := make([]r2.Vec, n)
	forces := make([]r2.Vec, n)
	for v := range lv.node {
		pos[v] = lv.node[v].pos
	}

	repScale := repStrength * avg * avg
	maxBudget := budget
	if s.opts.StopCriterion == StopThreshold {
		maxBudget = thresholdIterationCap
	}

	cool := 1.0
	for it := 0; it < maxBudget; it++ {
		for i := range forces {
			forces[i] = r2.Vec{}
		}
		if repStrength > 0 {
			s.kernel.compute(s.opts.RepulsiveForcesCalculation, pos, forces)
			for i := range forces {
				forces[i] = r2.Scale(repScale, forces[i])
			}
		}
		s.addSpringForces(lv, pos, forces, springStrength, avg)

		moveSum := 0.0
		for v := range pos {
			mv := r2.Scale(scaling*cool, forces[v])
			l := math.Hypot(mv.X, mv.Y)
			if l > avg {
				mv = r2.Scale(avg/l, mv)
				l = avg
			}
			pos[v] = r2.Add(pos[v], mv)
			moveSum += l
		}
		if s.opts.CoolTemperature {
			cool *= s.opts.CoolValue
		}

		avgMove := moveSum / float64(n) / avg
		if s.opts.StopCriterion != StopFixedIterations && avgMove < s.opts.Threshold {
			break
		}
	}

	for v := range lv.node {
		lv.node[v].pos = pos[v]
	}
}

// addSpringForces accumulates the attractive term of the configured force
// model over all non-loop edges.
func (s *solver) addSpringForces(lv *level, pos, forces []r2.Vec, strength, avg float64) {
	if strength == 0 {
		return
	}
	for ei := range lv.edge {
		e := lv.graph.Edge(ei)
		if e.IsSelfLoop() {
			continue
		}
		d := r2.Sub(pos[e.Target], pos[e.Source])
		dist := math.Hypot(d.X, d.Y)
		var rescue r2.Vec
		if s.guard.NearMachinePrecision(dist, &rescue) {
			forces[e.Source] = r2.Sub(forces[e.Source], rescue)
			forces[e.Target] = r2.Add(forces[e.Target], rescue)
			continue
		}
		ideal := lv.edge[ei].length
		if ideal <= 0 {
			ideal = avg
		}
		mag := s.springMagnitude(dist, ideal)
		f := r2.Scale(strength*mag/dist, d)
		forces[e.Source] = r2.Add(forces[e.Source], f)
		forces[e.Target] = r2.Sub(forces[e.Target], f)
	}
}

// springMagnitude is the signed attraction at distance dist for an edge of
// the given ideal length. Positive values pull the endpoints together.
func (s *solver) springMagnitude(dist, ideal float64) float64 {
	switch s.opts.ForceModel {
	case ModelFruchtermanReingold:
		return dist * dist / ideal
	case ModelEades:
		return 2 * math.Log(dist/ideal)
	default: // ModelNew
		return dist * math.Log2(dist/ideal) / ideal
	}
}

// resize scales the drawing about its centroid so the realized average
// edge length equals ResizingScalar times the unit edge length.
func (s *solver) resize(lv *level) {
	sum, count := 0.0, 0
	for ei := range lv.edge {
		e := lv.graph.Edge(ei)
		if e.IsSelfLoop() {
			continue
		}
		d := r2.Sub(lv.node[e.Target].pos, lv.node[e.Source].pos)
		sum += math.Hypot(d.X, d.Y)
		count++
	}
	if count == 0 || sum <= 0 {
		return
	}
	actual := sum / float64(count)
	factor := s.opts.ResizingScalar * s.opts.UnitEdgeLength / actual

	var c r2.Vec
	for v := range lv.node {
		c = r2.Add(c, lv.node[v].pos)
	}
	c = r2.Scale(1/float64(len(lv.node)), c)
	for v := range lv.node {
		lv.node[v].pos = r2.Add(c, r2.Scale(factor, r2.Sub(lv.node[v].pos, c)))
	}
}

// layoutChainOrCycle is the fast path for graphs whose nodes all have
// degree two or less: cycles go on a circle whose circumference realizes
// all ideal edge lengths, chains start as a zigzag that the smoothing
// rounds relax toward a straight line. Reports whether it applied.
func (s *solver) layoutChainOrCycle(lv *level) bool {
	n := lv.graph.NodeCount()
	if n < 2 {
		return false
	}
	start := -1
	for v := 0; v < n; v++ {
		switch d := lv.graph.Degree(v); {
		case d > 2:
			return false
		case d < 2 && start < 0:
			start = v
		}
	}

	isCycle := start < 0
	if isCycle {
		start = 0
	}
	nodes, edges := lv.walk(start)
	if isCycle {
		// The walk closes the cycle; drop the repeated start node.
		nodes = nodes[:len(nodes)-1]
	}
	if len(nodes) != n {
		return false
	}

	if isCycle {
		total := 0.0
		for _, ei := range edges {
			total += math.Max(lv.edge[ei].length, 1)
		}
		radius := total / (2 * math.Pi)
		arc := 0.0
		for i, v := range nodes {
			angle := 2 * math.Pi * arc / total
			lv.node[v].pos = r2.Vec{X: radius * math.Cos(angle), Y: radius * math.Sin(angle)}
			lv.node[v].placed = true
			if i < len(edges) {
				arc += math.Max(lv.edge[edges[i]].length, 1)
			}
		}
		return true
	}

	lv.node[nodes[0]].pos = r2.Vec{}
	lv.node[nodes[0]].placed = true
	sign := 1.0
	for i := 1; i < len(nodes); i++ {
		step := math.Max(lv.edge[edges[i-1]].length, 1)
		prev := lv.node[nodes[i-1]].pos
		lv.node[nodes[i]].pos = r2.Add(prev, r2.Vec{
			X: step * math.Cos(sign*zigzagAngle),
			Y: step * math.Sin(sign*zigzagAngle),
		})
		lv.node[nodes[i]].placed = true
		sign = -sign
	}

	for round := 0; round < s.opts.NumberOfChainSmoothingRounds; round++ {
		for i := 1; i < len(nodes)-1; i++ {
			mid := r2.Scale(0.5, r2.Add(lv.node[nodes[i-1]].pos, lv.node[nodes[i+1]].pos))
			lv.node[nodes[i]].pos = r2.Scale(0.5, r2.Add(lv.node[nodes[i]].pos, mid))
		}
	}
	return true
}

// walk traverses from start along unvisited edges until stuck, returning
// the node and edge sequence. On a cycle the final node equals start.
func (lv *level) walk(start int) (nodes, edges []int) {
	visited := make([]bool, len(lv.edge))
	nodes = append(nodes, start)
	cur := start
	for {
		next, nextEdge := -1, -1
		for _, ei := range lv.graph.IncidentEdges(cur) {
			if visited[ei] {
				continue
			}
			visited[ei] = true
			next, nextEdge = lv.graph.Edge(ei).Opposite(cur), ei
			break
		}
		if next < 0 {
			return nodes, edges
		}
		nodes = append(nodes, next)
		edges = append(edges, nextEdge)
		if next == start {
			return nodes, edges
		}
		cur = next
	}
}
