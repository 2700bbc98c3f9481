package fmmm

import (
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/okanele/orrery/pkg/graph"
)

// Coarsening stops once edge counts stop shrinking: a level is "good" when
// it has at most edgeShrinkFactor times the edges of its predecessor, and
// at most maxBadLevels consecutive bad levels are tolerated.
const (
	edgeShrinkFactor = 0.8
	maxBadLevels     = 5
)

// maxSectorSamples bounds the neighbor directions examined when deriving a
// placement sector.
const maxSectorSamples = 10

// waggleFactor scales the random orthogonal offset applied to triangulated
// candidate positions, proportional to the anchor distance.
const waggleFactor = 0.05

// multilevel builds the coarsening pyramid for one connected simple graph
// and lifts placements back down. A single RNG instance is seeded once per
// run; all random choices throughout coarsening and placement draw from it
// sequentially, which makes reruns with equal seeds bit-identical.
type multilevel struct {
	opts   *Options
	rng    *rand.Rand
	guard  *StabilityGuard
	levels []*level

	badLevels int
}

func newMultilevel(opts *Options, seed uint64, guard *StabilityGuard) *multilevel {
	return &multilevel{
		opts:  opts,
		rng:   rand.New(rand.NewPCG(seed, seed^0x6a09e667f3bcc909)),
		guard: guard,
	}
}

// build constructs the pyramid bottom-up starting from base (level 0).
// With SingleLevel set, the pyramid is just the base.
func (m *multilevel) build(base *level) {
	m.levels = []*level{base}
	m.badLevels = 0
	if m.opts.SingleLevel {
		return
	}
	for m.keepCoarsening() {
		fine := m.levels[len(m.levels)-1]
		coarse := m.coarsen(fine)
		if coarse.graph.NodeCount() >= fine.graph.NodeCount() {
			break // no progress; degenerate partition
		}
		m.levels = append(m.levels, coarse)
	}
}

// keepCoarsening applies the termination guard: the current top level must
// still be larger than MinGraphSize, and edge counts must shrink linearly —
// a level whose edge count exceeds edgeShrinkFactor times its predecessor's
// is "bad", and only maxBadLevels consecutive bad levels are allowed.
func (m *multilevel) keepCoarsening() bool {
	top := len(m.levels) - 1
	if m.levels[top].graph.NodeCount() <= m.opts.MinGraphSize {
		return false
	}
	if top == 0 {
		return true
	}
	prev, cur := m.levels[top-1], m.levels[top]
	if float64(cur.graph.EdgeCount()) <= edgeShrinkFactor*float64(prev.graph.EdgeCount()) {
		m.badLevels = 0
		return true
	}
	m.badLevels++
	return m.badLevels <= maxBadLevels
}

// coarsen builds the next-coarser level from fine: partition fine into
// solar systems, collapse each system to one representative, compose
// inter-solar edges and merge parallels.
func (m *multilevel) coarsen(fine *level) *level {
	suns := m.partitionGalaxy(fine)

	coarse := &level{graph: graph.New(len(suns), 0)}
	for _, s := range suns {
		fa := &fine.node[s]
		rep := coarse.addNode(graph.Node{
			Width:  fa.width,
			Height: fa.height,
			X:      fa.pos.X,
			Y:      fa.pos.Y,
		}, nodeAttrs{
			pos:          fa.pos,
			width:        fa.width,
			height:       fa.height,
			mass:         0, // recomputed below
			dedicatedSun: -1,
			dedicatedPM:  -1,
			lowerLevel:   s,
			higherLevel:  -1,
			angle1:       0,
			angle2:       2 * math.Pi,
		})
		fa.higherLevel = rep
	}

	// Mass propagation: every fine node counts toward the representative
	// of its dedicated sun, so coarse masses sum to |V_fine|.
	for v := range fine.node {
		rep := fine.node[fine.node[v].dedicatedSun].higherLevel
		coarse.node[rep].mass++
	}

	m.composeEdges(fine, coarse)
	return coarse
}

// partitionGalaxy classifies every fine node as sun, planet, planet-with-
// moons or moon, and returns the suns in selection order.
func (m *multilevel) partitionGalaxy(fine *level) []int {
	n := fine.graph.NodeCount()
	set := NewSamplingSetWithMass(n, func(v int) int { return fine.node[v].mass }, m.rng)

	var suns []int
	for !set.IsEmpty() {
		sun := m.drawSun(set)
		fa := &fine.node[sun]
		fa.kind = kindSun
		fa.dedicatedSun = sun
		fa.sunDistance = 0
		suns = append(suns, sun)

		// Direct neighbors become planets of this sun.
		var planets []int
		for _, ei := range fine.graph.IncidentEdges(sun) {
			w := fine.graph.Edge(ei).Opposite(sun)
			if fine.node[w].kind != kindUnspecified {
				continue
			}
			wa := &fine.node[w]
			wa.kind = kindPlanet
			wa.dedicatedSun = sun
			wa.sunDistance = fine.edge[ei].length
			set.Delete(w)
			planets = append(planets, w)
		}

		// Unclassified neighbors of the new planets are candidate moons;
		// remove them from the candidate set so they cannot become suns
		// this round.
		for _, p := range planets {
			for _, w := range fine.graph.Neighbors(p) {
				if fine.node[w].kind == kindUnspecified {
					set.Delete(w)
				}
			}
		}
	}

	// Everything still unspecified becomes a moon of its nearest adjacent
	// planet (by edge length).
	for v := range fine.node {
		if fine.node[v].kind == kindUnspecified {
			m.assignMoon(fine, v)
		}
	}
	return suns
}

// drawSun picks the next sun according to the configured galaxy choice.
// The drawn node is removed from the set by the sampling call itself.
func (m *multilevel) drawSun(set *SamplingSet) int {
	var sun int
	switch m.opts.GalaxyChoice {
	case ChoiceNonUniformProbLowerMass:
		sun, _ = set.RandomNodeWithLowestStarMass(m.opts.NumberRandomTries)
	case ChoiceNonUniformProbHigherMass:
		sun, _ = set.RandomNodeWithHighestStarMass(m.opts.NumberRandomTries)
	default:
		sun, _ = set.RandomNode()
	}
	return sun
}

// assignMoon attaches the unclassified node v to the nearest adjacent
// planet, reclassifying that planet as planet-with-moons. Nodes with no
// planet in reach fall back to planet (adjacent sun) or a fresh sun.
func (m *multilevel) assignMoon(fine *level, v int) {
	bestEdge, bestPlanet := -1, -1
	adjacentSun, sunEdge := -1, -1
	adjacentMoon := -1
	for _, ei := range fine.graph.IncidentEdges(v) {
		w := fine.graph.Edge(ei).Opposite(v)
		switch fine.node[w].kind {
		case kindPlanet, kindPlanetWithMoons:
			if bestEdge < 0 || fine.edge[ei].length < fine.edge[bestEdge].length {
				bestEdge, bestPlanet = ei, w
			}
		case kindSun:
			adjacentSun, sunEdge = w, ei
		case kindMoon:
			adjacentMoon = w
		}
	}

	a := &fine.node[v]
	switch {
	case bestPlanet >= 0:
		p := &fine.node[bestPlanet]
		if p.kind == kindPlanet {
			p.kind = kindPlanetWithMoons
		}
		p.moons = append(p.moons, v)
		fine.edge[bestEdge].role = roleMoon
		a.kind = kindMoon
		a.dedicatedPM = bestPlanet
		a.dedicatedSun = p.dedicatedSun
		a.sunDistance = p.sunDistance + fine.edge[bestEdge].length
	case adjacentSun >= 0:
		a.kind = kindPlanet
		a.dedicatedSun = adjacentSun
		a.sunDistance = fine.edge[sunEdge].length
	case adjacentMoon >= 0:
		// Chain of moons: attach to the neighbor moon's planet.
		pm := fine.node[adjacentMoon].dedicatedPM
		p := &fine.node[pm]
		p.moons = append(p.moons, v)
		a.kind = kindMoon
		a.dedicatedPM = pm
		a.dedicatedSun = p.dedicatedSun
		a.sunDistance = fine.node[adjacentMoon].sunDistance
	default:
		// Isolated in a connected graph cannot happen, but stay safe.
		a.kind = kindSun
		a.dedicatedSun = v
		a.sunDistance = 0
	}
}

// composedEdge is an inter-solar edge awaiting the parallel merge.
type composedEdge struct {
	u, v   int // coarse endpoints, u ≤ v
	length float64
	fine   []int // contributing fine edge indices
}

// composeEdges creates one coarse edge per class of fine edges whose
// endpoints belong to different suns. The composed length is
// sunDistance(source) + edge length + sunDistance(target); parallel
// composed edges between the same representative pair merge into one edge
// carrying the arithmetic mean of their lengths.
func (m *multilevel) composeEdges(fine, coarse *level) {
	var list []composedEdge
	for ei := range fine.edge {
		e := fine.graph.Edge(ei)
		su := fine.node[e.Source].dedicatedSun
		sv := fine.node[e.Target].dedicatedSun
		if su == sv {
			continue
		}
		length := fine.node[e.Source].sunDistance + fine.edge[ei].length + fine.node[e.Target].sunDistance

		// Record the split fraction and opposite sun on both endpoints for
		// placement interpolation later.
		lambdaU, lambdaV := 0.5, 0.5
		if length > 0 {
			lambdaU = fine.node[e.Source].sunDistance / length
			lambdaV = fine.node[e.Target].sunDistance / length
		}
		sa := &fine.node[e.Source]
		sa.lambdas = append(sa.lambdas, lambdaU)
		sa.neighborSuns = append(sa.neighborSuns, sv)
		ta := &fine.node[e.Target]
		ta.lambdas = append(ta.lambdas, lambdaV)
		ta.neighborSuns = append(ta.neighborSuns, su)

		ru := fine.node[su].higherLevel
		rv := fine.node[sv].higherLevel
		if ru > rv {
			ru, rv = rv, ru
		}
		list = append(list, composedEdge{u: ru, v: rv, length: length, fine: []int{ei}})
	}

	sort.Slice(list, func(i, j int) bool {
		if list[i].u != list[j].u {
			return list[i].u < list[j].u
		}
		return list[i].v < list[j].v
	})

	for i := 0; i < len(list); {
		head := list[i]
		j := i + 1
		for j < len(list) && list[j].u == head.u && list[j].v == head.v {
			head.length += list[j].length
			head.fine = append(head.fine, list[j].fine...)
			j++
		}
		head.length /= float64(j - i)

		idx, err := coarse.addEdge(graph.Edge{Source: head.u, Target: head.v, Weight: head.length}, edgeAttrs{
			length:          head.length,
			originalEdge:    -1,
			higherLevelEdge: -1,
			role:            roleExtra,
		})
		if err == nil {
			for _, fi := range head.fine {
				fine.edge[fi].higherLevelEdge = idx
			}
		}
		i = j
	}
}

// placeLevel seeds positions on level k from the laid-out level k+1:
// suns inherit their representative's position directly, then planets and
// moons are placed inside an angular sector around their sun, and
// planets-with-moons go last so their moons can serve as anchors.
func (m *multilevel) placeLevel(k int) {
	fine, coarse := m.levels[k], m.levels[k+1]

	sectors := make(map[int][2]float64, coarse.graph.NodeCount())
	for rep := range coarse.node {
		s := coarse.node[rep].lowerLevel
		fine.node[s].pos = coarse.node[rep].pos
		fine.node[s].placed = true
		sectors[s] = m.sunSector(coarse, rep)
	}

	for v := range fine.node {
		if kind := fine.node[v].kind; kind == kindPlanet || kind == kindMoon {
			m.placeNode(fine, v, sectors, false)
		}
	}
	for v := range fine.node {
		if fine.node[v].kind == kindPlanetWithMoons {
			m.placeNode(fine, v, sectors, true)
		}
	}
}

// sunSector derives the placement sector for all children of the sun
// represented by rep, from the representative's neighbors at the coarse
// level: no neighbors yields the full circle, exactly one the opposite
// half-plane, and otherwise the largest angular gap among up to
// maxSectorSamples neighbor directions (ties broken by sampling order).
func (m *multilevel) sunSector(coarse *level, rep int) [2]float64 {
	repPos := coarse.node[rep].pos
	var dirs []float64
	for _, ei := range coarse.graph.IncidentEdges(rep) {
		if len(dirs) == maxSectorSamples {
			break
		}
		w := coarse.graph.Edge(ei).Opposite(rep)
		if w == rep {
			continue
		}
		d := r2.Sub(coarse.node[w].pos, repPos)
		dirs = append(dirs, normalizeAngle(math.Atan2(d.Y, d.X)))
	}

	switch len(dirs) {
	case 0:
		return [2]float64{0, 2 * math.Pi}
	case 1:
		return [2]float64{dirs[0] + math.Pi/2, dirs[0] + 3*math.Pi/2}
	}

	sorted := append([]float64(nil), dirs...)
	sort.Float64s(sorted)
	bestStart, bestGap := sorted[len(sorted)-1], 2*math.Pi-sorted[len(sorted)-1]+sorted[0]
	for i := 1; i < len(sorted); i++ {
		if gap := sorted[i] - sorted[i-1]; gap > bestGap {
			bestStart, bestGap = sorted[i-1], gap
		}
	}
	return [2]float64{bestStart, bestStart + bestGap}
}

// placeNode commits a position for v by averaging candidate positions
// triangulated from already-placed anchors, falling back to a uniformly
// random point inside the inherited sector at the ideal sun distance.
func (m *multilevel) placeNode(fine *level, v int, sectors map[int][2]float64, withMoons bool) {
	a := &fine.node[v]
	if a.placed {
		return
	}
	sun := a.dedicatedSun
	sunPos := fine.node[sun].pos
	if sec, ok := sectors[sun]; ok {
		a.setSector(sec[0], sec[1])
	}

	var candidates []r2.Vec

	// Triangulation against placed neighbors of the same solar system.
	for _, ei := range fine.graph.IncidentEdges(v) {
		w := fine.graph.Edge(ei).Opposite(v)
		if w == v || w == sun {
			continue
		}
		wa := &fine.node[w]
		if !wa.placed || wa.dedicatedSun != sun {
			continue
		}
		total := a.sunDistance + fine.edge[ei].length
		lambda := 0.5
		if total > 0 {
			lambda = a.sunDistance / total
		}
		candidates = append(candidates, m.waggledBetween(sunPos, wa.pos, lambda))
	}

	// Direct interpolation toward neighboring suns recorded in coarsening.
	for i, lambda := range a.lambdas {
		ns := a.neighborSuns[i]
		candidates = append(candidates, m.waggledBetween(sunPos, fine.node[ns].pos, lambda))
	}

	// Planets with moons additionally triangulate against their moons.
	if withMoons {
		for _, moon := range a.moons {
			md := fine.node[moon].sunDistance
			if md > 0 && fine.node[moon].placed {
				lambda := a.sunDistance / md
				candidates = append(candidates, m.waggledBetween(sunPos, fine.node[moon].pos, lambda))
			}
		}
	}

	if len(candidates) > 0 {
		a.pos = centroid(candidates)
	} else {
		angle := a.angle1 + m.rng.Float64()*(a.angle2-a.angle1)
		a.pos = r2.Add(sunPos, r2.Vec{
			X: a.sunDistance * math.Cos(angle),
			Y: a.sunDistance * math.Sin(angle),
		})
	}
	a.placed = true
}

// waggledBetween interpolates between two anchors at fraction lambda and
// adds a small random orthogonal offset proportional to their distance.
func (m *multilevel) waggledBetween(s, t r2.Vec, lambda float64) r2.Vec {
	d := r2.Sub(t, s)
	dist := math.Hypot(d.X, d.Y)
	base := r2.Add(s, r2.Scale(lambda, d))
	var rescue r2.Vec
	if m.guard.NearMachinePrecision(dist, &rescue) {
		return r2.Add(base, rescue)
	}
	orth := r2.Vec{X: -d.Y / dist, Y: d.X / dist}
	offset := (m.rng.Float64()*2 - 1) * waggleFactor * dist
	return r2.Add(base, r2.Scale(offset, orth))
}

func centroid(points []r2.Vec) r2.Vec {
	var sum r2.Vec
	for _, p := range points {
		sum = r2.Add(sum, p)
	}
	return r2.Scale(1/float64(len(points)), sum)
}

// normalizeAngle maps an angle into [0, 2π).
func normalizeAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}
