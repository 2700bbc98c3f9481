package fmmm

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/spatial/r2"
)

// Tolerance factors applied to the guard's scale, with absolute floors so a
// tiny scale can never collapse them to zero.
const (
	epsilonFactor = 1e-9
	epsilonFloor  = 1e-15
	nudgeFactor   = 1e-6
	nudgeFloor    = 1e-12
	rescueFactor  = 1e3
	rescueFloor   = 1.0
)

// StabilityGuard detects near-zero distances during force calculation and
// produces bounded random rescue vectors in their place, so the simulation
// always progresses even for coincident points.
//
// All tolerances derive from a single scale factor, typically set to the
// average ideal edge length of the graph being laid out. The guard owns its
// RNG; reseed with [StabilityGuard.Reseed] for reproducibility. A guard is
// not safe for concurrent use — give each parallel layout its own.
type StabilityGuard struct {
	scale float64
	rng   *rand.Rand
}

// NewStabilityGuard creates a guard with scale 1.0 and a deterministic
// default seed.
func NewStabilityGuard(seed uint64) *StabilityGuard {
	g := &StabilityGuard{scale: 1.0}
	g.Reseed(seed)
	return g
}

// Reseed resets the guard's RNG. Runs with equal seeds and equal call
// sequences produce identical rescue vectors.
func (g *StabilityGuard) Reseed(seed uint64) {
	g.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// SetScale sets the geometric unit from which tolerances derive.
// Non-positive values are ignored.
func (g *StabilityGuard) SetScale(s float64) {
	if s > 0 {
		g.scale = s
	}
}

// Scale returns the current scale factor.
func (g *StabilityGuard) Scale() float64 { return g.scale }

// Epsilon is the distance below which two points are treated as coincident.
func (g *StabilityGuard) Epsilon() float64 {
	return math.Max(epsilonFactor*g.scale, epsilonFloor)
}

// nudge is the magnitude of emergency displacement vectors.
func (g *StabilityGuard) nudge() float64 {
	return math.Max(nudgeFactor*g.scale, nudgeFloor)
}

// maxRescue bounds the magnitude of any emergency vector.
func (g *StabilityGuard) maxRescue() float64 {
	return math.Max(rescueFactor*g.scale, rescueFloor)
}

// RepulsionNearMachinePrecision reports whether distance is too small for a
// stable 1/d repulsion term. When it returns true, out is filled with a
// uniformly-random-direction vector of the nudge magnitude (clamped to the
// rescue bound); otherwise out is left untouched.
func (g *StabilityGuard) RepulsionNearMachinePrecision(distance float64, out *r2.Vec) bool {
	if distance > g.Epsilon() {
		return false
	}
	*out = g.randomVector(math.Min(g.nudge(), g.maxRescue()))
	return true
}

// NearMachinePrecision behaves like [StabilityGuard.RepulsionNearMachinePrecision]
// for general (non-repulsion) near-zero distance cases.
func (g *StabilityGuard) NearMachinePrecision(distance float64, out *r2.Vec) bool {
	return g.RepulsionNearMachinePrecision(distance, out)
}

// ChooseDistinctRandomPointInRadiusEpsilon returns p perturbed by the nudge
// radius at a uniformly random angle, guaranteeing a point distinct from p.
func (g *StabilityGuard) ChooseDistinctRandomPointInRadiusEpsilon(p r2.Vec) r2.Vec {
	return r2.Add(p, g.randomVector(g.nudge()))
}

func (g *StabilityGuard) randomVector(magnitude float64) r2.Vec {
	angle := g.rng.Float64() * 2 * math.Pi
	return r2.Vec{X: magnitude * math.Cos(angle), Y: magnitude * math.Sin(angle)}
}
