package fmmm

import (
	"math"
	"math/rand/v2"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

func newTestKernel(quotient int) *repulsionKernel {
	return &repulsionKernel{guard: NewStabilityGuard(1), gridQuotient: quotient}
}

func TestExactRepulsionPairMagnitude(t *testing.T) {
	k := newTestKernel(2)
	pos := []r2.Vec{{X: 0, Y: 0}, {X: 3, Y: 4}}
	forces := make([]r2.Vec, 2)
	k.exact(pos, forces)

	// Distance 5, decay 1/d² after normalization: |f| = 1/25.
	got := math.Hypot(forces[0].X, forces[0].Y)
	want := 1.0 / 25
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("|force| = %g, want %g", got, want)
	}
	if forces[0].X > 0 || forces[0].Y > 0 {
		t.Errorf("force on node 0 = %v, want direction away from node 1", forces[0])
	}
	sum := r2.Add(forces[0], forces[1])
	if math.Hypot(sum.X, sum.Y) > 1e-12 {
		t.Errorf("forces not equal and opposite, sum = %v", sum)
	}
}

func TestRepulsionActionReaction(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 5))
	const n = 200
	pos := make([]r2.Vec, n)
	for i := range pos {
		pos[i] = r2.Vec{X: rng.Float64() * 1000, Y: rng.Float64() * 1000}
	}

	for _, method := range []RepulsiveForcesMethod{RepulsionExact, RepulsionGridApproximation} {
		forces := make([]r2.Vec, n)
		k := newTestKernel(2)
		k.compute(method, pos, forces)

		var sum r2.Vec
		for i, f := range forces {
			if math.IsNaN(f.X) || math.IsNaN(f.Y) || math.IsInf(f.X, 0) || math.IsInf(f.Y, 0) {
				t.Fatalf("method %v: non-finite force on node %d: %v", method, i, f)
			}
			sum = r2.Add(sum, f)
		}
		// Every pair contributes equal and opposite forces, so the total
		// must cancel; this catches any double counting in the grid's
		// half-neighborhood scan.
		if math.Hypot(sum.X, sum.Y) > 1e-6 {
			t.Errorf("method %v: net force = %v, want ~0", method, sum)
		}
	}
}

func TestGridMatchesExactInsideNeighborhood(t *testing.T) {
	// 25 nodes with quotient 2 give a 2×2 grid, so every cell pair lies
	// inside the 3×3 neighborhood and the grid pass must resolve exactly
	// the pairs the exact pass does. A missed or doubled close pair shows
	// up as a per-node difference here, which the net-zero check in
	// TestRepulsionActionReaction cannot catch.
	rng := rand.New(rand.NewPCG(7, 11))
	const n = 25
	pos := make([]r2.Vec, n)
	for i := range pos {
		pos[i] = r2.Vec{X: rng.Float64() * 1000, Y: rng.Float64() * 1000}
	}

	exact := make([]r2.Vec, n)
	approx := make([]r2.Vec, n)
	k := newTestKernel(2)
	k.exact(pos, exact)
	k.approximate(pos, approx)

	for i := range pos {
		d := r2.Sub(exact[i], approx[i])
		if math.Hypot(d.X, d.Y) > 1e-9 {
			t.Errorf("node %d: approximate = %v, exact = %v", i, approx[i], exact[i])
		}
	}
}

func TestApproximateFallsBackForSmallInputs(t *testing.T) {
	// 9 nodes with quotient 2 gives grid side 1, which must fall back to
	// the exact kernel.
	pos := make([]r2.Vec, 9)
	for i := range pos {
		pos[i] = r2.Vec{X: float64(i * 10), Y: float64(i % 3)}
	}

	exact := make([]r2.Vec, len(pos))
	approx := make([]r2.Vec, len(pos))
	k := newTestKernel(2)
	k.exact(pos, exact)
	k.approximate(pos, approx)

	for i := range pos {
		d := r2.Sub(exact[i], approx[i])
		if math.Hypot(d.X, d.Y) > 1e-12 {
			t.Errorf("node %d: approximate = %v, exact = %v", i, approx[i], exact[i])
		}
	}
}

func TestRepulsionCoincidentPointsStayFinite(t *testing.T) {
	k := newTestKernel(2)
	pos := []r2.Vec{{X: 1, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 1}}
	forces := make([]r2.Vec, 3)
	k.exact(pos, forces)

	for i, f := range forces {
		if math.IsNaN(f.X) || math.IsNaN(f.Y) || math.IsInf(f.X, 0) || math.IsInf(f.Y, 0) {
			t.Errorf("node %d: non-finite rescue force %v", i, f)
		}
	}
}

func TestClampIndex(t *testing.T) {
	tests := []struct {
		i, n, want int
	}{
		{-5, 10, 0},
		{0, 10, 0},
		{9, 10, 9},
		{10, 10, 9},
		{100, 10, 9},
	}
	for _, tt := range tests {
		if got := clampIndex(tt.i, tt.n); got != tt.want {
			t.Errorf("clampIndex(%d, %d) = %d, want %d", tt.i, tt.n, got, tt.want)
		}
	}
}
