package fmmm

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

func TestStabilityGuardEpsilonScalesWithScale(t *testing.T) {
	g := NewStabilityGuard(1)

	g.SetScale(100)
	if got, want := g.Epsilon(), 100*epsilonFactor; got != want {
		t.Errorf("Epsilon at scale 100 = %g, want %g", got, want)
	}

	// Tiny scales bottom out at the floor instead of collapsing to zero.
	g.SetScale(1e-30)
	if got := g.Epsilon(); got < epsilonFloor {
		t.Errorf("Epsilon at tiny scale = %g, below floor %g", got, epsilonFloor)
	}

	// Non-positive scales are ignored.
	g.SetScale(50)
	g.SetScale(0)
	g.SetScale(-3)
	if got := g.Scale(); got != 50 {
		t.Errorf("Scale after ignoring non-positive values = %g, want 50", got)
	}
}

func TestRepulsionNearMachinePrecision(t *testing.T) {
	g := NewStabilityGuard(7)
	g.SetScale(1)

	var out r2.Vec
	if g.RepulsionNearMachinePrecision(1.0, &out) {
		t.Error("distance 1.0 at scale 1 flagged as near machine precision")
	}
	if out != (r2.Vec{}) {
		t.Errorf("out modified on the non-degenerate path: %v", out)
	}

	if !g.RepulsionNearMachinePrecision(0, &out) {
		t.Fatal("distance 0 not flagged as near machine precision")
	}
	mag := math.Hypot(out.X, out.Y)
	if mag == 0 {
		t.Error("rescue vector is zero")
	}
	if mag > g.maxRescue() {
		t.Errorf("rescue magnitude %g exceeds bound %g", mag, g.maxRescue())
	}
}

func TestStabilityGuardReseedIsReproducible(t *testing.T) {
	a := NewStabilityGuard(42)
	b := NewStabilityGuard(42)

	p := r2.Vec{X: 3, Y: 4}
	for i := 0; i < 10; i++ {
		if got, want := a.ChooseDistinctRandomPointInRadiusEpsilon(p), b.ChooseDistinctRandomPointInRadiusEpsilon(p); got != want {
			t.Fatalf("draw %d differs between equal seeds: %v vs %v", i, got, want)
		}
	}

	q := a.ChooseDistinctRandomPointInRadiusEpsilon(p)
	if q == p {
		t.Error("ChooseDistinctRandomPointInRadiusEpsilon returned the input point")
	}
}
