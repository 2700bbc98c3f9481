package fmmm

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Grid side bounds for the approximate kernel.
const (
	minGridSide = 2
	maxGridSide = 2048
)

// repulsionKernel computes pairwise repulsive forces over a set of node
// positions. Forces are equal and opposite for every unordered pair
// (action–reaction) with magnitude 1/d after direction normalization, so
// the effective decay is 1/d². Callers apply the outer scale factor
// (ideal-edge-length² × configured strength) externally.
type repulsionKernel struct {
	guard        *StabilityGuard
	gridQuotient int
}

// exact accumulates repulsion over all pairs with a triangular double loop.
// Degenerate pairs receive a rescue vector from the stability guard.
func (k *repulsionKernel) exact(pos []r2.Vec, forces []r2.Vec) {
	for i := 0; i < len(pos); i++ {
		for j := i + 1; j < len(pos); j++ {
			f := k.pairForce(pos[i], pos[j])
			forces[i] = r2.Add(forces[i], f)
			forces[j] = r2.Sub(forces[j], f)
		}
	}
}

// approximate bins nodes into a uniform size×size grid spanning their
// bounding box and resolves same-cell pairs plus interactions with the
// 3×3 neighborhood. Only the upper/right half of the neighborhood is
// scanned (dx<0 skipped; dx=0,dy≤0 skipped) so each unordered inter-cell
// pair is processed exactly once; violating this rule would double every
// force. Falls back to exact when the grid would be smaller than 2×2.
func (k *repulsionKernel) approximate(pos []r2.Vec, forces []r2.Vec) {
	n := len(pos)
	quotient := max(k.gridQuotient, 1)
	side := int(math.Sqrt(float64(n)) / float64(quotient))
	if side < minGridSide {
		k.exact(pos, forces)
		return
	}
	side = min(side, maxGridSide)

	minP, maxP := bounds(pos)
	cellW := (maxP.X - minP.X) / float64(side)
	cellH := (maxP.Y - minP.Y) / float64(side)
	if cellW <= 0 || cellH <= 0 {
		// Degenerate bounding box: all points on a line or coincident.
		k.exact(pos, forces)
		return
	}

	cells, _ := NewGrid[[]int](side, side)
	for i, p := range pos {
		row := clampIndex(int((p.Y-minP.Y)/cellH), side)
		col := clampIndex(int((p.X-minP.X)/cellW), side)
		bucket := cells.at(row, col)
		*bucket = append(*bucket, i)
	}

	// Half of the 3×3 neighborhood; together with the mirrored pairs this
	// covers all eight neighbors without double counting.
	offsets := [4][2]int{{0, 1}, {1, -1}, {1, 0}, {1, 1}} // (dx, dy)

	for row := 0; row < side; row++ {
		for col := 0; col < side; col++ {
			bucket := *cells.at(row, col)

			for a := 0; a < len(bucket); a++ {
				for b := a + 1; b < len(bucket); b++ {
					i, j := bucket[a], bucket[b]
					f := k.pairForce(pos[i], pos[j])
					forces[i] = r2.Add(forces[i], f)
					forces[j] = r2.Sub(forces[j], f)
				}
			}

			for _, off := range offsets {
				ncol, nrow := col+off[0], row+off[1]
				if nrow < 0 || nrow >= side || ncol < 0 || ncol >= side {
					continue
				}
				neighbor := *cells.at(nrow, ncol)
				for _, i := range bucket {
					for _, j := range neighbor {
						f := k.pairForce(pos[i], pos[j])
						forces[i] = r2.Add(forces[i], f)
						forces[j] = r2.Sub(forces[j], f)
					}
				}
			}
		}
	}
}

// compute dispatches on the configured method.
func (k *repulsionKernel) compute(method RepulsiveForcesMethod, pos []r2.Vec, forces []r2.Vec) {
	if method == RepulsionGridApproximation {
		k.approximate(pos, forces)
		return
	}
	k.exact(pos, forces)
}

// pairForce returns the force on p away from q.
func (k *repulsionKernel) pairForce(p, q r2.Vec) r2.Vec {
	d := r2.Sub(p, q)
	dist := math.Hypot(d.X, d.Y)
	var rescue r2.Vec
	if k.guard.RepulsionNearMachinePrecision(dist, &rescue) {
		return rescue
	}
	return r2.Scale(1/(dist*dist), d)
}

func bounds(pos []r2.Vec) (minP, maxP r2.Vec) {
	if len(pos) == 0 {
		return
	}
	minP, maxP = pos[0], pos[0]
	for _, p := range pos[1:] {
		minP.X = math.Min(minP.X, p.X)
		minP.Y = math.Min(minP.Y, p.Y)
		maxP.X = math.Max(maxP.X, p.X)
		maxP.Y = math.Max(maxP.Y, p.Y)
	}
	return
}

// clampIndex confines i to [0, n), catching points on the bounding box's
// far edge and out-of-box stragglers.
func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
