package fmmm

import (
	"math/rand/v2"

	"github.com/okanele/orrery/pkg/errors"
)

// SamplingSet is a mutable set of node indices supporting O(1) deletion and
// random sampling without replacement, either uniform or biased by node
// mass. It backs the sun selection step of the multilevel coarsening.
//
// The set is array-backed: the active elements occupy positions
// [0, lastSelectable] and deletion swaps the victim to the tail before
// shrinking the range, so sampling stays a single uniform index draw.
type SamplingSet struct {
	nodes []int // permutation of 0..n-1
	pos   []int // node -> current position in nodes
	last  int   // index of the last selectable element; -1 when empty
	mass  func(node int) int
	rng   *rand.Rand
}

// NewSamplingSet creates a set over nodes 0..n-1 with unit mass per node.
func NewSamplingSet(n int, rng *rand.Rand) *SamplingSet {
	return NewSamplingSetWithMass(n, nil, rng)
}

// NewSamplingSetWithMass creates a set over nodes 0..n-1 whose star mass is
// supplied by the given lookup. A nil lookup means unit mass.
func NewSamplingSetWithMass(n int, mass func(node int) int, rng *rand.Rand) *SamplingSet {
	s := &SamplingSet{
		nodes: make([]int, n),
		pos:   make([]int, n),
		last:  n - 1,
		mass:  mass,
		rng:   rng,
	}
	for i := range s.nodes {
		s.nodes[i] = i
		s.pos[i] = i
	}
	return s
}

// Len returns the number of selectable nodes.
func (s *SamplingSet) Len() int { return s.last + 1 }

// IsEmpty reports whether no selectable nodes remain.
func (s *SamplingSet) IsEmpty() bool { return s.last < 0 }

// Contains reports whether v is still selectable.
func (s *SamplingSet) Contains(v int) bool {
	return v >= 0 && v < len(s.pos) && s.pos[v] <= s.last
}

// Delete removes v from the selectable range in O(1).
// Deleting an already-deleted node is a no-op.
func (s *SamplingSet) Delete(v int) {
	if !s.Contains(v) {
		return
	}
	s.swap(s.pos[v], s.last)
	s.last--
}

// RandomNode uniformly samples a selectable node and deletes it.
// Returns an EMPTY_COLLECTION error when the set is empty.
func (s *SamplingSet) RandomNode() (int, error) {
	if s.IsEmpty() {
		return -1, errors.New(errors.ErrCodeEmptyCollection, "sampling set is empty")
	}
	v := s.nodes[s.rng.IntN(s.last+1)]
	s.Delete(v)
	return v, nil
}

// RandomNodeWithLowestStarMass draws up to tries candidates without
// replacement, deletes and returns the one with the lowest star mass.
// With tries ≤ 0 it degenerates to uniform sampling.
func (s *SamplingSet) RandomNodeWithLowestStarMass(tries int) (int, error) {
	return s.biasedNode(tries, func(candidate, best int) bool { return candidate < best })
}

// RandomNodeWithHighestStarMass draws up to tries candidates without
// replacement, deletes and returns the one with the highest star mass.
// With tries ≤ 0 it degenerates to uniform sampling.
func (s *SamplingSet) RandomNodeWithHighestStarMass(tries int) (int, error) {
	return s.biasedNode(tries, func(candidate, best int) bool { return candidate > best })
}

// biasedNode performs up to tries reservoir-style swaps that pull sampled
// candidates toward the tail of the active range, so every draw is without
// replacement even across tries, then deletes and returns the best
// candidate under better.
func (s *SamplingSet) biasedNode(tries int, better func(candidate, best int) bool) (int, error) {
	if s.IsEmpty() {
		return -1, errors.New(errors.ErrCodeEmptyCollection, "sampling set is empty")
	}
	if tries <= 0 {
		return s.RandomNode()
	}

	best := -1
	bestMass := 0
	for i := 0; i < tries && i <= s.last; i++ {
		// Sample from the not-yet-tried prefix and park the candidate at
		// the tail of the active range.
		tail := s.last - i
		j := s.rng.IntN(tail + 1)
		s.swap(j, tail)
		candidate := s.nodes[tail]
		m := s.massOf(candidate)
		if best < 0 || better(m, bestMass) {
			best, bestMass = candidate, m
		}
	}
	s.Delete(best)
	return best, nil
}

func (s *SamplingSet) massOf(v int) int {
	if s.mass == nil {
		return 1
	}
	return s.mass(v)
}

func (s *SamplingSet) swap(i, j int) {
	a, b := s.nodes[i], s.nodes[j]
	s.nodes[i], s.nodes[j] = b, a
	s.pos[a], s.pos[b] = j, i
}
