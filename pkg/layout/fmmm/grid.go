package fmmm

import (
	"github.com/okanele/orrery/pkg/errors"
)

// Grid is a fixed-size two-dimensional table of cells, used by the
// approximate repulsion kernel to bin nodes. Cells distinguish "set" from
// "unset" so that [Grid.ComputeIfAbsent] can mirror map semantics.
//
// Access through Get/Put is bounds-checked; out-of-range indices yield an
// INDEX_OUT_OF_RANGE error rather than a panic.
type Grid[T any] struct {
	rows, cols int
	cells      []T
	set        []bool
}

// NewGrid creates a rows×cols grid. Negative dimensions are an
// INVALID_ARGUMENT error; zero dimensions are allowed and produce an
// empty grid.
func NewGrid[T any](rows, cols int) (*Grid[T], error) {
	if rows < 0 || cols < 0 {
		return nil, errors.New(errors.ErrCodeInvalidArgument,
			"grid dimensions must not be negative, got %d×%d", rows, cols)
	}
	return &Grid[T]{
		rows:  rows,
		cols:  cols,
		cells: make([]T, rows*cols),
		set:   make([]bool, rows*cols),
	}, nil
}

// Rows returns the number of rows.
func (g *Grid[T]) Rows() int { return g.rows }

// Cols returns the number of columns.
func (g *Grid[T]) Cols() int { return g.cols }

// Get returns the value at (row, col). The second result reports whether
// the cell has been set since construction or the last Clear.
func (g *Grid[T]) Get(row, col int) (T, bool, error) {
	var zero T
	if !g.inBounds(row, col) {
		return zero, false, g.boundsErr(row, col)
	}
	i := row*g.cols + col
	return g.cells[i], g.set[i], nil
}

// Put stores a value at (row, col), marking the cell as set.
func (g *Grid[T]) Put(row, col int, v T) error {
	if !g.inBounds(row, col) {
		return g.boundsErr(row, col)
	}
	i := row*g.cols + col
	g.cells[i] = v
	g.set[i] = true
	return nil
}

// ComputeIfAbsent returns the value at (row, col), computing and storing it
// via fn when the cell is unset. When fn reports false its result is
// returned but not stored, mirroring a map that never stores nil values.
func (g *Grid[T]) ComputeIfAbsent(row, col int, fn func() (T, bool)) (T, error) {
	var zero T
	if !g.inBounds(row, col) {
		return zero, g.boundsErr(row, col)
	}
	i := row*g.cols + col
	if g.set[i] {
		return g.cells[i], nil
	}
	v, store := fn()
	if store {
		g.cells[i] = v
		g.set[i] = true
	}
	return v, nil
}

// Fill sets every cell to v.
func (g *Grid[T]) Fill(v T) {
	for i := range g.cells {
		g.cells[i] = v
		g.set[i] = true
	}
}

// Clear resets every cell to the zero value and marks it unset.
func (g *Grid[T]) Clear() {
	var zero T
	for i := range g.cells {
		g.cells[i] = zero
		g.set[i] = false
	}
}

// Equal reports whether two grids have the same dimensions and cell
// contents, compared with eq. Unset cells compare equal to each other
// only.
func (g *Grid[T]) Equal(other *Grid[T], eq func(a, b T) bool) bool {
	if other == nil || g.rows != other.rows || g.cols != other.cols {
		return false
	}
	for i := range g.cells {
		if g.set[i] != other.set[i] {
			return false
		}
		if g.set[i] && !eq(g.cells[i], other.cells[i]) {
			return false
		}
	}
	return true
}

// at returns a pointer to the cell without bounds checks. Internal callers
// bin with indices they have already clamped.
func (g *Grid[T]) at(row, col int) *T {
	return &g.cells[row*g.cols+col]
}

func (g *Grid[T]) inBounds(row, col int) bool {
	return row >= 0 && row < g.rows && col >= 0 && col < g.cols
}

func (g *Grid[T]) boundsErr(row, col int) error {
	return errors.New(errors.ErrCodeIndexOutOfRange,
		"grid index (%d,%d) out of range %d×%d", row, col, g.rows, g.cols)
}
