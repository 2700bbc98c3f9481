package fmmm

import (
	"testing"

	"github.com/okanele/orrery/pkg/errors"
)

func TestNewGridRejectsNegativeDimensions(t *testing.T) {
	if _, err := NewGrid[int](-1, 3); !errors.Is(err, errors.ErrCodeInvalidArgument) {
		t.Errorf("NewGrid(-1, 3) error = %v, want INVALID_ARGUMENT", err)
	}
	if _, err := NewGrid[int](3, -1); !errors.Is(err, errors.ErrCodeInvalidArgument) {
		t.Errorf("NewGrid(3, -1) error = %v, want INVALID_ARGUMENT", err)
	}
}

func TestGridGetPut(t *testing.T) {
	g, err := NewGrid[string](2, 3)
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}

	if _, ok, err := g.Get(1, 2); err != nil || ok {
		t.Errorf("Get on fresh cell = (ok=%v, err=%v), want unset and nil error", ok, err)
	}
	if err := g.Put(1, 2, "x"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, ok, err := g.Get(1, 2)
	if err != nil || !ok || got != "x" {
		t.Errorf("Get(1,2) = (%q, %v, %v), want (\"x\", true, nil)", got, ok, err)
	}

	for _, idx := range [][2]int{{-1, 0}, {0, -1}, {2, 0}, {0, 3}} {
		if _, _, err := g.Get(idx[0], idx[1]); !errors.Is(err, errors.ErrCodeIndexOutOfRange) {
			t.Errorf("Get%v error = %v, want INDEX_OUT_OF_RANGE", idx, err)
		}
		if err := g.Put(idx[0], idx[1], "y"); !errors.Is(err, errors.ErrCodeIndexOutOfRange) {
			t.Errorf("Put%v error = %v, want INDEX_OUT_OF_RANGE", idx, err)
		}
	}
}

func TestGridComputeIfAbsent(t *testing.T) {
	g, err := NewGrid[int](2, 2)
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}

	calls := 0
	fn := func() (int, bool) { calls++; return 7, true }

	got, err := g.ComputeIfAbsent(0, 1, fn)
	if err != nil || got != 7 {
		t.Fatalf("ComputeIfAbsent first call = (%d, %v), want (7, nil)", got, err)
	}
	got, err = g.ComputeIfAbsent(0, 1, fn)
	if err != nil || got != 7 {
		t.Fatalf("ComputeIfAbsent second call = (%d, %v), want (7, nil)", got, err)
	}
	if calls != 1 {
		t.Errorf("fn called %d times, want 1", calls)
	}

	// A fn that declines storage is re-invoked on the next access.
	calls = 0
	decline := func() (int, bool) { calls++; return 9, false }
	g.ComputeIfAbsent(1, 1, decline)
	g.ComputeIfAbsent(1, 1, decline)
	if calls != 2 {
		t.Errorf("declining fn called %d times, want 2", calls)
	}
}

func TestGridFillClearEqual(t *testing.T) {
	a, _ := NewGrid[int](2, 2)
	b, _ := NewGrid[int](2, 2)
	eq := func(x, y int) bool { return x == y }

	if !a.Equal(b, eq) {
		t.Error("fresh grids should compare equal")
	}
	a.Fill(5)
	if a.Equal(b, eq) {
		t.Error("filled grid should differ from fresh grid")
	}
	b.Fill(5)
	if !a.Equal(b, eq) {
		t.Error("identically filled grids should compare equal")
	}
	a.Clear()
	if v, ok, _ := a.Get(0, 0); ok || v != 0 {
		t.Errorf("after Clear, Get(0,0) = (%d, %v), want (0, false)", v, ok)
	}

	c, _ := NewGrid[int](2, 3)
	if a.Equal(c, eq) {
		t.Error("grids with different dimensions should not compare equal")
	}
}
