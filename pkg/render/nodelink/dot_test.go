package nodelink

import (
	"strings"
	"testing"

	"github.com/okanele/orrery/pkg/drawing"
)

func sampleDrawing() *drawing.Drawing {
	return &drawing.Drawing{
		ID:     "d1",
		Width:  200,
		Height: 100,
		Nodes: []drawing.Node{
			{ID: 0, Label: "alpha", X: 10, Y: 20},
			{ID: 1, X: 150, Y: 80},
		},
		Edges: []drawing.Edge{
			{Source: 0, Target: 1, Weight: 2.5},
		},
	}
}

func TestToDOTPinsPositions(t *testing.T) {
	dot := ToDOT(sampleDrawing(), Options{})

	for _, want := range []string{
		"graph G {",
		"layout=neato;",
		`n0 [label="alpha", pos="10.00,80.00!"];`,
		`n1 [label="1", pos="150.00,20.00!"];`,
		"n0 -- n1;",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
	if strings.Contains(dot, "->") {
		t.Error("DOT contains directed edges for an undirected drawing")
	}
}

func TestToDOTDetailedAndWeights(t *testing.T) {
	dot := ToDOT(sampleDrawing(), Options{Detailed: true, ShowWeights: true})

	if !strings.Contains(dot, "#0 (10, 20)") {
		t.Errorf("detailed label missing coordinates:\n%s", dot)
	}
	if !strings.Contains(dot, `n0 -- n1 [label="2.5"];`) {
		t.Errorf("weighted edge label missing:\n%s", dot)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="4in" height="2in" viewBox="0.00 0.00 288.00 144.00" xmlns="http://www.w3.org/2000/svg">rest</svg>`)
	out := string(normalizeViewBox(in))

	if !strings.Contains(out, `viewBox="0 0 288.00 144.00"`) {
		t.Errorf("view box not normalized: %s", out)
	}
	if !strings.Contains(out, `width="288" height="144"`) {
		t.Errorf("pixel dimensions missing: %s", out)
	}

	// SVG without a view box passes through untouched.
	plain := []byte(`<svg>min</svg>`)
	if got := string(normalizeViewBox(plain)); got != string(plain) {
		t.Errorf("plain SVG altered: %s", got)
	}
}
