package fmmm

import (
	"context"
	"math"
	"runtime"
	"sort"
	"sync"

	"github.com/charmbracelet/log"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/okanele/orrery/pkg/errors"
	"github.com/okanele/orrery/pkg/graph"
)

// Rect is an axis-aligned bounding box in drawing coordinates.
type Rect struct {
	MinX, MinY, MaxX, MaxY float64
}

// Width returns the horizontal extent.
func (r Rect) Width() float64 { return r.MaxX - r.MinX }

// Height returns the vertical extent.
func (r Rect) Height() float64 { return r.MaxY - r.MinY }

// InitialPositionFunc optionally supplies a starting position for a node.
// It is consulted before layout begins; returning false leaves the
// position stored on the graph untouched.
type InitialPositionFunc func(node int) (r2.Vec, bool)

// ProgressFunc is invoked once per finished component with the number of
// completed components and the total. It may be called from multiple
// goroutines, but calls are serialized.
type ProgressFunc func(done, total int)

// SetPositionFunc receives the final position of every node.
type SetPositionFunc func(node int, p r2.Vec)

// Layout computes positions for all nodes of g, which may be disconnected
// and non-simple, and writes them onto g's nodes. Connected components are
// laid out independently (in parallel for disconnected graphs) and packed
// into rows on a single canvas; a connected graph skips packing entirely
// and keeps its drawing where the forces left it.
//
// initial, progress and set are all optional. The returned Rect bounds the
// finished drawing including node extents.
func Layout(opts *Options, g *graph.Graph, initial InitialPositionFunc, progress ProgressFunc, set SetPositionFunc) (Rect, error) {
	return LayoutContext(context.Background(), opts, g, initial, progress, set)
}

// LayoutContext is [Layout] with cancellation. Cancellation is best
// effort: components already being laid out run to completion, queued ones
// are skipped, and the context error is returned.
func LayoutContext(ctx context.Context, opts *Options, g *graph.Graph, initial InitialPositionFunc, progress ProgressFunc, set SetPositionFunc) (Rect, error) {
	return layoutGraph(ctx, opts, g, initial, progress, set, packComponents)
}

// LayoutPacked lays a disconnected graph out like [Layout] but packs the
// component drawings with caller-supplied geometry instead of the
// automatic shelf packing. Components are sorted by decreasing
// bounding-box area; the largest one fixes a uniform scale, maxWidth over
// its width (1 when that width is zero), which every component reuses.
// Rows fill left to right with hGap between components and wrap onto a
// new row vGap below the previous one when a placement would pass
// maxLineWidth. The returned canvas spans from the origin to
// (max(maxLineWidth, final cursor), bottom of the last row). A connected
// graph skips packing, exactly as in [Layout].
func LayoutPacked(opts *Options, maxWidth, maxLineWidth, hGap, vGap float64, g *graph.Graph, initial InitialPositionFunc, progress ProgressFunc, set SetPositionFunc) (Rect, error) {
	return LayoutPackedContext(context.Background(), opts, maxWidth, maxLineWidth, hGap, vGap, g, initial, progress, set)
}

// LayoutPackedContext is [LayoutPacked] with cancellation.
func LayoutPackedContext(ctx context.Context, opts *Options, maxWidth, maxLineWidth, hGap, vGap float64, g *graph.Graph, initial InitialPositionFunc, progress ProgressFunc, set SetPositionFunc) (Rect, error) {
	return layoutGraph(ctx, opts, g, initial, progress, set, func(opts *Options, comps []graph.Component) Rect {
		return packRows(opts, comps, maxWidth, maxLineWidth, hGap, vGap)
	})
}

func layoutGraph(ctx context.Context, opts *Options, g *graph.Graph, initial InitialPositionFunc, progress ProgressFunc, set SetPositionFunc, pack func(*Options, []graph.Component) Rect) (Rect, error) {
	if g == nil {
		return Rect{}, errors.New(errors.ErrCodeInvalidGraph, "graph is nil")
	}
	if err := g.Validate(); err != nil {
		return Rect{}, errors.Wrap(errors.ErrCodeInvalidGraph, err, "graph failed validation")
	}
	if opts == nil {
		opts = DefaultOptions()
	} else {
		opts = opts.clone()
		opts.Validate(false)
	}

	n := g.NodeCount()
	if n == 0 {
		return Rect{}, nil
	}
	if initial != nil {
		for v := 0; v < n; v++ {
			if p, ok := initial(v); ok {
				nd := g.Node(v)
				nd.X, nd.Y = p.X, p.Y
			}
		}
	}

	logger := log.FromContext(ctx)

	if g.IsConnected() {
		logger.Debug("layout started", "nodes", n, "edges", g.EdgeCount(), "components", 1)
		if err := layoutComponent(opts, g, opts.RandSeed); err != nil {
			return Rect{}, err
		}
		finishPositions(opts, g, set)
		if progress != nil {
			progress(1, 1)
		}
		return drawingRect(g), nil
	}

	comps, _ := g.ConnectedComponents()
	total := len(comps)
	logger.Debug("layout started", "nodes", n, "edges", g.EdgeCount(), "components", total)

	workers := min(runtime.GOMAXPROCS(0), total)
	err := layoutComponents(ctx, workers, total, progress, func(ci int) error {
		return layoutComponent(opts, comps[ci].Graph, opts.RandSeed+uint64(ci))
	})
	if err != nil {
		return Rect{}, err
	}

	rect := pack(opts, comps)

	for ci := range comps {
		comp := &comps[ci]
		for local, global := range comp.GlobalNode {
			cn := comp.Graph.Node(local)
			nd := g.Node(global)
			nd.X, nd.Y = cn.X, cn.Y
		}
	}
	finishPositions(opts, g, set)
	if opts.AllowedPositions == PositionsInteger {
		rect.MinX, rect.MinY = math.Floor(rect.MinX), math.Floor(rect.MinY)
		rect.MaxX, rect.MaxY = math.Ceil(rect.MaxX), math.Ceil(rect.MaxY)
	}
	return rect, nil
}

// layoutComponents fans the per-component tasks out over the given number
// of workers. Every component derives its RNG seed from RandSeed plus its
// component index, so results do not depend on worker scheduling. The
// first error wins: a worker that finds the error slot already occupied
// skips its remaining tasks, later errors are dropped, and the recorded
// error is returned only after every worker has drained the queue.
func layoutComponents(ctx context.Context, workers, total int, progress ProgressFunc, run func(ci int) error) error {
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
		done     int
	)
	tasks := make(chan int)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ci := range tasks {
				if ctx.Err() != nil {
					continue
				}
				mu.Lock()
				failed := firstErr != nil
				mu.Unlock()
				if failed {
					continue
				}
				err := run(ci)
				mu.Lock()
				if err != nil && firstErr == nil {
					firstErr = err
				}
				done++
				if progress != nil {
					progress(done, total)
				}
				mu.Unlock()
			}
		}()
	}
	for ci := 0; ci < total; ci++ {
		tasks <- ci
	}
	close(tasks)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "layout canceled")
	}
	return firstErr
}

// packComponents arranges the finished component drawings into rows on one
// canvas with the origin at (0, 0) and returns the canvas rectangle. Each
// component is first rotated to its most compact orientation, then the
// components are shelf-packed tallest first into rows no wider than the
// square root of the total drawing area.
func packComponents(opts *Options, comps []graph.Component) Rect {
	rects := make([]Rect, len(comps))
	totalArea, maxWidth := 0.0, 0.0
	for ci := range comps {
		rotateToCompact(opts, comps[ci].Graph)
		r := drawingRect(comps[ci].Graph)
		rects[ci] = r
		totalArea += r.Width() * r.Height()
		maxWidth = math.Max(maxWidth, r.Width())
	}

	order := make([]int, len(comps))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return rects[order[a]].Height() > rects[order[b]].Height()
	})

	gap := opts.UnitEdgeLength
	lineWidth := math.Max(maxWidth+gap, math.Sqrt(totalArea))

	cursorX, cursorY := 0.0, 0.0
	rowHeight, maxLineWidth := 0.0, 0.0
	for _, ci := range order {
		r := rects[ci]
		w, h := r.Width()+gap, r.Height()+gap
		if cursorX > 0 && cursorX+w > lineWidth {
			maxLineWidth = math.Max(maxLineWidth, cursorX)
			cursorY += rowHeight
			cursorX, rowHeight = 0, 0
		}
		translateDrawing(comps[ci].Graph, cursorX-r.MinX, cursorY-r.MinY)
		cursorX += w
		rowHeight = math.Max(rowHeight, h)
	}

	return Rect{
		MaxX: math.Max(maxLineWidth, cursorX),
		MaxY: cursorY + rowHeight,
	}
}

// packRows packs finished component drawings with caller-supplied
// geometry. Components are placed in order of decreasing bounding-box
// area; the first one fixes the uniform scale maxWidth / width. Each
// drawing is mapped onto the canvas as (local - min) * scale + cursor,
// the cursor advances past the placed width plus hGap, and a placement
// that would pass maxLineWidth starts a new row vGap below the bottom of
// the previous one.
func packRows(opts *Options, comps []graph.Component, maxWidth, maxLineWidth, hGap, vGap float64) Rect {
	if len(comps) == 0 {
		return Rect{}
	}

	rects := make([]Rect, len(comps))
	for ci := range comps {
		rotateToCompact(opts, comps[ci].Graph)
		rects[ci] = drawingRect(comps[ci].Graph)
	}

	order := make([]int, len(comps))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ra, rb := rects[order[a]], rects[order[b]]
		return ra.Width()*ra.Height() > rb.Width()*rb.Height()
	})

	scale := 1.0
	if w := rects[order[0]].Width(); w != 0 {
		scale = maxWidth / w
	}

	cursorX, cursorY, rowMaxY := 0.0, 0.0, 0.0
	for _, ci := range order {
		r := rects[ci]
		w := r.Width() * scale
		if cursorX > 0 && cursorX+w > maxLineWidth {
			cursorY = rowMaxY + vGap
			cursorX = 0
		}
		cg := comps[ci].Graph
		for v := 0; v < cg.NodeCount(); v++ {
			nd := cg.Node(v)
			nd.X = (nd.X-r.MinX)*scale + cursorX
			nd.Y = (nd.Y-r.MinY)*scale + cursorY
		}
		cursorX += w + hGap
		rowMaxY = math.Max(rowMaxY, cursorY+r.Height()*scale)
	}

	return Rect{
		MaxX: math.Max(maxLineWidth, cursorX),
		MaxY: rowMaxY,
	}
}

// rotateToCompact tries StepsForRotatingComponents orientations over a
// half turn and keeps the one with the smallest bounding-box area.
// Rotation is about the drawing's centroid.
func rotateToCompact(opts *Options, g *graph.Graph) {
	steps := opts.StepsForRotatingComponents
	if steps <= 1 || g.NodeCount() < 2 {
		return
	}

	var c r2.Vec
	for v := 0; v < g.NodeCount(); v++ {
		nd := g.Node(v)
		c = r2.Add(c, r2.Vec{X: nd.X, Y: nd.Y})
	}
	c = r2.Scale(1/float64(g.NodeCount()), c)

	bestAngle, bestArea := 0.0, math.Inf(1)
	for i := 0; i < steps; i++ {
		angle := math.Pi * float64(i) / float64(steps)
		r := rotatedRect(g, c, angle)
		if area := r.Width() * r.Height(); area < bestArea {
			bestAngle, bestArea = angle, area
		}
	}
	if bestAngle == 0 {
		return
	}
	sin, cos := math.Sincos(bestAngle)
	for v := 0; v < g.NodeCount(); v++ {
		nd := g.Node(v)
		dx, dy := nd.X-c.X, nd.Y-c.Y
		nd.X = c.X + dx*cos - dy*sin
		nd.Y = c.Y + dx*sin + dy*cos
	}
}

// rotatedRect is the bounding box of the drawing after rotating positions
// by angle about c. Node extents are applied unrotated, which slightly
// overestimates wide nodes but keeps the measure cheap.
func rotatedRect(g *graph.Graph, c r2.Vec, angle float64) Rect {
	sin, cos := math.Sincos(angle)
	r := Rect{MinX: math.Inf(1), MinY: math.Inf(1), MaxX: math.Inf(-1), MaxY: math.Inf(-1)}
	for v := 0; v < g.NodeCount(); v++ {
		nd := g.Node(v)
		dx, dy := nd.X-c.X, nd.Y-c.Y
		x := c.X + dx*cos - dy*sin
		y := c.Y + dx*sin + dy*cos
		r.MinX = math.Min(r.MinX, x-nd.Width/2)
		r.MinY = math.Min(r.MinY, y-nd.Height/2)
		r.MaxX = math.Max(r.MaxX, x+nd.Width/2)
		r.MaxY = math.Max(r.MaxY, y+nd.Height/2)
	}
	return r
}

// drawingRect is the bounding box of the drawing including node extents.
func drawingRect(g *graph.Graph) Rect {
	if g.NodeCount() == 0 {
		return Rect{}
	}
	r := Rect{MinX: math.Inf(1), MinY: math.Inf(1), MaxX: math.Inf(-1), MaxY: math.Inf(-1)}
	for v := 0; v < g.NodeCount(); v++ {
		nd := g.Node(v)
		r.MinX = math.Min(r.MinX, nd.X-nd.Width/2)
		r.MinY = math.Min(r.MinY, nd.Y-nd.Height/2)
		r.MaxX = math.Max(r.MaxX, nd.X+nd.Width/2)
		r.MaxY = math.Max(r.MaxY, nd.Y+nd.Height/2)
	}
	return r
}

func translateDrawing(g *graph.Graph, dx, dy float64) {
	for v := 0; v < g.NodeCount(); v++ {
		nd := g.Node(v)
		nd.X += dx
		nd.Y += dy
	}
}

// finishPositions applies integer rounding when configured and emits the
// final positions through set.
func finishPositions(opts *Options, g *graph.Graph, set SetPositionFunc) {
	for v := 0; v < g.NodeCount(); v++ {
		nd := g.Node(v)
		if opts.AllowedPositions == PositionsInteger {
			nd.X, nd.Y = math.Round(nd.X), math.Round(nd.Y)
		}
		if set != nil {
			set(v, r2.Vec{X: nd.X, Y: nd.Y})
		}
	}
}
