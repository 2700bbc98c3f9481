package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/okanele/orrery/pkg/cache"
	"github.com/okanele/orrery/pkg/drawing"
	"github.com/okanele/orrery/pkg/errors"
	"github.com/okanele/orrery/pkg/graph"
	"github.com/okanele/orrery/pkg/layout/fmmm"
	"github.com/okanele/orrery/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete load → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)

	result := &Result{
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: Load
	loadStart := time.Now()
	g, loadHit, err := r.LoadWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.Graph = g
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.NodeCount = g.NodeCount()
	result.Stats.EdgeCount = g.EdgeCount()
	result.CacheInfo.LoadHit = loadHit

	comps, _ := g.ConnectedComponents()
	result.Stats.Components = len(comps)

	// Compute graph hash for cache keys and API responses
	if graphData, err := MarshalGraph(g); err == nil {
		result.GraphHash = cache.Hash(graphData)
	}

	r.Logger.Info("loaded graph",
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
		"components", result.Stats.Components,
		"duration", result.Stats.LoadTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	d, drawingHit, err := r.LayoutWithCacheInfo(ctx, g, opts)
	if err != nil {
		return nil, err
	}
	result.Drawing = d
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.DrawingHit = drawingHit

	r.Logger.Info("computed layout",
		"canvas", []float64{d.Width, d.Height},
		"seed", d.Seed,
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, d, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// LoadWithCacheInfo loads the input graph with caching and returns cache hit info.
func (r *Runner) LoadWithCacheInfo(ctx context.Context, opts Options) (*graph.Graph, bool, error) {
	if err := opts.ValidateForLoad(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	source := opts.Input
	if source == "" {
		source = "inline"
	}
	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, source)
	start := time.Now()

	raw, format, err := readInput(opts)
	if err != nil {
		hooks.OnLoadComplete(ctx, source, 0, time.Since(start), err)
		return nil, false, err
	}

	// The cache stores the canonical JSON form regardless of input format.
	cacheKey := r.Keyer.GraphKey(cache.Hash(raw), opts.GraphKeyOpts())
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, "graph")
			if g, err := ParseGraph(data, InputJSON); err == nil {
				hooks.OnLoadComplete(ctx, source, g.NodeCount(), time.Since(start), nil)
				return g, true, nil
			}
			// Corrupt entry, fall through to reparse
		} else {
			observability.Cache().OnCacheMiss(ctx, "graph")
		}
	}

	g, err := ParseGraph(raw, format)
	if err != nil {
		hooks.OnLoadComplete(ctx, source, 0, time.Since(start), err)
		return nil, false, err
	}

	if !opts.Refresh {
		if data, err := MarshalGraph(g); err == nil {
			_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLGraph)
			observability.Cache().OnCacheSet(ctx, "graph", len(data))
		}
	}

	hooks.OnLoadComplete(ctx, source, g.NodeCount(), time.Since(start), nil)
	return g, false, nil
}

// Load is a convenience wrapper that calls LoadWithCacheInfo and discards the cache hit info.
func (r *Runner) Load(ctx context.Context, opts Options) (*graph.Graph, error) {
	g, _, err := r.LoadWithCacheInfo(ctx, opts)
	return g, err
}

// LayoutWithCacheInfo computes a drawing with caching and returns cache hit info.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, g *graph.Graph, opts Options) (drawing.Drawing, bool, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return drawing.Drawing{}, false, err
	}
	r.applyLogger(&opts)

	// Compute cache key
	graphData, err := MarshalGraph(g)
	if err != nil {
		return drawing.Drawing{}, false, errors.Wrap(errors.ErrCodeInternal, err, "serialize graph for cache key")
	}
	cacheKey := r.Keyer.DrawingKey(cache.Hash(graphData), opts.DrawingKeyOpts())

	// Try cache first
	if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
		observability.Cache().OnCacheHit(ctx, "drawing")
		if d, err := drawing.Unmarshal(data); err == nil {
			return d, true, nil
		}
		// If deserialization fails, fall through to recompute
	} else {
		observability.Cache().OnCacheMiss(ctx, "drawing")
	}

	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, g.NodeCount(), g.EdgeCount())
	start := time.Now()

	comps, _ := g.ConnectedComponents()
	engineOpts := opts.EngineOptions()

	// Lay out a copy so the caller's graph keeps its original positions.
	work := g.Clone()
	rect, err := fmmm.LayoutContext(log.WithContext(ctx, opts.Logger), engineOpts, work, nil, nil, nil)
	if err != nil {
		hooks.OnLayoutComplete(ctx, len(comps), time.Since(start), err)
		return drawing.Drawing{}, false, err
	}
	d := drawing.FromGraph(work, rect.Width(), rect.Height(), engineOpts.RandSeed)
	hooks.OnLayoutComplete(ctx, len(comps), time.Since(start), nil)

	// Cache the result
	if data, err := drawing.Marshal(d); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLDrawing)
		observability.Cache().OnCacheSet(ctx, "drawing", len(data))
	}

	return d, false, nil
}

// Layout is a convenience wrapper that calls LayoutWithCacheInfo and discards the cache hit info.
func (r *Runner) Layout(ctx context.Context, g *graph.Graph, opts Options) (drawing.Drawing, error) {
	d, _, err := r.LayoutWithCacheInfo(ctx, g, opts)
	return d, err
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, d drawing.Drawing, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	// Compute cache key from drawing data
	drawingData, err := drawing.Marshal(d)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInternal, err, "serialize drawing for cache key")
	}
	drawingHash := cache.Hash(drawingData)

	// Try to get all formats from cache
	allCached := true
	artifacts := make(map[string][]byte)

	for _, format := range opts.Formats {
		cacheKey := r.Keyer.ArtifactKey(drawingHash, opts.ArtifactKeyOpts(format))
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			artifacts[format] = data
		} else {
			allCached = false
			break
		}
	}

	if allCached && len(artifacts) == len(opts.Formats) {
		observability.Cache().OnCacheHit(ctx, "artifact")
		return artifacts, true, nil
	}
	observability.Cache().OnCacheMiss(ctx, "artifact")

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()

	rendered, err := renderFormats(ctx, &d, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	// Cache each format
	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(drawingHash, opts.ArtifactKeyOpts(format))
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact)
		observability.Cache().OnCacheSet(ctx, "artifact", len(data))
	}

	return rendered, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, d drawing.Drawing, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, d, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
