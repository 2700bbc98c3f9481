// Package pipeline provides the core layout pipeline for orrery.
//
// This package implements the complete load → layout → render pipeline
// that is shared by the CLI and the API. Centralizing it keeps caching
// and validation behavior identical across all entry points.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Parse a graph from a JSON or edge-list source
//  2. Layout: Compute node positions with the multilevel force engine
//  3. Render: Generate output in various formats (SVG, PNG, DOT, JSON)
//
// Each stage can be run independently or as part of the complete
// pipeline, and each stage consults the cache before doing work.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Input:   "graph.json",
//	    Formats: []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"encoding/json"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/okanele/orrery/pkg/cache"
	"github.com/okanele/orrery/pkg/drawing"
	"github.com/okanele/orrery/pkg/errors"
	"github.com/okanele/orrery/pkg/graph"
	"github.com/okanele/orrery/pkg/layout/fmmm"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultSeed is the default random seed for reproducibility.
	DefaultSeed = uint64(100)

	// DefaultUnitEdgeLength is the target rest length of an edge in
	// layout units.
	DefaultUnitEdgeLength = 100.0
)

// Quality presets trade layout quality against speed by scaling the
// per-level iteration budgets.
const (
	QualityDraft    = "draft"
	QualityStandard = "standard"
	QualityNice     = "nice"
)

// ValidQualities is the set of supported quality presets.
var ValidQualities = map[string]bool{
	QualityDraft:    true,
	QualityStandard: true,
	QualityNice:     true,
}

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatDOT  = "dot"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatDOT:  true,
	FormatJSON: true,
}

// Input format constants.
const (
	InputJSON     = "json"
	InputEdgeList = "edgelist"
)

// ValidInputFormats is the set of supported input formats.
var ValidInputFormats = map[string]bool{
	InputJSON:     true,
	InputEdgeList: true,
}

// RenderEngine identifies the drawing backend in artifact cache keys.
const RenderEngine = "graphviz-neato"

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the layout pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Load options. Either Input (a file path) or Graph (an inline
	// graph, used by the API) must be set.
	Input       string      `json:"input,omitempty"`
	InputFormat string      `json:"input_format,omitempty"`
	Graph       *GraphInput `json:"graph,omitempty"`
	Refresh     bool        `json:"refresh,omitempty"`

	// Layout options
	Seed           uint64  `json:"seed,omitempty"`
	UnitEdgeLength float64 `json:"unit_edge_length,omitempty"`
	Quality        string  `json:"quality,omitempty"`
	SingleLevel    bool    `json:"single_level,omitempty"`
	KeepPositions  bool    `json:"keep_positions,omitempty"`

	// Render options
	Formats     []string `json:"formats,omitempty"`
	Detailed    bool     `json:"detailed,omitempty"`
	ShowWeights bool     `json:"show_weights,omitempty"`

	// Runtime options (not serialized). Engine overrides every engine
	// parameter at once; Seed, UnitEdgeLength and the quality preset
	// are still applied on top of it.
	Engine *fmmm.Options `json:"-"`
	Logger *log.Logger   `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Graph is the loaded input graph.
	Graph *graph.Graph

	// GraphHash is the content hash of the canonical graph serialization.
	GraphHash string

	// Drawing is the laid-out graph.
	Drawing drawing.Drawing

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	EdgeCount  int
	Components int
	LoadTime   time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LoadHit    bool // Whether the loaded graph came from cache
	DrawingHit bool // Whether the drawing came from cache
	RenderHit  bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that an output format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidOptions,
			"invalid format: %q (must be one of: svg, png, dot, json)", format)
	}
	return nil
}

// ValidateFormats checks that all output formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateQuality checks that a quality preset is valid.
func ValidateQuality(quality string) error {
	if !ValidQualities[quality] {
		return errors.New(errors.ErrCodeInvalidOptions,
			"invalid quality: %q (must be one of: draft, standard, nice)", quality)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the
// full pipeline. This method is idempotent - calling it multiple times has
// the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLoad(); err != nil {
		return err
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForLoad checks required fields for loading a graph.
func (o *Options) ValidateForLoad() error {
	if o.Input == "" && o.Graph == nil {
		return errors.New(errors.ErrCodeInvalidOptions, "input path or inline graph is required")
	}
	if o.InputFormat == "" {
		if o.Graph != nil {
			o.InputFormat = InputJSON
		} else {
			o.InputFormat = DetectInputFormat(o.Input)
		}
	}
	if !ValidInputFormats[o.InputFormat] {
		return errors.New(errors.ErrCodeInvalidOptions,
			"invalid input_format: %q (must be one of: json, edgelist)", o.InputFormat)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if o.UnitEdgeLength == 0 {
		o.UnitEdgeLength = DefaultUnitEdgeLength
	}
	if o.Quality == "" {
		o.Quality = QualityStandard
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if err := ValidateQuality(o.Quality); err != nil {
		return err
	}
	if o.UnitEdgeLength < 0 {
		return errors.New(errors.ErrCodeInvalidOptions,
			"unit_edge_length must be > 0, got %g", o.UnitEdgeLength)
	}
	if o.Engine != nil {
		if _, err := o.Engine.Validate(true); err != nil {
			return err
		}
	}
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	return ValidateFormats(o.Formats)
}

// EngineOptions resolves the pipeline configuration into full engine
// options. The base is either the Engine override or the engine
// defaults; Seed, UnitEdgeLength, SingleLevel, KeepPositions and the
// quality preset are applied on top.
func (o *Options) EngineOptions() *fmmm.Options {
	var eo *fmmm.Options
	if o.Engine != nil {
		c := *o.Engine
		eo = &c
	} else {
		eo = fmmm.DefaultOptions()
	}
	if o.Seed != 0 {
		eo.RandSeed = o.Seed
	}
	if o.UnitEdgeLength > 0 {
		eo.UnitEdgeLength = o.UnitEdgeLength
	}
	if o.SingleLevel {
		eo.SingleLevel = true
	}
	if o.KeepPositions {
		eo.InitialPlacementForces = fmmm.PlacementKeepPositions
	}
	switch o.Quality {
	case QualityDraft:
		eo.FixedIterations = 15
		eo.FineTuningIterations = 10
		eo.UseSimpleAlgorithmForChainsAndCycles = true
	case QualityNice:
		eo.FixedIterations = 60
		eo.FineTuningIterations = 40
	}
	return eo
}

// GraphKeyOpts returns cache key options for graph loading.
func (o *Options) GraphKeyOpts() cache.GraphKeyOpts {
	return cache.GraphKeyOpts{Format: o.InputFormat}
}

// DrawingKeyOpts returns cache key options for layout computation.
// The options hash covers every engine parameter, so any change keys
// a fresh drawing.
func (o *Options) DrawingKeyOpts() cache.DrawingKeyOpts {
	eo := o.EngineOptions()
	data, _ := json.Marshal(eo)
	return cache.DrawingKeyOpts{
		OptionsHash: cache.Hash(data),
		Seed:        eo.RandSeed,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:      format,
		Engine:      RenderEngine,
		Detailed:    o.Detailed,
		ShowWeights: o.ShowWeights,
	}
}
