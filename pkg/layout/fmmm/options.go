package fmmm

import (
	"fmt"
	"strings"

	"github.com/okanele/orrery/pkg/errors"
)

// EdgeLengthMeasurement selects how node extents enter ideal edge lengths.
type EdgeLengthMeasurement int

const (
	// MeasureBoundingCircle lengthens each edge by the bounding-circle radii
	// of its endpoints, so large nodes don't overlap their neighbors.
	MeasureBoundingCircle EdgeLengthMeasurement = iota
	// MeasureMidPoint measures edge length between node centers only.
	MeasureMidPoint
)

// AllowedPositions restricts the coordinates of the final drawing.
type AllowedPositions int

const (
	// PositionsAll permits arbitrary floating point coordinates.
	PositionsAll AllowedPositions = iota
	// PositionsInteger rounds final coordinates to integers.
	PositionsInteger
)

// GalaxyChoice selects the sampling policy for picking suns during coarsening.
type GalaxyChoice int

const (
	// ChoiceUniformProb draws suns uniformly at random.
	ChoiceUniformProb GalaxyChoice = iota
	// ChoiceNonUniformProbLowerMass biases sun selection toward low-mass nodes.
	ChoiceNonUniformProbLowerMass
	// ChoiceNonUniformProbHigherMass biases sun selection toward high-mass nodes.
	ChoiceNonUniformProbHigherMass
)

// MaxIterChange controls how the per-level iteration count varies with depth.
type MaxIterChange int

const (
	// IterChangeConstant uses FixedIterations on every level.
	IterChangeConstant MaxIterChange = iota
	// IterChangeLinearlyDecreasing interpolates from MaxIterFactor×FixedIterations
	// at the coarsest level down to FixedIterations at level 0.
	IterChangeLinearlyDecreasing
	// IterChangeRapidlyDecreasing halves the budget toward finer levels.
	IterChangeRapidlyDecreasing
)

// ForceModel selects the attractive force formula.
type ForceModel int

const (
	// ModelFruchtermanReingold uses the classic d²/l attraction.
	ModelFruchtermanReingold ForceModel = iota
	// ModelNew uses the FM³ attraction d·log₂(d/l)/l.
	ModelNew
	// ModelEades uses logarithmic springs 2·ln(d/l).
	ModelEades
)

// RepulsiveForcesMethod selects between exact and approximated repulsion.
type RepulsiveForcesMethod int

const (
	// RepulsionExact computes all O(n²) pairs.
	RepulsionExact RepulsiveForcesMethod = iota
	// RepulsionGridApproximation bins nodes into a uniform grid and resolves
	// only cell-local and 3×3-neighborhood interactions.
	RepulsionGridApproximation
)

// StopCriterion selects when the per-level force iteration terminates.
type StopCriterion int

const (
	// StopFixedIterationsOrThreshold stops at the iteration budget or as soon
	// as the average force drops below Threshold, whichever comes first.
	StopFixedIterationsOrThreshold StopCriterion = iota
	// StopFixedIterations always runs the full iteration budget.
	StopFixedIterations
	// StopThreshold runs until the average force drops below Threshold.
	StopThreshold
)

// InitialPlacement selects how the coarsest level is seeded.
type InitialPlacement int

const (
	// PlacementUniformGrid places nodes on a √n×√n grid.
	PlacementUniformGrid InitialPlacement = iota
	// PlacementRandomTime places nodes randomly, seeded from the clock.
	// This mode is intentionally non-reproducible.
	PlacementRandomTime
	// PlacementRandomRandIterNr places nodes randomly, seeded from RandSeed
	// and the level number, and is reproducible.
	PlacementRandomRandIterNr
	// PlacementKeepPositions keeps the positions already stored on the graph
	// (or supplied by the initial-position callback).
	PlacementKeepPositions
)

// Options bundles all public parameters of the layout engine.
// Use [DefaultOptions] and adjust fields; call [Options.Validate] to check
// (strict) or repair (non-strict) the configuration before use. The layout
// entry points validate non-strictly on their own, so invalid values are
// silently clamped unless the caller validates strictly first.
type Options struct {
	// General
	UnitEdgeLength             float64 // > 0; target rest length of an edge
	RandSeed                   uint64
	EdgeLengthMeasurement      EdgeLengthMeasurement
	AllowedPositions           AllowedPositions
	StepsForRotatingComponents int // ≥ 0; packing orientation candidates per component

	// Multilevel
	MinGraphSize     int // ≥ 1; stop coarsening below this many nodes
	GalaxyChoice     GalaxyChoice
	NumberRandomTries int // ≥ 0; candidate draws for mass-biased sun picking
	MaxIterChange    MaxIterChange
	MaxIterFactor    int  // ≥ 1
	SingleLevel      bool // skip coarsening entirely

	// Force model
	ForceModel                 ForceModel
	SpringStrength             float64 // ≥ 0
	RepForcesStrength          float64 // ≥ 0
	RepulsiveForcesCalculation RepulsiveForcesMethod
	StopCriterion              StopCriterion
	Threshold                  float64 // ≥ 0
	FixedIterations            int     // ≥ 1
	ForceScalingFactor         float64 // > 0
	CoolTemperature            bool
	CoolValue                  float64 // 0 < v < 1 when cooling is enabled
	InitialPlacementForces     InitialPlacement

	// Post-processing
	ResizeDrawing                    bool
	ResizingScalar                   float64 // ≥ 1
	FineTuningIterations             int     // ≥ 0
	FineTuneScalar                   float64 // 0 < v ≤ 1
	AdjustPostRepStrengthDynamically bool
	PostSpringStrength               float64 // ≥ 0
	PostStrengthOfRepForces          float64 // ≥ 0

	// Repulsion approximation
	FRGridQuotient int // ≥ 1; grid side is √n / FRGridQuotient

	// Fast paths
	UseSimpleAlgorithmForChainsAndCycles bool
	NumberOfChainSmoothingRounds         int // ≥ 0
}

// DefaultOptions returns the recommended configuration.
func DefaultOptions() *Options {
	return &Options{
		UnitEdgeLength:             100,
		RandSeed:                   100,
		EdgeLengthMeasurement:      MeasureBoundingCircle,
		AllowedPositions:           PositionsInteger,
		StepsForRotatingComponents: 10,

		MinGraphSize:      50,
		GalaxyChoice:      ChoiceNonUniformProbLowerMass,
		NumberRandomTries: 20,
		MaxIterChange:     IterChangeLinearlyDecreasing,
		MaxIterFactor:     10,
		SingleLevel:       false,

		ForceModel:                 ModelNew,
		SpringStrength:             1,
		RepForcesStrength:          1,
		RepulsiveForcesCalculation: RepulsionGridApproximation,
		StopCriterion:              StopFixedIterationsOrThreshold,
		Threshold:                  0.01,
		FixedIterations:            30,
		ForceScalingFactor:         0.05,
		CoolTemperature:            false,
		CoolValue:                  0.99,
		InitialPlacementForces:     PlacementRandomRandIterNr,

		ResizeDrawing:                    true,
		ResizingScalar:                   1,
		FineTuningIterations:             20,
		FineTuneScalar:                   0.2,
		AdjustPostRepStrengthDynamically: true,
		PostSpringStrength:               2.0,
		PostStrengthOfRepForces:          0.01,

		FRGridQuotient: 2,

		UseSimpleAlgorithmForChainsAndCycles: false,
		NumberOfChainSmoothingRounds:         5,
	}
}

// Validate checks every field against its documented range.
//
// In non-strict mode, out-of-range values are clamped to safe defaults and a
// description of each repair is returned; the error is always nil.
//
// In strict mode nothing is modified; if any field is out of range a single
// aggregated INVALID_OPTIONS error listing every violation is returned.
func (o *Options) Validate(strict bool) ([]string, error) {
	var issues []string
	defaults := DefaultOptions()

	checkPositive := func(name string, v *float64, fallback float64) {
		if *v <= 0 {
			issues = append(issues, fmt.Sprintf("%s must be > 0, got %g", name, *v))
			if !strict {
				*v = fallback
			}
		}
	}
	checkNonNegative := func(name string, v *float64) {
		if *v < 0 {
			issues = append(issues, fmt.Sprintf("%s must be ≥ 0, got %g", name, *v))
			if !strict {
				*v = 0
			}
		}
	}
	checkMinInt := func(name string, v *int, lo int) {
		if *v < lo {
			issues = append(issues, fmt.Sprintf("%s must be ≥ %d, got %d", name, lo, *v))
			if !strict {
				*v = lo
			}
		}
	}

	checkPositive("unitEdgeLength", &o.UnitEdgeLength, defaults.UnitEdgeLength)
	checkMinInt("stepsForRotatingComponents", &o.StepsForRotatingComponents, 0)
	checkMinInt("minGraphSize", &o.MinGraphSize, 1)
	checkMinInt("numberRandomTries", &o.NumberRandomTries, 0)
	checkMinInt("maxIterFactor", &o.MaxIterFactor, 1)
	checkNonNegative("springStrength", &o.SpringStrength)
	checkNonNegative("repForcesStrength", &o.RepForcesStrength)
	checkNonNegative("threshold", &o.Threshold)
	checkMinInt("fixedIterations", &o.FixedIterations, 1)
	checkPositive("forceScalingFactor", &o.ForceScalingFactor, defaults.ForceScalingFactor)
	if o.CoolTemperature && (o.CoolValue <= 0 || o.CoolValue >= 1) {
		issues = append(issues, fmt.Sprintf("coolValue must be in (0,1) when cooling is enabled, got %g", o.CoolValue))
		if !strict {
			o.CoolValue = defaults.CoolValue
		}
	}
	if o.ResizingScalar < 1 {
		issues = append(issues, fmt.Sprintf("resizingScalar must be ≥ 1, got %g", o.ResizingScalar))
		if !strict {
			o.ResizingScalar = 1
		}
	}
	checkMinInt("fineTuningIterations", &o.FineTuningIterations, 0)
	if o.FineTuneScalar <= 0 || o.FineTuneScalar > 1 {
		issues = append(issues, fmt.Sprintf("fineTuneScalar must be in (0,1], got %g", o.FineTuneScalar))
		if !strict {
			o.FineTuneScalar = defaults.FineTuneScalar
		}
	}
	checkNonNegative("postSpringStrength", &o.PostSpringStrength)
	checkNonNegative("postStrengthOfRepForces", &o.PostStrengthOfRepForces)
	checkMinInt("frGridQuotient", &o.FRGridQuotient, 1)
	checkMinInt("numberOfChainSmoothingRounds", &o.NumberOfChainSmoothingRounds, 0)

	if strict && len(issues) > 0 {
		return issues, errors.New(errors.ErrCodeInvalidOptions,
			"invalid layout options: %s", strings.Join(issues, "; "))
	}
	return issues, nil
}

// clone returns a copy so the engine can repair options without mutating
// the caller's struct.
func (o *Options) clone() *Options {
	c := *o
	return &c
}
