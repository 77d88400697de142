package segment

import (
	"github.com/pkg/errors"

	"github.com/Faultbox/toothseg/pkg/math"
)

// Params holds the tunable constants of the pipeline.
type Params struct {
	// CurvatureThresholdFraction scales the minimum curvature into the
	// boundary threshold.
	CurvatureThresholdFraction float64
	DilationPasses             int
	// ErosionPasses run after dilation. Zero disables erosion.
	ErosionPasses int

	// PlaneOffsetFraction scales the bounding box's shortest edge into the
	// gum-side offset of the gingiva plane.
	PlaneOffsetFraction float64
	// GumDirection, when non-zero, fixes the sign of the plane normal so
	// that it points to the gum side.
	GumDirection math.Vec3

	// MinRegionFraction of all vertices is the smallest region kept as a
	// tooth. Smaller regions are absorbed into the boundary.
	MinRegionFraction float64

	MinRefineLength  int
	ControlStep      int
	SamplesPerSpan   int
	KNN              int
	SmoothHalfWindow int
}

// DefaultParams returns the values the pipeline was tuned with.
func DefaultParams() Params {
	return Params{
		CurvatureThresholdFraction: 0.01,
		DilationPasses:             6,
		ErosionPasses:              0,
		PlaneOffsetFraction:        0.2,
		MinRegionFraction:          0.001,
		MinRefineLength:            21,
		ControlStep:                10,
		SamplesPerSpan:             100,
		KNN:                        2,
		SmoothHalfWindow:           5,
	}
}

// Validate checks that the parameters can drive the pipeline.
func (p Params) Validate() error {
	switch {
	case p.DilationPasses < 0 || p.ErosionPasses < 0:
		return errors.Wrap(ErrInvalidParams, "morphology passes must not be negative")
	case p.MinRegionFraction < 0 || p.MinRegionFraction >= 1:
		return errors.Wrapf(ErrInvalidParams, "min region fraction %v out of [0, 1)", p.MinRegionFraction)
	case p.ControlStep < 1:
		return errors.Wrapf(ErrInvalidParams, "control step %d", p.ControlStep)
	case p.MinRefineLength < 2*p.ControlStep+1:
		return errors.Wrapf(ErrInvalidParams, "min refine length %d gives fewer than 3 control points", p.MinRefineLength)
	case p.SamplesPerSpan < 1:
		return errors.Wrapf(ErrInvalidParams, "samples per span %d", p.SamplesPerSpan)
	case p.KNN < 1:
		return errors.Wrapf(ErrInvalidParams, "knn %d", p.KNN)
	case p.SmoothHalfWindow < 0:
		return errors.Wrapf(ErrInvalidParams, "smooth half window %d", p.SmoothHalfWindow)
	}
	return nil
}
