package segment

import (
	"fmt"

	"github.com/pkg/errors"
)

// Segmentation errors. Degenerate geometry and topological dead ends abort
// the current run; curvature failures never reach here, they only mark
// vertices invalid.
var (
	ErrInvalidParams      = errors.New("invalid segmentation parameters")
	ErrNoValidCurvature   = errors.New("no vertex has valid curvature")
	ErrEmptyBoundary      = errors.New("boundary is empty")
	ErrDegenerateWeights  = errors.New("boundary curvature weights sum to zero")
	ErrSingularCovariance = errors.New("boundary covariance is singular")
	ErrNoGingivaSeed      = errors.New("no non-boundary vertex on the gum side of the plane")
	ErrSkeletonStalled    = errors.New("skeleton extraction made no progress")
	ErrContourDeadEnd     = errors.New("contour walk found no next vertex")

	// ErrNotStored is wrapped by Checkpointer.Load when a stage was never
	// saved. Any other Load error means the stored snapshot is unusable.
	ErrNotStored = errors.New("stage snapshot not stored")
)

// StageError records which stage failed.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
