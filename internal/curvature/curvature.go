// Package curvature estimates per-vertex mean curvature. Estimation may fail
// for individual vertices; those are reported invalid rather than failing
// the whole mesh.
package curvature

import (
	"context"

	"github.com/Faultbox/toothseg/pkg/math"
)

// Result holds one mean curvature value and one validity flag per vertex.
// Curvature is positive on convex surface and negative in concave creases,
// assuming outward facing triangle winding.
type Result struct {
	Mean  []float64
	Valid []bool
}

// Failed returns the number of invalid vertices.
func (r Result) Failed() int {
	n := 0
	for _, ok := range r.Valid {
		if !ok {
			n++
		}
	}
	return n
}

// Oracle computes curvature for a whole mesh.
type Oracle interface {
	Estimate(ctx context.Context, positions []math.Vec3, faces [][3]int) (Result, error)
}

// Func adapts a plain function to Oracle.
type Func func(positions []math.Vec3, faces [][3]int) Result

// Estimate implements Oracle.
func (f Func) Estimate(_ context.Context, positions []math.Vec3, faces [][3]int) (Result, error) {
	return f(positions, faces), nil
}
