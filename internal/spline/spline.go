// Package spline fits parametric cubic curves through ordered 3D points.
package spline

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/interp"

	"github.com/Faultbox/toothseg/pkg/math"
)

// ErrTooFewPoints is returned when a curve is fitted through fewer than
// three control points.
var ErrTooFewPoints = errors.New("spline needs at least 3 control points")

// Curve is a natural cubic spline per axis, parameterized by control point
// index: control point i sits at t = i.
type Curve struct {
	x, y, z interp.NaturalCubic
	n       int
}

// Fit builds a curve through the control points in order.
func Fit(control []math.Vec3) (*Curve, error) {
	if len(control) < 3 {
		return nil, errors.Wrapf(ErrTooFewPoints, "got %d", len(control))
	}
	ts := make([]float64, len(control))
	xs := make([]float64, len(control))
	ys := make([]float64, len(control))
	zs := make([]float64, len(control))
	for i, p := range control {
		ts[i] = float64(i)
		xs[i], ys[i], zs[i] = p.X, p.Y, p.Z
	}

	c := &Curve{n: len(control)}
	if err := c.x.Fit(ts, xs); err != nil {
		return nil, errors.Wrap(err, "fitting x")
	}
	if err := c.y.Fit(ts, ys); err != nil {
		return nil, errors.Wrap(err, "fitting y")
	}
	if err := c.z.Fit(ts, zs); err != nil {
		return nil, errors.Wrap(err, "fitting z")
	}
	return c, nil
}

// At evaluates the curve at parameter t in [0, n-1].
func (c *Curve) At(t float64) math.Vec3 {
	return math.Vec3{X: c.x.Predict(t), Y: c.y.Predict(t), Z: c.z.Predict(t)}
}

// Sample evaluates (n-1)*perSpan points at t = i/perSpan. The final control
// point itself is not included.
func (c *Curve) Sample(perSpan int) []math.Vec3 {
	count := (c.n - 1) * perSpan
	out := make([]math.Vec3, count)
	for i := range out {
		out[i] = c.At(float64(i) / float64(perSpan))
	}
	return out
}
