package segment

import (
	gomath "math"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/Faultbox/toothseg/pkg/math"
)

// rankTolerance is the eigenvalue ratio below which a covariance axis is
// treated as empty.
const rankTolerance = 1e-12

// FitGingivaPlane fits the cutting plane through the boundary. The plane
// normal is the covariance eigenvector of least spread, oriented to the gum
// side, and the plane point is the curvature weighted centroid pushed toward
// the gum by PlaneOffsetFraction of the bounding box's shortest edge.
func (s *Segmenter) FitGingivaPlane() (Plane, error) {
	m := s.Mesh
	var ids []int
	var centroid math.Vec3
	weight := 0.0
	for v, b := range m.Boundary {
		if !b {
			continue
		}
		ids = append(ids, v)
		w := gomath.Abs(m.Curvature[v])
		centroid = centroid.Add(m.Positions[v].Scale(w))
		weight += w
	}
	if len(ids) == 0 {
		return Plane{}, ErrEmptyBoundary
	}
	if !(weight > 0) {
		return Plane{}, errors.Wrapf(ErrDegenerateWeights, "%d boundary vertices", len(ids))
	}
	centroid = centroid.Scale(1 / weight)

	var cov [9]float64
	for _, v := range ids {
		d := m.Positions[v].Sub(centroid).Array()
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				cov[i*3+j] += d[i] * d[j]
			}
		}
	}
	for i := range cov {
		cov[i] /= float64(len(ids))
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(mat.NewSymDense(3, cov[:]), true); !ok {
		return Plane{}, errors.Wrapf(ErrSingularCovariance, "eigen decomposition of %d boundary vertices failed", len(ids))
	}
	// Values are ascending.
	vals := eig.Values(nil)
	if vals[2] <= 0 || vals[1] <= rankTolerance*vals[2] {
		return Plane{}, errors.Wrapf(ErrSingularCovariance, "%d boundary vertices span fewer than two axes (eigenvalues %.3g)", len(ids), vals)
	}
	var vecs mat.Dense
	eig.VectorsTo(&vecs)
	normal := math.Vec3{X: vecs.At(0, 0), Y: vecs.At(1, 0), Z: vecs.At(2, 0)}.Normalize()

	if s.gumSideNegative(normal, centroid) {
		normal = normal.Scale(-1)
	}

	offset := s.Params.PlaneOffsetFraction * m.Bounds().MinEdge()
	plane := Plane{Point: centroid.Add(normal.Scale(offset)), Normal: normal}
	s.log.Debug("gingiva plane fitted",
		zap.Int("boundary", len(ids)),
		zap.Float64s("eigenvalues", vals),
		zap.Float64("offset", offset),
	)
	return plane, nil
}

// gumSideNegative reports whether normal points away from the gum. With a
// configured gum direction the answer follows it; otherwise the gum is taken
// to be the side on which the mesh reaches farther from the centroid.
func (s *Segmenter) gumSideNegative(normal, centroid math.Vec3) bool {
	if !s.Params.GumDirection.IsZero() {
		return normal.Dot(s.Params.GumDirection) < 0
	}
	var above, below float64
	for _, p := range s.Mesh.Positions {
		d := normal.Dot(p.Sub(centroid))
		above = gomath.Max(above, d)
		below = gomath.Max(below, -d)
	}
	return below > above
}

// CutGingiva fits the gingiva plane and drops every boundary vertex on its
// gum side.
func (s *Segmenter) CutGingiva() error {
	plane, err := s.FitGingivaPlane()
	if err != nil {
		return err
	}
	s.State.Plane = plane

	m := s.Mesh
	removed := 0
	for v, b := range m.Boundary {
		if b && plane.SignedDistance(m.Positions[v]) > 0 {
			m.Boundary[v] = false
			removed++
		}
	}
	s.State.BoundaryCount = m.CountBoundary()
	point, normal := plane.Point.Array(), plane.Normal.Array()
	s.log.Info("gingiva cut",
		zap.Float64s("plane_point", point[:]),
		zap.Float64s("plane_normal", normal[:]),
		zap.Int("removed", removed),
		zap.Int("boundary", s.State.BoundaryCount),
	)
	return nil
}
