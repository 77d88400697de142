package segment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/toothseg/internal/mesh/meshtest"
	"github.com/Faultbox/toothseg/pkg/math"
)

func seamOnly(t *testing.T) *meshtest.Polar {
	t.Helper()
	p := meshtest.NewPolar(t, 3, 48, meshtest.ToothRings(3, 6))
	meshtest.SetCurvature(p.Mesh, p.RingIDs(seam))
	meshtest.MarkBoundary(p.Mesh, p.RingIDs(seam))
	return p
}

func TestFitGingivaPlaneFacesFartherSide(t *testing.T) {
	s := newSegmenter(t, seamOnly(t), DefaultParams())

	plane, err := s.FitGingivaPlane()
	require.NoError(t, err)

	// The gum flares six units below the seam, the crown rises three.
	assert.InDelta(t, -1, plane.Normal.Z, 1e-9)
	assert.InDelta(t, 1, plane.Normal.Length(), 1e-9)
	// Offset is 0.2 of the shortest bounding box edge (z spans 9).
	assert.InDelta(t, -1.8, plane.Point.Z, 1e-9)
	assert.InDelta(t, 0, plane.Point.X, 1e-9)
	assert.InDelta(t, 0, plane.Point.Y, 1e-9)
}

func TestFitGingivaPlaneFollowsGumDirection(t *testing.T) {
	params := DefaultParams()
	params.GumDirection = math.Vec3{Z: 1}
	s := newSegmenter(t, seamOnly(t), params)

	plane, err := s.FitGingivaPlane()
	require.NoError(t, err)
	assert.InDelta(t, 1, plane.Normal.Z, 1e-9)
	assert.InDelta(t, 1.8, plane.Point.Z, 1e-9)
}

func TestFitGingivaPlaneDegenerate(t *testing.T) {
	tests := []struct {
		name string
		prep func(p *meshtest.Polar)
		want error
	}{
		{
			name: "empty boundary",
			prep: func(p *meshtest.Polar) { meshtest.MarkBoundary(p.Mesh) },
			want: ErrEmptyBoundary,
		},
		{
			name: "zero weights",
			prep: func(p *meshtest.Polar) {
				for _, v := range p.RingIDs(seam) {
					p.Mesh.Curvature[v] = 0
				}
			},
			want: ErrDegenerateWeights,
		},
		{
			name: "single vertex",
			prep: func(p *meshtest.Polar) { meshtest.MarkBoundary(p.Mesh, []int{p.ID(seam, 3)}) },
			want: ErrSingularCovariance,
		},
		{
			name: "collinear",
			prep: func(p *meshtest.Polar) { meshtest.MarkBoundary(p.Mesh, p.Column(0, 1, 3)) },
			want: ErrSingularCovariance,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := seamOnly(t)
			meshtest.SetCurvature(p.Mesh, p.RingIDs(seam), p.Column(0, 1, 3))
			tt.prep(p)
			s := newSegmenter(t, p, DefaultParams())
			_, err := s.FitGingivaPlane()
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCutGingivaRemovesGumSide(t *testing.T) {
	p := meshtest.NewPolar(t, 3, 48, meshtest.ToothRings(3, 6))
	meshtest.SetCurvature(p.Mesh, p.RingIDs(seam), p.RingIDs(seam+4))
	meshtest.MarkBoundary(p.Mesh, p.RingIDs(seam), p.RingIDs(seam+4))

	params := DefaultParams()
	params.GumDirection = math.Vec3{Z: -1}
	s := newSegmenter(t, p, params)
	require.NoError(t, s.CutGingiva())

	assert.Equal(t, 48, s.State.BoundaryCount)
	for _, v := range p.RingIDs(seam) {
		assert.True(t, p.Mesh.Boundary[v])
	}
	for _, v := range p.RingIDs(seam + 4) {
		assert.False(t, p.Mesh.Boundary[v])
	}
	for _, v := range boundaryIDs(s) {
		assert.LessOrEqual(t, s.State.Plane.SignedDistance(p.Mesh.Positions[v]), 0.0)
	}
}

func TestPlaneSignedDistance(t *testing.T) {
	pl := Plane{Point: math.Vec3{Z: -2}, Normal: math.Vec3{Z: -1}}
	assert.InDelta(t, 1, pl.SignedDistance(math.Vec3{X: 5, Z: -3}), 1e-12)
	assert.InDelta(t, -2, pl.SignedDistance(math.Vec3{Y: 1}), 1e-12)
}
