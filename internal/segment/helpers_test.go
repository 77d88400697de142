package segment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/toothseg/internal/mesh"
	"github.com/Faultbox/toothseg/internal/mesh/meshtest"
)

const seam = meshtest.SeamRing

func newSegmenter(t *testing.T, p *meshtest.Polar, params Params) *Segmenter {
	t.Helper()
	s, err := New(p.Mesh, params, nil)
	require.NoError(t, err)
	return s
}

// singleTooth is a crown whose seam ring and first gum ring have negative
// curvature.
func singleTooth(t *testing.T) *meshtest.Polar {
	t.Helper()
	p := meshtest.NewPolar(t, 3, 48, meshtest.ToothRings(3, 6))
	meshtest.SetCurvature(p.Mesh, p.RingIDs(seam), p.RingIDs(seam+1))
	return p
}

// twoTeeth splits the crown into two halves with grooves down columns 0 and
// 24 that meet at the apex.
func twoTeeth(t *testing.T) *meshtest.Polar {
	t.Helper()
	p := meshtest.NewPolar(t, 3, 48, meshtest.ToothRings(3, 6))
	meshtest.SetCurvature(p.Mesh,
		p.RingIDs(seam),
		p.Column(0, 0, seam-1),
		p.Column(24, 0, seam-1),
		[]int{p.Center()},
	)
	return p
}

func twoTeethParams() Params {
	params := DefaultParams()
	params.DilationPasses = 0
	return params
}

func boundaryIDs(s *Segmenter) []int {
	var ids []int
	for v, b := range s.Mesh.Boundary {
		if b {
			ids = append(ids, v)
		}
	}
	return ids
}

// assertCurveNetwork checks that the boundary is one vertex wide. Every
// boundary vertex is a cutting point, has exactly two boundary neighbours,
// or closes a boundary triangle next to a cutting point. No two cutting
// points touch and no disk vertex is left.
func assertCurveNetwork(t *testing.T, s *Segmenter) {
	t.Helper()
	m := s.Mesh
	for v, b := range m.Boundary {
		if !b {
			continue
		}
		assert.False(t, m.VertexType[v].IsDisk(), "vertex %d is %v", v, m.VertexType[v])
		nextToCut := false
		for _, nb := range m.Neighbors(v) {
			if m.Boundary[nb] && m.EdgeType[nb] == mesh.EdgeCuttingPoint {
				nextToCut = true
			}
		}
		if m.EdgeType[v] == mesh.EdgeCuttingPoint {
			assert.False(t, nextToCut, "cutting point %d touches another", v)
			assert.Greater(t, m.BoundaryNeighbors(v), 2, "cutting point %d", v)
			continue
		}
		n := m.BoundaryNeighbors(v)
		if n == 2 {
			continue
		}
		assert.Greater(t, n, 2, "vertex %d has %d boundary neighbours", v, n)
		assert.True(t, nextToCut, "vertex %d has %d boundary neighbours and no adjacent cutting point", v, n)
	}
}
