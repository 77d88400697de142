package mesh_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/toothseg/internal/mesh"
	"github.com/Faultbox/toothseg/internal/mesh/meshtest"
	"github.com/Faultbox/toothseg/pkg/math"
)

func TestNewRejectsBadFaces(t *testing.T) {
	positions := []math.Vec3{{}, {X: 1}, {Y: 1}}

	_, err := mesh.New(nil, nil)
	assert.ErrorIs(t, err, mesh.ErrNoVertices)

	_, err = mesh.New(positions, [][3]int{{0, 1, 3}})
	assert.ErrorIs(t, err, mesh.ErrFaceIndex)

	_, err = mesh.New(positions, [][3]int{{0, 1, 1}})
	assert.ErrorIs(t, err, mesh.ErrDegenerateFace)
}

func TestRingsAreCyclic(t *testing.T) {
	p := meshtest.NewPolar(t, 3, 12, meshtest.ToothRings(3, 2))
	m := p.Mesh

	adjacent := func(a, b int) bool {
		for _, nb := range m.Neighbors(a) {
			if nb == b {
				return true
			}
		}
		return false
	}

	for v := 0; v < m.NumVertices(); v++ {
		ring := m.Neighbors(v)
		require.NotEmpty(t, ring, "vertex %d", v)
		for i := 0; i+1 < len(ring); i++ {
			assert.True(t, adjacent(ring[i], ring[i+1]), "vertex %d: ring[%d]=%d and ring[%d]=%d not adjacent", v, i, ring[i], i+1, ring[i+1])
		}
		if !m.IsMeshBoundary(v) {
			assert.True(t, adjacent(ring[len(ring)-1], ring[0]), "vertex %d: ring does not close", v)
		}
	}

	assert.Len(t, m.Neighbors(p.Center()), 12)
	assert.Len(t, m.Neighbors(p.ID(2, 5)), 6)
	assert.Len(t, m.Neighbors(p.ID(0, 5)), 5)
}

func TestMeshBoundaryPredicate(t *testing.T) {
	rings := meshtest.ToothRings(3, 2)
	p := meshtest.NewPolar(t, 3, 8, rings)
	outer := len(rings) - 1

	for v := 0; v < p.Mesh.NumVertices(); v++ {
		want := v >= p.ID(outer, 0)
		assert.Equal(t, want, p.Mesh.IsMeshBoundary(v), "vertex %d", v)
	}
}

func TestBoundsAndCounts(t *testing.T) {
	p := meshtest.NewPolar(t, 3, 8, meshtest.ToothRings(3, 2))
	m := p.Mesh

	b := m.Bounds()
	assert.InDelta(t, 5, b.Max.X, 1e-9)
	assert.InDelta(t, -2, b.Min.Z, 1e-9)
	assert.InDelta(t, 3, b.Max.Z, 1e-9)

	meshtest.MarkBoundary(m, p.RingIDs(meshtest.SeamRing))
	assert.Equal(t, 8, m.CountBoundary())
	assert.Equal(t, 2, m.BoundaryNeighbors(p.ID(meshtest.SeamRing, 3)))
	assert.Equal(t, 2, m.BoundaryNeighbors(p.ID(meshtest.SeamRing+1, 3)))
}

func TestSetAttributes(t *testing.T) {
	p := meshtest.NewPolar(t, 3, 8, meshtest.ToothRings(3, 1))
	m := p.Mesh

	err := m.SetAttributes(mesh.NewAttributes(3))
	assert.ErrorIs(t, err, mesh.ErrAttributeSize)

	a := mesh.NewAttributes(m.NumVertices())
	a.Boundary[4] = true
	a.Region[5] = mesh.Tooth(2)
	require.NoError(t, m.SetAttributes(a))

	a.Boundary[4] = false
	assert.True(t, m.Boundary[4], "SetAttributes must copy")
	assert.Equal(t, mesh.Tooth(2), m.Region[5])

	assert.ErrorIs(t, m.SetCurvature(make([]float64, 2), make([]bool, 2)), mesh.ErrAttributeSize)
}

func TestTypeStrings(t *testing.T) {
	tests := []struct {
		got  string
		want string
	}{
		{mesh.RegionGingiva.String(), "Gingiva"},
		{mesh.Tooth(3).String(), "Tooth(3)"},
		{mesh.Disk(mesh.RegionGingiva).String(), "Disk(Gingiva)"},
		{mesh.Disk(mesh.Tooth(1)).String(), "Disk(Tooth(1))"},
		{mesh.VertexComplex.String(), "Complex"},
		{mesh.EdgeCuttingPoint.String(), "CuttingPoint"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.got)
	}

	assert.Equal(t, 0, mesh.Disk(mesh.RegionGingiva).DiskCategory())
	assert.Equal(t, 3, mesh.Disk(mesh.Tooth(2)).DiskCategory())
	assert.Equal(t, mesh.Tooth(2), mesh.Disk(mesh.Tooth(2)).DiskRegion())
	assert.Equal(t, -1, mesh.RegionTemp.ToothIndex())
}
