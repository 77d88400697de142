// Package meshtest builds small synthetic meshes for segmentation tests.
package meshtest

import (
	gomath "math"
	"testing"

	"github.com/Faultbox/toothseg/internal/mesh"
	"github.com/Faultbox/toothseg/pkg/math"
)

// Ring is one circle of vertices in a polar mesh.
type Ring struct {
	Radius float64
	Z      float64
}

// Polar is a disc-topology mesh: a center vertex fanned to Rings[0] and quad
// strips, split along the (i,j)-(i+1,j+1) diagonal, between consecutive
// rings. The outermost ring is the open border.
type Polar struct {
	Mesh     *mesh.Mesh
	Segments int
	Rings    []Ring
}

// SeamRing is the ring index where the crown wall meets the gum in
// ToothRings.
const SeamRing = 4

// ToothRings returns a single-crown profile: a flat top, a vertical wall of
// the given radius down to the seam at z=0, then gum rings flaring out and
// down one unit per ring.
func ToothRings(radius float64, gumRings int) []Ring {
	rings := []Ring{
		{Radius: radius / 3, Z: 3},
		{Radius: radius, Z: 3},
		{Radius: radius, Z: 2},
		{Radius: radius, Z: 1},
		{Radius: radius, Z: 0},
	}
	for k := 1; k <= gumRings; k++ {
		rings = append(rings, Ring{Radius: radius + float64(k), Z: -float64(k)})
	}
	return rings
}

// NewPolar builds a polar mesh with the center at height centerZ.
func NewPolar(tb testing.TB, centerZ float64, segments int, rings []Ring) *Polar {
	tb.Helper()
	p := &Polar{Segments: segments, Rings: rings}

	positions := make([]math.Vec3, 0, 1+segments*len(rings))
	positions = append(positions, math.Vec3{Z: centerZ})
	for _, r := range rings {
		for j := 0; j < segments; j++ {
			a := 2 * gomath.Pi * float64(j) / float64(segments)
			positions = append(positions, math.Vec3{
				X: r.Radius * gomath.Cos(a),
				Y: r.Radius * gomath.Sin(a),
				Z: r.Z,
			})
		}
	}

	var faces [][3]int
	for j := 0; j < segments; j++ {
		faces = append(faces, [3]int{0, p.ID(0, j+1), p.ID(0, j)})
	}
	for i := 0; i+1 < len(rings); i++ {
		for j := 0; j < segments; j++ {
			a, b := p.ID(i, j), p.ID(i, j+1)
			c, d := p.ID(i+1, j+1), p.ID(i+1, j)
			faces = append(faces, [3]int{a, b, c}, [3]int{a, c, d})
		}
	}

	m, err := mesh.New(positions, faces)
	if err != nil {
		tb.Fatalf("building polar mesh: %v", err)
	}
	p.Mesh = m
	return p
}

// Center is the id of the apex vertex.
func (p *Polar) Center() int {
	return 0
}

// ID returns the vertex id of column col on ring. Columns wrap.
func (p *Polar) ID(ring, col int) int {
	col %= p.Segments
	if col < 0 {
		col += p.Segments
	}
	return 1 + ring*p.Segments + col
}

// RingIDs returns the vertex ids of one ring in column order.
func (p *Polar) RingIDs(ring int) []int {
	ids := make([]int, p.Segments)
	for j := range ids {
		ids[j] = p.ID(ring, j)
	}
	return ids
}

// Column returns the ids of column col from ring from to ring to inclusive.
func (p *Polar) Column(col, from, to int) []int {
	var ids []int
	for i := from; i <= to; i++ {
		ids = append(ids, p.ID(i, col))
	}
	return ids
}

// SetCurvature marks every vertex valid with curvature +1 except the low
// ones, which get -1.
func SetCurvature(m *mesh.Mesh, low ...[]int) {
	for v := range m.Curvature {
		m.Curvature[v] = 1
		m.CurvatureValid[v] = true
	}
	for _, ids := range low {
		for _, v := range ids {
			m.Curvature[v] = -1
		}
	}
}

// MarkBoundary sets the boundary flag on ids and clears it elsewhere.
func MarkBoundary(m *mesh.Mesh, ids ...[]int) {
	clear(m.Boundary)
	for _, set := range ids {
		for _, v := range set {
			m.Boundary[v] = true
		}
	}
}
