// Package mesh holds the triangle mesh graph shared by every segmentation
// stage: positions, faces, cyclic one-ring adjacency and the per-vertex
// attribute arrays the stages read and write.
package mesh

import (
	"errors"
	"fmt"

	"github.com/Faultbox/toothseg/pkg/math"
)

// Mesh errors.
var (
	ErrNoVertices     = errors.New("mesh has no vertices")
	ErrFaceIndex      = errors.New("face references a missing vertex")
	ErrDegenerateFace = errors.New("face repeats a vertex")
	ErrAttributeSize  = errors.New("attribute array length does not match vertex count")
)

// Attributes are the per-vertex segmentation attributes, stored as parallel
// arrays indexed by vertex id.
type Attributes struct {
	Curvature      []float64
	CurvatureValid []bool
	Boundary       []bool
	VertexType     []VertexType
	Region         []Region
	GrowVisited    []bool
	ContourVisited []bool
	EdgeType       []EdgeType
}

// NewAttributes allocates zeroed attributes for n vertices.
func NewAttributes(n int) Attributes {
	return Attributes{
		Curvature:      make([]float64, n),
		CurvatureValid: make([]bool, n),
		Boundary:       make([]bool, n),
		VertexType:     make([]VertexType, n),
		Region:         make([]Region, n),
		GrowVisited:    make([]bool, n),
		ContourVisited: make([]bool, n),
		EdgeType:       make([]EdgeType, n),
	}
}

// Clone returns a deep copy.
func (a Attributes) Clone() Attributes {
	return Attributes{
		Curvature:      append([]float64(nil), a.Curvature...),
		CurvatureValid: append([]bool(nil), a.CurvatureValid...),
		Boundary:       append([]bool(nil), a.Boundary...),
		VertexType:     append([]VertexType(nil), a.VertexType...),
		Region:         append([]Region(nil), a.Region...),
		GrowVisited:    append([]bool(nil), a.GrowVisited...),
		ContourVisited: append([]bool(nil), a.ContourVisited...),
		EdgeType:       append([]EdgeType(nil), a.EdgeType...),
	}
}

func (a Attributes) check(n int) error {
	lens := []int{
		len(a.Curvature), len(a.CurvatureValid), len(a.Boundary), len(a.VertexType),
		len(a.Region), len(a.GrowVisited), len(a.ContourVisited), len(a.EdgeType),
	}
	for _, l := range lens {
		if l != n {
			return fmt.Errorf("%w: got %d, want %d", ErrAttributeSize, l, n)
		}
	}
	return nil
}

// Mesh is a triangle mesh with adjacency and segmentation attributes.
// Vertex ids are stable for the lifetime of the mesh.
type Mesh struct {
	Positions []math.Vec3
	Faces     [][3]int
	Attributes

	rings  [][]int
	border []bool
	bounds math.Bounds
}

// New builds a mesh and its adjacency from positions and triangle faces.
func New(positions []math.Vec3, faces [][3]int) (*Mesh, error) {
	n := len(positions)
	if n == 0 {
		return nil, ErrNoVertices
	}

	incident := make([][][2]int, n)
	edgeFaces := make(map[[2]int]int, len(faces)*3/2)
	for fi, f := range faces {
		for k := 0; k < 3; k++ {
			if f[k] < 0 || f[k] >= n {
				return nil, fmt.Errorf("face %d: %w (%d)", fi, ErrFaceIndex, f[k])
			}
		}
		if f[0] == f[1] || f[1] == f[2] || f[0] == f[2] {
			return nil, fmt.Errorf("face %d: %w", fi, ErrDegenerateFace)
		}
		for k := 0; k < 3; k++ {
			v, a, b := f[k], f[(k+1)%3], f[(k+2)%3]
			incident[v] = append(incident[v], [2]int{a, b})
			edgeFaces[edgeKey(v, a)]++
		}
	}

	m := &Mesh{
		Positions:  positions,
		Faces:      faces,
		Attributes: NewAttributes(n),
		rings:      make([][]int, n),
		border:     make([]bool, n),
		bounds:     math.EmptyBounds(),
	}
	for e, count := range edgeFaces {
		if count == 1 {
			m.border[e[0]] = true
			m.border[e[1]] = true
		}
	}
	for v := 0; v < n; v++ {
		m.rings[v] = orderRing(incident[v])
		m.bounds = m.bounds.Extend(positions[v])
	}
	return m, nil
}

func edgeKey(a, b int) [2]int {
	if a > b {
		a, b = b, a
	}
	return [2]int{a, b}
}

// orderRing chains the opposite edges of a vertex's incident faces into its
// cyclic one-ring. Open fans start at a chain end. Vertices left over by
// non-manifold fans are appended in face order.
func orderRing(link [][2]int) []int {
	if len(link) == 0 {
		return nil
	}
	adj := make(map[int][]int, len(link)+1)
	var order []int
	for _, e := range link {
		for _, v := range e {
			if _, ok := adj[v]; !ok {
				order = append(order, v)
			}
		}
		adj[e[0]] = append(adj[e[0]], e[1])
		adj[e[1]] = append(adj[e[1]], e[0])
	}

	start := link[0][0]
	for _, v := range order {
		if len(adj[v]) == 1 {
			start = v
			break
		}
	}

	ring := make([]int, 0, len(order))
	seen := make(map[int]bool, len(order))
	for cur := start; ; {
		ring = append(ring, cur)
		seen[cur] = true
		next := -1
		for _, nb := range adj[cur] {
			if !seen[nb] {
				next = nb
				break
			}
		}
		if next < 0 {
			break
		}
		cur = next
	}
	for _, v := range order {
		if !seen[v] {
			ring = append(ring, v)
		}
	}
	return ring
}

// NumVertices returns the vertex count.
func (m *Mesh) NumVertices() int {
	return len(m.Positions)
}

// Neighbors returns the one-ring of v in cyclic order. The slice is shared;
// callers must not modify it.
func (m *Mesh) Neighbors(v int) []int {
	return m.rings[v]
}

// IsMeshBoundary reports whether v lies on an open edge of the mesh.
func (m *Mesh) IsMeshBoundary(v int) bool {
	return m.border[v]
}

// Bounds returns the bounding box of the vertex positions at build time.
func (m *Mesh) Bounds() math.Bounds {
	return m.bounds
}

// CountBoundary returns the number of boundary vertices.
func (m *Mesh) CountBoundary() int {
	n := 0
	for _, b := range m.Boundary {
		if b {
			n++
		}
	}
	return n
}

// BoundaryNeighbors returns how many neighbors of v are boundary vertices.
func (m *Mesh) BoundaryNeighbors(v int) int {
	n := 0
	for _, nb := range m.rings[v] {
		if m.Boundary[nb] {
			n++
		}
	}
	return n
}

// ResetGrowVisited clears every region-growing mark.
func (m *Mesh) ResetGrowVisited() {
	clear(m.GrowVisited)
}

// ResetContourVisited clears every contour-search mark.
func (m *Mesh) ResetContourVisited() {
	clear(m.ContourVisited)
}

// SetAttributes replaces the attribute arrays, e.g. when restoring a
// snapshot. The arrays are copied.
func (m *Mesh) SetAttributes(a Attributes) error {
	if err := a.check(m.NumVertices()); err != nil {
		return err
	}
	m.Attributes = a.Clone()
	return nil
}

// SetCurvature installs per-vertex mean curvature and validity.
func (m *Mesh) SetCurvature(mean []float64, valid []bool) error {
	n := m.NumVertices()
	if len(mean) != n || len(valid) != n {
		return fmt.Errorf("curvature: %w: got %d/%d, want %d", ErrAttributeSize, len(mean), len(valid), n)
	}
	copy(m.Curvature, mean)
	copy(m.CurvatureValid, valid)
	return nil
}
