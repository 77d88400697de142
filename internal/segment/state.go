package segment

import "github.com/Faultbox/toothseg/pkg/math"

// Plane is the gingiva cutting plane. Normal points to the gum side.
type Plane struct {
	Point  math.Vec3
	Normal math.Vec3
}

// SignedDistance is positive on the gum side.
func (p Plane) SignedDistance(v math.Vec3) float64 {
	return p.Normal.Dot(v.Sub(p.Point))
}

// State is the global segmentation state derived alongside the per-vertex
// attributes.
type State struct {
	BoundaryCount int
	Plane         Plane
	ToothCount    int
	// CuttingPoints are vertex ids in ascending order.
	CuttingPoints []int
	// Sections are ordered vertex ids from one cutting point to another.
	Sections [][]int
}
