package mesh

import "fmt"

// Region labels a non-boundary vertex. The zero value is RegionUnassigned;
// tooth labels start at regionToothBase and are contiguous.
type Region int32

// Region constants.
const (
	RegionUnassigned Region = iota
	RegionTemp
	RegionGingiva
	regionToothBase
)

// Tooth returns the region label of tooth k.
func Tooth(k int) Region {
	return regionToothBase + Region(k)
}

// IsTooth reports whether r labels a tooth.
func (r Region) IsTooth() bool {
	return r >= regionToothBase
}

// ToothIndex returns k for Tooth(k), or -1 for other labels.
func (r Region) ToothIndex() int {
	if !r.IsTooth() {
		return -1
	}
	return int(r - regionToothBase)
}

// String returns a human-readable region name.
func (r Region) String() string {
	switch {
	case r == RegionUnassigned:
		return "Unassigned"
	case r == RegionTemp:
		return "Temp"
	case r == RegionGingiva:
		return "Gingiva"
	case r.IsTooth():
		return fmt.Sprintf("Tooth(%d)", r.ToothIndex())
	default:
		return fmt.Sprintf("Unknown(%d)", int32(r))
	}
}

// VertexType is the topological role of a boundary vertex.
type VertexType int32

// Vertex type constants. Disk types are built with Disk.
const (
	VertexUnclassified VertexType = iota
	VertexCenter
	VertexComplex
	vertexDiskBase
)

// Disk returns the disk type bordering region r. r must be RegionGingiva or
// a tooth label.
func Disk(r Region) VertexType {
	if r.IsTooth() {
		return vertexDiskBase + 1 + VertexType(r.ToothIndex())
	}
	return vertexDiskBase
}

// IsDisk reports whether t is any disk type.
func (t VertexType) IsDisk() bool {
	return t >= vertexDiskBase
}

// DiskCategory returns 0 for Disk(Gingiva) and k+1 for Disk(Tooth(k)).
func (t VertexType) DiskCategory() int {
	if !t.IsDisk() {
		return -1
	}
	return int(t - vertexDiskBase)
}

// DiskRegion returns the region a disk vertex borders.
func (t VertexType) DiskRegion() Region {
	c := t.DiskCategory()
	switch {
	case c < 0:
		return RegionUnassigned
	case c == 0:
		return RegionGingiva
	default:
		return Tooth(c - 1)
	}
}

// String returns a human-readable vertex type name.
func (t VertexType) String() string {
	switch {
	case t == VertexUnclassified:
		return "Unclassified"
	case t == VertexCenter:
		return "Center"
	case t == VertexComplex:
		return "Complex"
	case t.IsDisk():
		return fmt.Sprintf("Disk(%s)", t.DiskRegion())
	default:
		return fmt.Sprintf("Unknown(%d)", int32(t))
	}
}

// EdgeType classifies a boundary vertex by the regions it separates.
type EdgeType uint8

// Edge type constants.
const (
	EdgeUnset EdgeType = iota
	EdgeToothGingiva
	EdgeToothTooth
	EdgeCuttingPoint
)

// String returns a human-readable edge type name.
func (e EdgeType) String() string {
	switch e {
	case EdgeUnset:
		return "Unset"
	case EdgeToothGingiva:
		return "ToothGingiva"
	case EdgeToothTooth:
		return "ToothTooth"
	case EdgeCuttingPoint:
		return "CuttingPoint"
	default:
		return fmt.Sprintf("Unknown(%d)", e)
	}
}
