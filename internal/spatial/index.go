// Package spatial answers nearest-neighbor queries over mesh vertices.
package spatial

import (
	"sort"

	"gonum.org/v1/gonum/spatial/kdtree"

	"github.com/Faultbox/toothseg/pkg/math"
)

// point is a mesh vertex position tagged with its vertex id.
type point struct {
	pos [3]float64
	id  int
}

// Compare implements kdtree.Comparable.
func (p point) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	return p.pos[d] - c.(point).pos[d]
}

// Dims implements kdtree.Comparable.
func (p point) Dims() int { return 3 }

// Distance returns the squared Euclidean distance.
func (p point) Distance(c kdtree.Comparable) float64 {
	q := c.(point)
	dx := p.pos[0] - q.pos[0]
	dy := p.pos[1] - q.pos[1]
	dz := p.pos[2] - q.pos[2]
	return dx*dx + dy*dy + dz*dz
}

// points implements kdtree.Interface.
type points []point

func (p points) Index(i int) kdtree.Comparable { return p[i] }
func (p points) Len() int                      { return len(p) }
func (p points) Slice(start, end int) kdtree.Interface {
	return p[start:end]
}
func (p points) Pivot(d kdtree.Dim) int {
	return plane{points: p, dim: d}.Pivot()
}

// plane sorts points along one dimension for median partitioning.
type plane struct {
	points
	dim kdtree.Dim
}

func (p plane) Less(i, j int) bool {
	return p.points[i].pos[p.dim] < p.points[j].pos[p.dim]
}
func (p plane) Swap(i, j int) {
	p.points[i], p.points[j] = p.points[j], p.points[i]
}
func (p plane) Slice(start, end int) kdtree.SortSlicer {
	p.points = p.points[start:end]
	return p
}
func (p plane) Pivot() int {
	return kdtree.Partition(p, kdtree.MedianOfMedians(p))
}

// Index is a k-d tree over a fixed set of reference points.
type Index struct {
	tree *kdtree.Tree
	size int
}

// NewIndex builds an index over positions. Results refer to positions by
// slice index.
func NewIndex(positions []math.Vec3) *Index {
	pts := make(points, len(positions))
	for i, p := range positions {
		pts[i] = point{pos: p.Array(), id: i}
	}
	ix := &Index{size: len(pts)}
	if len(pts) > 0 {
		ix.tree = kdtree.New(pts, false)
	}
	return ix
}

// Len returns the number of indexed points.
func (ix *Index) Len() int {
	return ix.size
}

// Nearest returns the ids of the k points closest to q, nearest first.
// Fewer ids are returned when the index holds fewer than k points.
func (ix *Index) Nearest(q math.Vec3, k int) []int {
	if k <= 0 || ix.size == 0 {
		return nil
	}
	keep := kdtree.NewNKeeper(k)
	ix.tree.NearestSet(keep, point{pos: q.Array(), id: -1})

	found := make([]kdtree.ComparableDist, 0, k)
	for _, c := range keep.Heap {
		// NKeeper seeds its heap with a nil sentinel at +Inf.
		if c.Comparable == nil {
			continue
		}
		found = append(found, c)
	}
	sort.Slice(found, func(i, j int) bool {
		if found[i].Dist != found[j].Dist {
			return found[i].Dist < found[j].Dist
		}
		return found[i].Comparable.(point).id < found[j].Comparable.(point).id
	})

	ids := make([]int, len(found))
	for i, c := range found {
		ids[i] = c.Comparable.(point).id
	}
	return ids
}
