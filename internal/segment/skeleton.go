package segment

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Faultbox/toothseg/internal/mesh"
)

// skeletonCounts tallies boundary vertex types. disk is indexed by
// VertexType.DiskCategory.
type skeletonCounts struct {
	center  int
	complex int
	disk    []int
}

// redundant is the number of vertices skeleton extraction still has to
// remove.
func (c skeletonCounts) redundant() int {
	n := c.center
	for _, d := range c.disk {
		n += d
	}
	return n
}

// ClassifyBoundary assigns a vertex type to every boundary vertex by
// counting boundary membership changes around its one-ring: none is a
// center, two is a disk and four or more is complex. Open-edge vertices and
// vertices without boundary neighbors are always disks. Disks take the
// region of their first non-boundary neighbor.
func (s *Segmenter) ClassifyBoundary() skeletonCounts {
	m := s.Mesh
	counts := skeletonCounts{disk: make([]int, s.State.ToothCount+1)}

	for v, b := range m.Boundary {
		if !b {
			continue
		}
		if m.IsMeshBoundary(v) {
			m.VertexType[v] = mesh.Disk(mesh.RegionGingiva)
			continue
		}
		ring := m.Neighbors(v)
		changes, neighbors := 0, 0
		for i, nb := range ring {
			if m.Boundary[nb] != m.Boundary[ring[(i+1)%len(ring)]] {
				changes++
			}
			if m.Boundary[nb] {
				neighbors++
			}
		}
		switch {
		case neighbors == 0:
			m.VertexType[v] = mesh.Disk(mesh.RegionGingiva)
		case changes == 0:
			m.VertexType[v] = mesh.VertexCenter
			counts.center++
		case changes == 2:
			m.VertexType[v] = mesh.Disk(mesh.RegionGingiva)
		default:
			m.VertexType[v] = mesh.VertexComplex
			counts.complex++
		}
	}

	for v, b := range m.Boundary {
		if !b || !m.VertexType[v].IsDisk() {
			continue
		}
		for _, nb := range m.Neighbors(v) {
			if m.Boundary[nb] {
				continue
			}
			if r := m.Region[nb]; r.IsTooth() {
				m.VertexType[v] = mesh.Disk(r)
			}
			break
		}
		cat := m.VertexType[v].DiskCategory()
		for cat >= len(counts.disk) {
			counts.disk = append(counts.disk, 0)
		}
		counts.disk[cat]++
	}
	return counts
}

// ExtractSkeleton thins the boundary to single-vertex-wide curves. Each round
// releases every disk vertex of one category into the region it borders and
// reclassifies, until no center or disk vertex is left.
func (s *Segmenter) ExtractSkeleton() error {
	m := s.Mesh
	counts := s.ClassifyBoundary()
	start := counts.redundant()
	rounds, released := 0, 0

	for counts.redundant() > 0 {
		progressed := false
		for cat := 0; cat < len(counts.disk); cat++ {
			if counts.disk[cat] == 0 {
				continue
			}
			target := mesh.Disk(mesh.RegionGingiva)
			if cat > 0 {
				target = mesh.Disk(mesh.Tooth(cat - 1))
			}
			region := target.DiskRegion()
			for v, b := range m.Boundary {
				if b && m.VertexType[v] == target {
					m.Boundary[v] = false
					m.Region[v] = region
					m.GrowVisited[v] = true
					released++
				}
			}
			counts = s.ClassifyBoundary()
			progressed = true
			rounds++
			if counts.redundant() == 0 {
				break
			}
		}
		if !progressed {
			return errors.Wrapf(ErrSkeletonStalled, "%d center vertices have no disk neighbors left", counts.center)
		}
	}

	s.State.BoundaryCount = m.CountBoundary()
	s.log.Info("skeleton extracted",
		zap.Int("redundant", start),
		zap.Int("released", released),
		zap.Int("rounds", rounds),
		zap.Int("complex", counts.complex),
		zap.Int("boundary", s.State.BoundaryCount),
	)
	return nil
}
