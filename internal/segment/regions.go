package segment

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Faultbox/toothseg/internal/mesh"
)

// ClassifyRegions labels every non-boundary vertex. The gingiva is flooded
// from the first vertex on the gum side of the plane; every other connected
// region is measured first, then either committed as the next tooth or, when
// smaller than MinRegionFraction of the mesh, absorbed into the boundary.
func (s *Segmenter) ClassifyRegions() error {
	m := s.Mesh
	for v := range m.Region {
		m.Region[v] = mesh.RegionUnassigned
	}
	m.ResetGrowVisited()

	seed := -1
	for v, b := range m.Boundary {
		if !b && s.State.Plane.SignedDistance(m.Positions[v]) > 0 {
			seed = v
			break
		}
	}
	if seed < 0 {
		return errors.Wrapf(ErrNoGingivaSeed, "plane point %v normal %v", s.State.Plane.Point, s.State.Plane.Normal)
	}
	gingiva := s.grow(seed, mesh.RegionGingiva)

	minSize := s.Params.MinRegionFraction * float64(m.NumVertices())
	teeth, absorbed, absorbedVertices := 0, 0, 0
	for v := range m.Boundary {
		if m.Boundary[v] || m.GrowVisited[v] {
			continue
		}
		size := s.measure(v)
		if float64(size) < minSize {
			s.absorb(v)
			absorbed++
			absorbedVertices += size
			continue
		}
		s.grow(v, mesh.Tooth(teeth))
		teeth++
	}

	s.State.ToothCount = teeth
	s.State.BoundaryCount = m.CountBoundary()
	s.log.Info("regions classified",
		zap.Int("seed", seed),
		zap.Int("gingiva", gingiva),
		zap.Int("teeth", teeth),
		zap.Int("absorbed_regions", absorbed),
		zap.Int("absorbed_vertices", absorbedVertices),
		zap.Int("boundary", s.State.BoundaryCount),
	)
	return nil
}

// grow floods the non-boundary component of seed with label and returns its
// size.
func (s *Segmenter) grow(seed int, label mesh.Region) int {
	m := s.Mesh
	return s.flood(seed, func(v int) {
		m.Region[v] = label
	})
}

// measure returns the size of the non-boundary component of seed, leaving
// its grow marks cleared.
func (s *Segmenter) measure(seed int) int {
	m := s.Mesh
	var members []int
	n := s.flood(seed, func(v int) {
		m.Region[v] = mesh.RegionTemp
		members = append(members, v)
	})
	for _, v := range members {
		m.GrowVisited[v] = false
	}
	return n
}

// absorb turns the non-boundary component of seed into boundary.
func (s *Segmenter) absorb(seed int) int {
	m := s.Mesh
	return s.flood(seed, func(v int) {
		m.Boundary[v] = true
		m.Region[v] = mesh.RegionUnassigned
	})
}

// flood visits seed and every unvisited non-boundary vertex reachable from
// it without crossing the boundary, breadth first. visit runs once per
// vertex after it is marked. The boundary test uses the flags as they are
// when a neighbor is reached, so absorbing floods stay inside their
// component.
func (s *Segmenter) flood(seed int, visit func(v int)) int {
	m := s.Mesh
	m.GrowVisited[seed] = true
	visit(seed)
	count := 1

	queue := newFIFO(seed)
	for {
		v, ok := queue.pop()
		if !ok {
			break
		}
		for _, nb := range m.Neighbors(v) {
			if m.Boundary[nb] || m.GrowVisited[nb] {
				continue
			}
			m.GrowVisited[nb] = true
			visit(nb)
			queue.push(nb)
			count++
		}
	}
	return count
}
