package segment

import (
	gomath "math"

	"go.uber.org/zap"
)

// DetectBoundary seeds the boundary with vertices whose curvature falls
// below a fraction of the minimum, then runs the configured dilation and
// erosion passes. Vertices with invalid curvature never join the boundary.
func (s *Segmenter) DetectBoundary() error {
	m := s.Mesh
	lo, hi := gomath.Inf(1), gomath.Inf(-1)
	valid := 0
	for v, h := range m.Curvature {
		if !m.CurvatureValid[v] {
			continue
		}
		valid++
		lo = gomath.Min(lo, h)
		hi = gomath.Max(hi, h)
	}
	if valid == 0 {
		return ErrNoValidCurvature
	}

	threshold := lo * s.Params.CurvatureThresholdFraction
	for v, h := range m.Curvature {
		m.Boundary[v] = m.CurvatureValid[v] && h < threshold
	}
	seeded := m.CountBoundary()

	for i := 0; i < s.Params.DilationPasses; i++ {
		s.Dilate()
	}
	for i := 0; i < s.Params.ErosionPasses; i++ {
		s.Erode()
	}

	s.State.BoundaryCount = m.CountBoundary()
	s.log.Info("boundary detected",
		zap.Float64("curvature_min", lo),
		zap.Float64("curvature_max", hi),
		zap.Float64("threshold", threshold),
		zap.Int("invalid", m.NumVertices()-valid),
		zap.Int("seeded", seeded),
		zap.Int("boundary", s.State.BoundaryCount),
	)
	if s.State.BoundaryCount == 0 {
		return ErrEmptyBoundary
	}
	return nil
}

// Dilate adds every valid non-boundary vertex with more than two boundary
// neighbors. Counts are taken before any vertex is added. It returns the
// number of vertices added.
func (s *Segmenter) Dilate() int {
	m := s.Mesh
	var add []int
	for v := range m.Boundary {
		if m.Boundary[v] || !m.CurvatureValid[v] {
			continue
		}
		if m.BoundaryNeighbors(v) > 2 {
			add = append(add, v)
		}
	}
	for _, v := range add {
		m.Boundary[v] = true
	}
	s.log.Debug("dilate", zap.Int("added", len(add)))
	return len(add)
}

// Erode removes every boundary vertex with more than two non-boundary
// neighbors, counted before any vertex is removed. It returns the number
// of vertices removed.
func (s *Segmenter) Erode() int {
	m := s.Mesh
	var remove []int
	for v := range m.Boundary {
		if !m.Boundary[v] {
			continue
		}
		if len(m.Neighbors(v))-m.BoundaryNeighbors(v) > 2 {
			remove = append(remove, v)
		}
	}
	for _, v := range remove {
		m.Boundary[v] = false
	}
	s.log.Debug("erode", zap.Int("removed", len(remove)))
	return len(remove)
}
