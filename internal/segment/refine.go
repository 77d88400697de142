package segment

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Faultbox/toothseg/internal/mesh"
	"github.com/Faultbox/toothseg/internal/spatial"
	"github.com/Faultbox/toothseg/internal/spline"
	"github.com/Faultbox/toothseg/pkg/math"
)

// RefineContours replaces long sections by a spline through every
// ControlStep-th vertex, snapping the sampled curve back to its nearest
// mesh vertices. The snapped vertices join the boundary and the region,
// skeleton, cutting point and contour stages run again before the final
// sections are smoothed.
func (s *Segmenter) RefineContours() error {
	if err := s.IndexContours(); err != nil {
		return err
	}

	refined, snapped, err := s.snapSections()
	if err != nil {
		return err
	}
	s.log.Info("contours refined",
		zap.Int("sections", len(s.State.Sections)),
		zap.Int("refined", refined),
		zap.Int("snapped", snapped),
	)

	for _, stage := range []func() error{
		s.ClassifyRegions,
		s.ExtractSkeleton,
		s.FindCuttingPoints,
		s.IndexContours,
	} {
		if err := stage(); err != nil {
			return errors.Wrap(err, "re-running after refinement")
		}
	}

	moved := s.Smooth()
	s.log.Info("contours smoothed", zap.Int("moved", moved))
	return nil
}

// snapSections marks the KNN nearest vertices of every spline sample as
// boundary, for each section of at least MinRefineLength vertices. It
// returns the number of sections refined and of vertices that newly joined
// the boundary.
func (s *Segmenter) snapSections() (refined, snapped int, err error) {
	m := s.Mesh
	ix := spatial.NewIndex(m.Positions)
	for i, section := range s.State.Sections {
		if len(section) < s.Params.MinRefineLength {
			continue
		}
		curve, err := spline.Fit(s.controlPoints(section))
		if err != nil {
			return refined, snapped, errors.Wrapf(err, "section %d", i)
		}
		for _, p := range curve.Sample(s.Params.SamplesPerSpan) {
			for _, v := range ix.Nearest(p, s.Params.KNN) {
				if !m.Boundary[v] {
					m.Boundary[v] = true
					m.Region[v] = mesh.RegionUnassigned
					snapped++
				}
			}
		}
		refined++
	}
	return refined, snapped, nil
}

// controlPoints picks every ControlStep-th vertex of a section plus its
// last vertex.
func (s *Segmenter) controlPoints(section []int) []math.Vec3 {
	step := s.Params.ControlStep
	ctrl := make([]math.Vec3, 0, len(section)/step+2)
	for i, v := range section {
		if i%step == 0 || i == len(section)-1 {
			ctrl = append(ctrl, s.Mesh.Positions[v])
		}
	}
	return ctrl
}

// Smooth moves the interior vertices of every section long enough for a
// full window to the mean of the 2h+1 positions around them, h being
// SmoothHalfWindow. Updates happen in place, so later vertices see the
// already moved positions of earlier ones. The first and last h vertices,
// cutting points included, never move. It returns the number of vertices
// moved.
func (s *Segmenter) Smooth() int {
	h := s.Params.SmoothHalfWindow
	if h == 0 {
		return 0
	}
	pos := s.Mesh.Positions
	window := make([]math.Vec3, 2*h+1)
	moved := 0
	for _, section := range s.State.Sections {
		n := len(section)
		if n < 2*h+1 {
			continue
		}
		for i := h; i < n-h; i++ {
			for j := range window {
				window[j] = pos[section[i-h+j]]
			}
			pos[section[i]] = math.Mean(window)
			moved++
		}
	}
	return moved
}
