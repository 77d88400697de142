package segment

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Faultbox/toothseg/internal/mesh"
)

// IndexContours splits the boundary into sections. From every cutting point
// a walk starts along each unvisited boundary neighbor and follows vertices
// of the same edge type until it reaches a cutting point. Running it twice
// on the same attributes yields the same sections.
func (s *Segmenter) IndexContours() error {
	m := s.Mesh
	m.ResetContourVisited()

	var sections [][]int
	for _, cp := range s.State.CuttingPoints {
		for _, nb := range m.Neighbors(cp) {
			if !m.Boundary[nb] || m.ContourVisited[nb] || m.EdgeType[nb] == mesh.EdgeCuttingPoint {
				continue
			}
			m.ContourVisited[nb] = true
			section, err := s.walkSection(cp, nb)
			if err != nil {
				return err
			}
			sections = append(sections, section)
		}
	}

	s.State.Sections = sections
	s.log.Info("contours indexed",
		zap.Int("cutting_points", len(s.State.CuttingPoints)),
		zap.Int("sections", len(sections)),
	)
	return nil
}

func (s *Segmenter) walkSection(cp, first int) ([]int, error) {
	m := s.Mesh
	section := []int{cp, first}
	prev, cur := cp, first
	for {
		ring := m.Neighbors(cur)
		for _, nb := range ring {
			if nb != prev && m.Boundary[nb] && m.EdgeType[nb] == mesh.EdgeCuttingPoint {
				return append(section, nb), nil
			}
		}

		next := -1
		for _, nb := range ring {
			if nb == prev || !m.Boundary[nb] || m.ContourVisited[nb] || m.EdgeType[nb] != m.EdgeType[cur] {
				continue
			}
			next = nb
			break
		}
		if next < 0 {
			return nil, errors.Wrapf(ErrContourDeadEnd, "walk from cutting point %d stopped at vertex %d after %d vertices",
				cp, cur, len(section))
		}
		m.ContourVisited[next] = true
		section = append(section, next)
		prev, cur = cur, next
	}
}
