package segment

import (
	"go.uber.org/zap"

	"github.com/Faultbox/toothseg/internal/mesh"
)

// FindCuttingPoints types every boundary vertex by the regions around it. A
// vertex touching the gingiva with more than two boundary neighbors is a
// junction and becomes a cutting point unless a neighbor already is one.
// Vertices are visited in id order, so the first vertex of a junction wins.
func (s *Segmenter) FindCuttingPoints() error {
	m := s.Mesh
	for v, b := range m.Boundary {
		if b {
			m.EdgeType[v] = mesh.EdgeToothGingiva
		} else {
			m.EdgeType[v] = mesh.EdgeUnset
		}
	}

	var cuts []int
	toothTooth := 0
	for v, b := range m.Boundary {
		if !b {
			continue
		}
		gum, neighbors, nearCut := false, 0, false
		for _, nb := range m.Neighbors(v) {
			if m.Boundary[nb] {
				neighbors++
				if m.EdgeType[nb] == mesh.EdgeCuttingPoint {
					nearCut = true
				}
				continue
			}
			if m.Region[nb] == mesh.RegionGingiva {
				gum = true
			}
		}
		switch {
		case !gum:
			m.EdgeType[v] = mesh.EdgeToothTooth
			toothTooth++
		case neighbors > 2 && !nearCut:
			m.EdgeType[v] = mesh.EdgeCuttingPoint
			cuts = append(cuts, v)
		default:
			m.EdgeType[v] = mesh.EdgeToothGingiva
		}
	}

	s.State.CuttingPoints = cuts
	s.log.Info("cutting points found",
		zap.Int("cutting_points", len(cuts)),
		zap.Int("tooth_tooth", toothTooth),
	)
	return nil
}
