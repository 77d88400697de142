package segment

import (
	"github.com/pkg/errors"

	"github.com/Faultbox/toothseg/internal/mesh"
	"github.com/Faultbox/toothseg/pkg/math"
)

// Snapshot is everything a stage leaves behind: the global state, the
// per-vertex attributes and the vertex positions, which refinement moves.
type Snapshot struct {
	Stage      Stage           `cbor:"stage"`
	State      State           `cbor:"state"`
	Positions  []math.Vec3     `cbor:"positions"`
	Attributes mesh.Attributes `cbor:"attributes"`
}

// Snapshot copies the current result under the given stage name.
func (s *Segmenter) Snapshot(stage Stage) *Snapshot {
	st := s.State
	st.CuttingPoints = append([]int(nil), s.State.CuttingPoints...)
	st.Sections = make([][]int, len(s.State.Sections))
	for i, sec := range s.State.Sections {
		st.Sections[i] = append([]int(nil), sec...)
	}
	return &Snapshot{
		Stage:      stage,
		State:      st,
		Positions:  append([]math.Vec3(nil), s.Mesh.Positions...),
		Attributes: s.Mesh.Attributes.Clone(),
	}
}

// Restore installs a snapshot taken from a mesh with the same vertex count.
func (s *Segmenter) Restore(snap *Snapshot) error {
	if len(snap.Positions) != s.Mesh.NumVertices() {
		return errors.Wrapf(mesh.ErrAttributeSize, "snapshot %s has %d positions, mesh has %d",
			snap.Stage, len(snap.Positions), s.Mesh.NumVertices())
	}
	if err := s.Mesh.SetAttributes(snap.Attributes); err != nil {
		return errors.Wrapf(err, "snapshot %s", snap.Stage)
	}
	copy(s.Mesh.Positions, snap.Positions)
	s.State = snap.State
	return nil
}

// Labels returns one label per vertex: the edge type of boundary vertices,
// the region of the rest.
func (s *Segmenter) Labels() []string {
	m := s.Mesh
	out := make([]string, m.NumVertices())
	for v := range out {
		if m.Boundary[v] {
			out[v] = "Boundary:" + m.EdgeType[v].String()
			continue
		}
		out[v] = m.Region[v].String()
	}
	return out
}
