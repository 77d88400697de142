// Package report summarizes curvature fields and segmentation results for
// the inspect and histogram commands.
package report

import (
	"fmt"
	"io"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/Faultbox/toothseg/internal/mesh"
	"github.com/Faultbox/toothseg/internal/segment"
)

// CurvatureStats describes the valid values of a curvature field.
type CurvatureStats struct {
	Vertices int
	Invalid  int
	Min      float64
	Max      float64
	Mean     float64
	StdDev   float64
	P01      float64
	Median   float64
	P99      float64
	// Threshold is the boundary cut for the given fraction of Min.
	Threshold float64
	// Below counts valid vertices under Threshold.
	Below int
}

// Curvature computes statistics over the valid values. thresholdFraction is
// the segmentation's curvature threshold fraction.
func Curvature(mean []float64, valid []bool, thresholdFraction float64) CurvatureStats {
	vals := validValues(mean, valid)
	st := CurvatureStats{Vertices: len(mean), Invalid: len(mean) - len(vals)}
	if len(vals) == 0 {
		return st
	}
	sort.Float64s(vals)
	st.Min, st.Max = vals[0], vals[len(vals)-1]
	st.Mean, st.StdDev = stat.MeanStdDev(vals, nil)
	st.P01 = stat.Quantile(0.01, stat.Empirical, vals, nil)
	st.Median = stat.Quantile(0.5, stat.Empirical, vals, nil)
	st.P99 = stat.Quantile(0.99, stat.Empirical, vals, nil)
	st.Threshold = st.Min * thresholdFraction
	st.Below = sort.SearchFloat64s(vals, st.Threshold)
	return st
}

func validValues(mean []float64, valid []bool) []float64 {
	vals := make([]float64, 0, len(mean))
	for i, h := range mean {
		if valid[i] {
			vals = append(vals, h)
		}
	}
	return vals
}

// WriteCurvature prints stats as aligned text.
func WriteCurvature(w io.Writer, st CurvatureStats) error {
	_, err := fmt.Fprintf(w, `Vertices:  %d
Invalid:   %d
Min:       %.6g
Max:       %.6g
Mean:      %.6g
StdDev:    %.6g
P01:       %.6g
Median:    %.6g
P99:       %.6g
Threshold: %.6g (%d vertices below)
`, st.Vertices, st.Invalid, st.Min, st.Max, st.Mean, st.StdDev, st.P01, st.Median, st.P99, st.Threshold, st.Below)
	return err
}

// CurvatureHistogram plots the valid curvature values into path. The image
// format follows the extension (png, svg, pdf).
func CurvatureHistogram(mean []float64, valid []bool, bins int, title, path string) error {
	vals := validValues(mean, valid)
	if len(vals) == 0 {
		return fmt.Errorf("no valid curvature to plot")
	}
	h, err := plotter.NewHist(plotter.Values(vals), bins)
	if err != nil {
		return fmt.Errorf("building histogram: %w", err)
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "mean curvature"
	p.Y.Label.Text = "vertices"
	p.Add(h)

	if err := p.Save(8*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("saving histogram: %w", err)
	}
	return nil
}

// Segmentation summarizes a finished run.
type Segmentation struct {
	Vertices      int
	Boundary      int
	Gingiva       int
	Teeth         []int // vertex count per tooth
	CuttingPoints int
	Sections      []int // vertex count per section
	EdgeTypes     map[mesh.EdgeType]int
}

// Summarize counts labels on a segmenter after a run.
func Summarize(s *segment.Segmenter) Segmentation {
	m := s.Mesh
	out := Segmentation{
		Vertices:      m.NumVertices(),
		Teeth:         make([]int, s.State.ToothCount),
		CuttingPoints: len(s.State.CuttingPoints),
		EdgeTypes:     make(map[mesh.EdgeType]int),
	}
	for v, b := range m.Boundary {
		if b {
			out.Boundary++
			out.EdgeTypes[m.EdgeType[v]]++
			continue
		}
		r := m.Region[v]
		switch {
		case r == mesh.RegionGingiva:
			out.Gingiva++
		case r.IsTooth() && r.ToothIndex() < len(out.Teeth):
			out.Teeth[r.ToothIndex()]++
		}
	}
	for _, sec := range s.State.Sections {
		out.Sections = append(out.Sections, len(sec))
	}
	return out
}

// WriteSegmentation prints a summary as aligned text.
func WriteSegmentation(w io.Writer, sum Segmentation) error {
	fmt.Fprintf(w, "Vertices:       %d\n", sum.Vertices)
	fmt.Fprintf(w, "Gingiva:        %d\n", sum.Gingiva)
	fmt.Fprintf(w, "Boundary:       %d\n", sum.Boundary)
	for _, et := range []mesh.EdgeType{mesh.EdgeToothGingiva, mesh.EdgeToothTooth, mesh.EdgeCuttingPoint} {
		fmt.Fprintf(w, "  %-13s %d\n", et.String()+":", sum.EdgeTypes[et])
	}
	fmt.Fprintf(w, "Teeth:          %d\n", len(sum.Teeth))
	for k, n := range sum.Teeth {
		fmt.Fprintf(w, "  Tooth(%d):     %d\n", k, n)
	}
	fmt.Fprintf(w, "Cutting points: %d\n", sum.CuttingPoints)
	_, err := fmt.Fprintf(w, "Sections:       %d %v\n", len(sum.Sections), sum.Sections)
	return err
}
