package curvature

import (
	"context"
	gomath "math"

	"gonum.org/v1/gonum/mat"

	"github.com/Faultbox/toothseg/pkg/math"
)

// minFitNeighbors is the number of unknowns in the quadric height field.
const minFitNeighbors = 5

// Quadric fits z = a*x^2 + b*x*y + c*y^2 + d*x + e*y over the k-ring of each
// vertex, in a local frame whose z axis is the area weighted vertex normal,
// and reads mean curvature off the fitted surface.
type Quadric struct {
	// Rings is the neighborhood size in edge hops. Values below 1 mean 2.
	Rings int
}

// Estimate implements Oracle. The context is checked every 4096 vertices.
func (q Quadric) Estimate(ctx context.Context, positions []math.Vec3, faces [][3]int) (Result, error) {
	rings := q.Rings
	if rings < 1 {
		rings = 2
	}
	n := len(positions)
	res := Result{Mean: make([]float64, n), Valid: make([]bool, n)}

	adj := make([][]int, n)
	normals := make([]math.Vec3, n)
	for _, f := range faces {
		a, b, c := positions[f[0]], positions[f[1]], positions[f[2]]
		fn := b.Sub(a).Cross(c.Sub(a))
		for k := 0; k < 3; k++ {
			v := f[k]
			normals[v] = normals[v].Add(fn)
			adj[v] = appendUnique(adj[v], f[(k+1)%3])
			adj[v] = appendUnique(adj[v], f[(k+2)%3])
		}
	}

	stamp := make([]int, n)
	for v := 0; v < n; v++ {
		if v%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return Result{}, err
			}
		}
		normal := normals[v].Normalize()
		if normal.IsZero() {
			continue
		}
		hood := kRing(adj, v, rings, stamp)
		if len(hood) < minFitNeighbors {
			continue
		}
		h, ok := fitMeanCurvature(positions, v, normal, hood)
		res.Mean[v] = h
		res.Valid[v] = ok
	}
	return res, nil
}

func appendUnique(s []int, v int) []int {
	for _, x := range s {
		if x == v {
			return s
		}
	}
	return append(s, v)
}

// kRing collects vertices within rings hops of v, excluding v. stamp is a
// scratch array marking visits with v+1.
func kRing(adj [][]int, v, rings int, stamp []int) []int {
	mark := v + 1
	stamp[v] = mark
	frontier := []int{v}
	var out []int
	for r := 0; r < rings; r++ {
		var next []int
		for _, u := range frontier {
			for _, w := range adj[u] {
				if stamp[w] == mark {
					continue
				}
				stamp[w] = mark
				next = append(next, w)
				out = append(out, w)
			}
		}
		frontier = next
	}
	return out
}

// fitMeanCurvature solves the least squares height field fit.
func fitMeanCurvature(positions []math.Vec3, v int, normal math.Vec3, hood []int) (float64, bool) {
	u := anyPerpendicular(normal)
	w := normal.Cross(u)
	p := positions[v]

	A := mat.NewDense(len(hood), 5, nil)
	z := mat.NewVecDense(len(hood), nil)
	for i, nb := range hood {
		d := positions[nb].Sub(p)
		x, y := d.Dot(u), d.Dot(w)
		A.SetRow(i, []float64{x * x, x * y, y * y, x, y})
		z.SetVec(i, d.Dot(normal))
	}

	var coef mat.VecDense
	if err := coef.SolveVec(A, z); err != nil {
		return 0, false
	}
	a, b, c := coef.AtVec(0), coef.AtVec(1), coef.AtVec(2)
	fx, fy := coef.AtVec(3), coef.AtVec(4)
	fxx, fxy, fyy := 2*a, b, 2*c

	g := 1 + fx*fx + fy*fy
	h := ((1+fy*fy)*fxx - 2*fx*fy*fxy + (1+fx*fx)*fyy) / (2 * gomath.Pow(g, 1.5))
	if gomath.IsNaN(h) || gomath.IsInf(h, 0) {
		return 0, false
	}
	// The surface bends away from an outward normal on convex parts.
	return -h, true
}

// anyPerpendicular returns a unit vector orthogonal to unit vector n.
func anyPerpendicular(n math.Vec3) math.Vec3 {
	axis := math.Vec3{X: 1}
	if gomath.Abs(n.X) > 0.9 {
		axis = math.Vec3{Y: 1}
	}
	return n.Cross(axis).Normalize()
}
