package curvature

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/toothseg/pkg/formats"
	"github.com/Faultbox/toothseg/pkg/math"
)

// heightGrid triangulates z = f(x, y) on a (2n+1)^2 grid with counter
// clockwise faces seen from +z. The center vertex id is returned.
func heightGrid(n int, step float64, f func(x, y float64) float64) ([]math.Vec3, [][3]int, int) {
	side := 2*n + 1
	id := func(i, j int) int { return j*side + i }
	positions := make([]math.Vec3, side*side)
	for j := 0; j < side; j++ {
		for i := 0; i < side; i++ {
			x, y := float64(i-n)*step, float64(j-n)*step
			positions[id(i, j)] = math.Vec3{X: x, Y: y, Z: f(x, y)}
		}
	}
	var faces [][3]int
	for j := 0; j+1 < side; j++ {
		for i := 0; i+1 < side; i++ {
			a, b, c, d := id(i, j), id(i+1, j), id(i+1, j+1), id(i, j+1)
			faces = append(faces, [3]int{a, b, c}, [3]int{a, c, d})
		}
	}
	return positions, faces, id(n, n)
}

func TestQuadricParaboloid(t *testing.T) {
	tests := []struct {
		name string
		f    func(x, y float64) float64
		want float64
	}{
		{"convex cap", func(x, y float64) float64 { return -(x*x + y*y) / 2 }, 1},
		{"concave bowl", func(x, y float64) float64 { return (x*x + y*y) / 2 }, -1},
		{"plane", func(x, y float64) float64 { return 0 }, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			positions, faces, center := heightGrid(4, 0.1, tt.f)
			res, err := Quadric{Rings: 2}.Estimate(context.Background(), positions, faces)
			require.NoError(t, err)
			require.True(t, res.Valid[center])
			assert.InDelta(t, tt.want, res.Mean[center], 1e-6)
		})
	}
}

func TestQuadricIsolatedVertexInvalid(t *testing.T) {
	positions, faces, _ := heightGrid(2, 1, func(x, y float64) float64 { return 0 })
	positions = append(positions, math.Vec3{X: 100})

	res, err := Quadric{}.Estimate(context.Background(), positions, faces)
	require.NoError(t, err)
	assert.False(t, res.Valid[len(positions)-1])
	assert.Equal(t, 1, res.Failed())
}

func TestQuadricCanceled(t *testing.T) {
	positions, faces, _ := heightGrid(2, 1, func(x, y float64) float64 { return 0 })
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Quadric{}.Estimate(ctx, positions, faces)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCachedWritesThenReads(t *testing.T) {
	positions, faces, _ := heightGrid(1, 1, func(x, y float64) float64 { return 0 })
	path := filepath.Join(t.TempDir(), "mesh.off.curvature")

	calls := 0
	oracle := Func(func(positions []math.Vec3, _ [][3]int) Result {
		calls++
		res := Result{Mean: make([]float64, len(positions)), Valid: make([]bool, len(positions))}
		for i := range res.Mean {
			res.Mean[i] = float64(i)
			res.Valid[i] = i%2 == 0
		}
		return res
	})
	c := Cached{Oracle: oracle, Path: path}

	first, err := c.Estimate(context.Background(), positions, faces)
	require.NoError(t, err)
	second, err := c.Estimate(context.Background(), positions, faces)
	require.NoError(t, err)

	assert.Equal(t, 1, calls, "second estimate should come from the cache")
	assert.Equal(t, first, second)

	// A cache for a different vertex count is recomputed.
	_, err = c.Estimate(context.Background(), positions[:4], nil)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)

	cache, err := formats.ReadCurvatureCacheFile(path, 4)
	require.NoError(t, err)
	assert.Len(t, cache.Mean, 4)
}

func TestCachePath(t *testing.T) {
	assert.Equal(t, "jaw.off.curvature", CachePath("jaw.off"))
}
