package curvature

import (
	"context"
	"errors"
	"io/fs"

	"go.uber.org/zap"

	"github.com/Faultbox/toothseg/pkg/formats"
	"github.com/Faultbox/toothseg/pkg/math"
)

// Cached serves curvature from a cache file next to the mesh and falls back
// to Oracle, writing the cache on the way out. A cache that is unreadable or
// sized for another mesh is ignored and overwritten.
type Cached struct {
	Oracle Oracle
	Path   string
	Log    *zap.Logger
}

// CachePath returns the conventional cache path for a mesh file.
func CachePath(meshPath string) string {
	return meshPath + ".curvature"
}

// Estimate implements Oracle.
func (c Cached) Estimate(ctx context.Context, positions []math.Vec3, faces [][3]int) (Result, error) {
	log := c.Log
	if log == nil {
		log = zap.NewNop()
	}

	cache, err := formats.ReadCurvatureCacheFile(c.Path, len(positions))
	switch {
	case err == nil:
		log.Info("curvature loaded from cache", zap.String("path", c.Path), zap.Int("vertices", len(cache.Mean)))
		return Result{Mean: cache.Mean, Valid: cache.Valid}, nil
	case errors.Is(err, fs.ErrNotExist):
	default:
		log.Warn("ignoring curvature cache", zap.String("path", c.Path), zap.Error(err))
	}

	res, err := c.Oracle.Estimate(ctx, positions, faces)
	if err != nil {
		return Result{}, err
	}
	out := &formats.CurvatureCache{Mean: res.Mean, Valid: res.Valid}
	if err := out.WriteFile(c.Path); err != nil {
		log.Warn("writing curvature cache", zap.String("path", c.Path), zap.Error(err))
	}
	return res, nil
}
