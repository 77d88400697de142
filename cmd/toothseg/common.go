package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Faultbox/toothseg/internal/config"
	"github.com/Faultbox/toothseg/internal/curvature"
	"github.com/Faultbox/toothseg/internal/logger"
	"github.com/Faultbox/toothseg/internal/mesh"
	"github.com/Faultbox/toothseg/pkg/formats"
)

// command bundles what every mesh subcommand sets up.
type command struct {
	fs    *flag.FlagSet
	flags *config.Flags
	cfg   *config.Config
}

func newCommand(name, usage string) *command {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: toothseg %s\n", usage)
		fs.PrintDefaults()
	}
	return &command{fs: fs, flags: config.BindFlags(fs)}
}

// parse parses args, loads config and initializes logging.
func (c *command) parse(args []string) {
	c.fs.Parse(args)

	cfg, err := config.Load(c.flags)
	if err != nil {
		fatal(err)
	}
	c.cfg = cfg
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile, cfg.Logging.JSON); err != nil {
		fatal(err)
	}
	if cfg.Source != "" {
		logger.Debug("config loaded", zap.String("path", cfg.Source))
	}
}

// meshArg returns the single positional mesh path.
func (c *command) meshArg() string {
	if c.fs.NArg() != 1 {
		c.fs.Usage()
		os.Exit(1)
	}
	return c.fs.Arg(0)
}

func loadMesh(path string) (*mesh.Mesh, error) {
	off, err := formats.ParseOFFFile(path)
	if err != nil {
		return nil, err
	}
	m, err := mesh.New(off.Positions, off.Faces)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	logger.Info("mesh loaded",
		zap.String("path", path),
		zap.Int("vertices", m.NumVertices()),
		zap.Int("faces", len(m.Faces)),
	)
	return m, nil
}

// estimateCurvature fills the mesh curvature, going through the cache next
// to meshPath unless disabled.
func (c *command) estimateCurvature(ctx context.Context, m *mesh.Mesh, meshPath string) (curvature.Result, error) {
	var oracle curvature.Oracle = curvature.Quadric{Rings: c.cfg.Curvature.Rings}
	if c.cfg.Curvature.Cache {
		oracle = curvature.Cached{
			Oracle: oracle,
			Path:   curvature.CachePath(meshPath),
			Log:    logger.Named("curvature"),
		}
	}
	res, err := oracle.Estimate(ctx, m.Positions, m.Faces)
	if err != nil {
		return curvature.Result{}, fmt.Errorf("estimating curvature: %w", err)
	}
	if err := m.SetCurvature(res.Mean, res.Valid); err != nil {
		return curvature.Result{}, err
	}
	if failed := res.Failed(); failed > 0 {
		logger.Warn("curvature estimation failed for some vertices", zap.Int("invalid", failed))
	}
	return res, nil
}

// meshKey identifies a mesh in the snapshot store.
func meshKey(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
