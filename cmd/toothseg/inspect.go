package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Faultbox/toothseg/internal/logger"
	"github.com/Faultbox/toothseg/internal/report"
)

func cmdCurvature(args []string) {
	c := newCommand("curvature", "curvature [options] <mesh.off>")
	c.parse(args)
	defer logger.Sync()

	meshPath := c.meshArg()
	m, err := loadMesh(meshPath)
	if err != nil {
		fatal(err)
	}
	res, err := c.estimateCurvature(context.Background(), m, meshPath)
	if err != nil {
		fatal(err)
	}
	st := report.Curvature(res.Mean, res.Valid, c.cfg.Segmentation.CurvatureThresholdFraction)
	if err := report.WriteCurvature(os.Stdout, st); err != nil {
		fatal(err)
	}
}

func cmdInspect(args []string) {
	c := newCommand("inspect", "inspect [options] <mesh.off>")
	c.parse(args)
	defer logger.Sync()

	meshPath := c.meshArg()
	m, err := loadMesh(meshPath)
	if err != nil {
		fatal(err)
	}

	border := 0
	for v := 0; v < m.NumVertices(); v++ {
		if m.IsMeshBoundary(v) {
			border++
		}
	}
	b := m.Bounds()
	size := b.Size()

	fmt.Printf("Mesh:      %s\n", meshPath)
	fmt.Printf("Vertices:  %d\n", m.NumVertices())
	fmt.Printf("Faces:     %d\n", len(m.Faces))
	fmt.Printf("Open edge: %d vertices\n", border)
	fmt.Printf("Bounds:    (%.3f, %.3f, %.3f) - (%.3f, %.3f, %.3f)\n", b.Min.X, b.Min.Y, b.Min.Z, b.Max.X, b.Max.Y, b.Max.Z)
	fmt.Printf("Size:      %.3f x %.3f x %.3f\n", size.X, size.Y, size.Z)
	fmt.Println()

	res, err := c.estimateCurvature(context.Background(), m, meshPath)
	if err != nil {
		fatal(err)
	}
	st := report.Curvature(res.Mean, res.Valid, c.cfg.Segmentation.CurvatureThresholdFraction)
	if err := report.WriteCurvature(os.Stdout, st); err != nil {
		fatal(err)
	}
}

func cmdHistogram(args []string) {
	c := newCommand("histogram", "histogram [options] <mesh.off>")
	out := c.fs.String("o", "", "Output image, format by extension (default <mesh>.curvature.png)")
	bins := c.fs.Int("bins", 60, "Number of bins")
	c.parse(args)
	defer logger.Sync()

	meshPath := c.meshArg()
	if *out == "" {
		*out = meshPath + ".curvature.png"
	}
	m, err := loadMesh(meshPath)
	if err != nil {
		fatal(err)
	}
	res, err := c.estimateCurvature(context.Background(), m, meshPath)
	if err != nil {
		fatal(err)
	}
	if err := report.CurvatureHistogram(res.Mean, res.Valid, *bins, filepath.Base(meshPath), *out); err != nil {
		fatal(err)
	}
	fmt.Printf("Wrote %s\n", *out)
}
