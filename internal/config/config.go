// Package config handles segmentation configuration loading and management.
package config

import (
	"fmt"

	"github.com/Faultbox/toothseg/internal/segment"
	"github.com/Faultbox/toothseg/pkg/math"
)

// Config holds all toothseg settings.
type Config struct {
	Segmentation SegmentationConfig `yaml:"segmentation"`
	Curvature    CurvatureConfig    `yaml:"curvature"`
	Store        StoreConfig        `yaml:"store"`
	Catalog      CatalogConfig      `yaml:"catalog"`
	Logging      LoggingConfig      `yaml:"logging"`

	// Source is the file the config was loaded from, if any.
	Source string `yaml:"-"`
}

// SegmentationConfig holds the pipeline constants.
type SegmentationConfig struct {
	CurvatureThresholdFraction float64    `yaml:"curvature_threshold_fraction"`
	DilationPasses             int        `yaml:"dilation_passes"`
	ErosionPasses              int        `yaml:"erosion_passes"`
	PlaneOffsetFraction        float64    `yaml:"plane_offset_fraction"`
	GumDirection               [3]float64 `yaml:"gum_direction,flow"` // zero = infer from geometry
	MinRegionFraction          float64    `yaml:"min_region_fraction"`
	MinRefineLength            int        `yaml:"min_refine_length"`
	ControlStep                int        `yaml:"control_step"`
	SamplesPerSpan             int        `yaml:"samples_per_span"`
	KNN                        int        `yaml:"knn"`
	SmoothHalfWindow           int        `yaml:"smooth_half_window"`
}

// CurvatureConfig holds curvature estimation settings.
type CurvatureConfig struct {
	Rings int  `yaml:"rings"` // neighborhood rings for the quadric fit
	Cache bool `yaml:"cache"` // read/write <mesh>.curvature next to the mesh
}

// StoreConfig holds the stage snapshot database settings.
type StoreConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Dir        string `yaml:"dir"`
	SyncWrites bool   `yaml:"sync_writes"`
}

// CatalogConfig holds the run history database settings.
type CatalogConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
	JSON    bool   `yaml:"json"`
}

// Default returns a Config with the tuned pipeline constants.
func Default() *Config {
	p := segment.DefaultParams()
	return &Config{
		Segmentation: SegmentationConfig{
			CurvatureThresholdFraction: p.CurvatureThresholdFraction,
			DilationPasses:             p.DilationPasses,
			ErosionPasses:              p.ErosionPasses,
			PlaneOffsetFraction:        p.PlaneOffsetFraction,
			MinRegionFraction:          p.MinRegionFraction,
			MinRefineLength:            p.MinRefineLength,
			ControlStep:                p.ControlStep,
			SamplesPerSpan:             p.SamplesPerSpan,
			KNN:                        p.KNN,
			SmoothHalfWindow:           p.SmoothHalfWindow,
		},
		Curvature: CurvatureConfig{
			Rings: 2,
			Cache: true,
		},
		Store: StoreConfig{
			Enabled: false,
			Dir:     "",
		},
		Catalog: CatalogConfig{
			Enabled: false,
			Path:    "",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Params converts the segmentation section.
func (c *Config) Params() segment.Params {
	s := c.Segmentation
	return segment.Params{
		CurvatureThresholdFraction: s.CurvatureThresholdFraction,
		DilationPasses:             s.DilationPasses,
		ErosionPasses:              s.ErosionPasses,
		PlaneOffsetFraction:        s.PlaneOffsetFraction,
		GumDirection:               math.FromArray(s.GumDirection),
		MinRegionFraction:          s.MinRegionFraction,
		MinRefineLength:            s.MinRefineLength,
		ControlStep:                s.ControlStep,
		SamplesPerSpan:             s.SamplesPerSpan,
		KNN:                        s.KNN,
		SmoothHalfWindow:           s.SmoothHalfWindow,
	}
}

// Validate reports the first setting the pipeline cannot run with.
func (c *Config) Validate() error {
	if err := c.Params().Validate(); err != nil {
		return err
	}
	if c.Curvature.Rings < 1 {
		return fmt.Errorf("curvature rings must be at least 1, got %d", c.Curvature.Rings)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Logging.Level)
	}
	return nil
}

// StoreDir returns the snapshot directory, defaulting under ConfigDir.
func (c *Config) StoreDir() string {
	if c.Store.Dir != "" {
		return c.Store.Dir
	}
	return defaultPath("snapshots")
}

// CatalogPath returns the run catalog file, defaulting under ConfigDir.
func (c *Config) CatalogPath() string {
	if c.Catalog.Path != "" {
		return c.Catalog.Path
	}
	return defaultPath("runs.db")
}
