package config

import (
	"flag"
	"fmt"
	"strconv"
	"strings"
)

// Flags are the command-line overrides shared by every subcommand.
type Flags struct {
	config    *string
	debug     *bool
	logFile   *string
	dilate    *int
	erode     *int
	offset    *float64
	gum       *string
	noCache   *bool
	store     *bool
	storeDir  *string
	catalog   *bool
	catalogDB *string
}

// BindFlags registers the shared flags on fs.
func BindFlags(fs *flag.FlagSet) *Flags {
	return &Flags{
		config:    fs.String("config", "", "Path to config file"),
		debug:     fs.Bool("debug", false, "Enable debug logging"),
		logFile:   fs.String("log-file", "", "Also log to this file"),
		dilate:    fs.Int("dilate", -1, "Boundary dilation passes"),
		erode:     fs.Int("erode", -1, "Boundary erosion passes"),
		offset:    fs.Float64("plane-offset", -1, "Gingiva plane offset as a fraction of the shortest bounding box edge"),
		gum:       fs.String("gum", "", "Gum direction as x,y,z"),
		noCache:   fs.Bool("no-cache", false, "Ignore and do not write the curvature cache"),
		store:     fs.Bool("snapshots", false, "Save stage snapshots"),
		storeDir:  fs.String("snapshot-dir", "", "Snapshot database directory"),
		catalog:   fs.Bool("catalog", false, "Record the run in the run catalog"),
		catalogDB: fs.String("catalog-db", "", "Run catalog database file"),
	}
}

// ConfigPath returns the explicit config path if provided via -config.
func (f *Flags) ConfigPath() string {
	return *f.config
}

// apply applies CLI flag overrides to the config.
func (f *Flags) apply(cfg *Config) error {
	if *f.debug {
		cfg.Logging.Level = "debug"
	}
	if *f.logFile != "" {
		cfg.Logging.LogFile = *f.logFile
	}
	if *f.dilate >= 0 {
		cfg.Segmentation.DilationPasses = *f.dilate
	}
	if *f.erode >= 0 {
		cfg.Segmentation.ErosionPasses = *f.erode
	}
	if *f.offset >= 0 {
		cfg.Segmentation.PlaneOffsetFraction = *f.offset
	}
	if *f.gum != "" {
		dir, err := parseVec3(*f.gum)
		if err != nil {
			return fmt.Errorf("-gum: %w", err)
		}
		cfg.Segmentation.GumDirection = dir
	}
	if *f.noCache {
		cfg.Curvature.Cache = false
	}
	if *f.store || *f.storeDir != "" {
		cfg.Store.Enabled = true
	}
	if *f.storeDir != "" {
		cfg.Store.Dir = *f.storeDir
	}
	if *f.catalog || *f.catalogDB != "" {
		cfg.Catalog.Enabled = true
	}
	if *f.catalogDB != "" {
		cfg.Catalog.Path = *f.catalogDB
	}
	return nil
}

func parseVec3(s string) ([3]float64, error) {
	var v [3]float64
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return v, fmt.Errorf("want x,y,z, got %q", s)
	}
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return v, fmt.Errorf("component %d: %w", i, err)
		}
		v[i] = f
	}
	return v, nil
}
