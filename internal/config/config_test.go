package config

import (
	"bytes"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Faultbox/toothseg/internal/segment"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Segmentation defaults match the pipeline's tuned constants
	if got, want := cfg.Params(), segment.DefaultParams(); got != want {
		t.Errorf("Default().Params() = %+v, want %+v", got, want)
	}
	if cfg.Segmentation.DilationPasses != 6 {
		t.Errorf("expected 6 dilation passes, got %d", cfg.Segmentation.DilationPasses)
	}

	if cfg.Curvature.Rings != 2 {
		t.Errorf("expected 2 curvature rings, got %d", cfg.Curvature.Rings)
	}
	if !cfg.Curvature.Cache {
		t.Error("expected curvature cache to be enabled by default")
	}
	if cfg.Store.Enabled || cfg.Catalog.Enabled {
		t.Error("expected store and catalog to be disabled by default")
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default().Validate() = %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
segmentation:
  dilation_passes: 3
  erosion_passes: 1
  gum_direction: [0, 0, -1]
  min_region_fraction: 0.01

curvature:
  rings: 3
  cache: false

store:
  enabled: true
  dir: /var/lib/toothseg/snapshots

catalog:
  enabled: true
  path: runs.db

logging:
  level: "debug"
  log_file: "toothseg.log"
  json: true
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Segmentation.DilationPasses != 3 {
		t.Errorf("expected 3 dilation passes, got %d", cfg.Segmentation.DilationPasses)
	}
	if cfg.Segmentation.ErosionPasses != 1 {
		t.Errorf("expected 1 erosion pass, got %d", cfg.Segmentation.ErosionPasses)
	}
	if cfg.Segmentation.GumDirection != [3]float64{0, 0, -1} {
		t.Errorf("expected gum direction [0 0 -1], got %v", cfg.Segmentation.GumDirection)
	}
	// Unset keys keep their defaults
	if cfg.Segmentation.KNN != 2 {
		t.Errorf("expected knn 2, got %d", cfg.Segmentation.KNN)
	}
	if p := cfg.Params(); p.GumDirection.Z != -1 {
		t.Errorf("Params().GumDirection = %v", p.GumDirection)
	}

	if cfg.Curvature.Rings != 3 || cfg.Curvature.Cache {
		t.Errorf("unexpected curvature config %+v", cfg.Curvature)
	}
	if !cfg.Store.Enabled || cfg.StoreDir() != "/var/lib/toothseg/snapshots" {
		t.Errorf("unexpected store config %+v", cfg.Store)
	}
	if cfg.CatalogPath() != "runs.db" {
		t.Errorf("expected catalog path runs.db, got %s", cfg.CatalogPath())
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.LogFile != "toothseg.log" || !cfg.Logging.JSON {
		t.Errorf("unexpected logging config %+v", cfg.Logging)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
segmentation:
  dilation_passes: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFromFile(cfg, "/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"negative dilation", func(c *Config) { c.Segmentation.DilationPasses = -1 }},
		{"zero knn", func(c *Config) { c.Segmentation.KNN = 0 }},
		{"short refine length", func(c *Config) { c.Segmentation.MinRefineLength = 5 }},
		{"zero rings", func(c *Config) { c.Curvature.Rings = 0 }},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
	if filepath.Dir(Default().CatalogPath()) != dir {
		t.Errorf("default catalog path %s not under %s", Default().CatalogPath(), dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))
	os.Chdir(tmpDir)

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, "toothseg.yaml")
	if err := os.WriteFile(configPath, []byte("segmentation:\n  knn: 3\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	if path := findConfigFile(); path == "" {
		t.Error("expected to find toothseg.yaml in current directory")
	}
}

func parseFlags(t *testing.T, args ...string) *Flags {
	t.Helper()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	f := BindFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("parse %v: %v", args, err)
	}
	return f
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		verify func(*testing.T, *Config)
	}{
		{
			name: "debug flag",
			args: []string{"-debug"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
		},
		{
			name: "morphology flags",
			args: []string{"-dilate", "0", "-erode", "2"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Segmentation.DilationPasses != 0 || cfg.Segmentation.ErosionPasses != 2 {
					t.Errorf("unexpected passes %+v", cfg.Segmentation)
				}
			},
		},
		{
			name: "gum direction",
			args: []string{"-gum", "0, 0 ,-1"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Segmentation.GumDirection != [3]float64{0, 0, -1} {
					t.Errorf("expected gum direction [0 0 -1], got %v", cfg.Segmentation.GumDirection)
				}
			},
		},
		{
			name: "snapshot dir enables store",
			args: []string{"-snapshot-dir", "/tmp/snaps"},
			verify: func(t *testing.T, cfg *Config) {
				if !cfg.Store.Enabled || cfg.Store.Dir != "/tmp/snaps" {
					t.Errorf("unexpected store config %+v", cfg.Store)
				}
			},
		},
		{
			name: "no cache",
			args: []string{"-no-cache"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Curvature.Cache {
					t.Error("expected curvature cache to be disabled")
				}
			},
		},
		{
			name: "unset flags keep defaults",
			args: nil,
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Params() != segment.DefaultParams() {
					t.Errorf("expected default params, got %+v", cfg.Params())
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			if err := parseFlags(t, tt.args...).apply(cfg); err != nil {
				t.Fatalf("apply: %v", err)
			}
			tt.verify(t, cfg)
		})
	}
}

func TestApplyFlagsBadGum(t *testing.T) {
	if err := parseFlags(t, "-gum", "1,2").apply(Default()); err == nil {
		t.Error("expected error for two-component gum direction")
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
segmentation:
  dilation_passes: 4
  erosion_passes: 1
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(parseFlags(t, "-config", configPath, "-dilate", "2"))
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Dilation from flag (2), not file (4)
	if cfg.Segmentation.DilationPasses != 2 {
		t.Errorf("expected 2 dilation passes from flag, got %d", cfg.Segmentation.DilationPasses)
	}
	// Erosion from file since no flag override
	if cfg.Segmentation.ErosionPasses != 1 {
		t.Errorf("expected 1 erosion pass from file, got %d", cfg.Segmentation.ErosionPasses)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("segmentation:\n  knn: 0\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	if _, err := Load(parseFlags(t, "-config", configPath)); err == nil {
		t.Error("expected invalid config to be rejected")
	}
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.Segmentation.GumDirection = [3]float64{0, 0, -1}
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if loaded.Params() != cfg.Params() {
		t.Errorf("reloaded params %+v, want %+v", loaded.Params(), cfg.Params())
	}
}

func TestLoadFromFileUnknownKey(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("segmentation:\n  dilation_pases: 3\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	if err := loadFromFile(Default(), configPath); err == nil {
		t.Error("expected misspelled key to be rejected")
	}
}

func TestLoadFromFileEmpty(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "empty.yaml")
	if err := os.WriteFile(configPath, nil, 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("empty file: %v", err)
	}
	if cfg.Params() != segment.DefaultParams() {
		t.Errorf("empty file changed params: %+v", cfg.Params())
	}
}

func TestLoadFromEnv(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "env.yaml")
	if err := os.WriteFile(configPath, []byte("segmentation:\n  knn: 4\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	t.Setenv(EnvConfig, configPath)

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Segmentation.KNN != 4 {
		t.Errorf("expected knn 4 from $%s, got %d", EnvConfig, cfg.Segmentation.KNN)
	}
	if cfg.Source != configPath {
		t.Errorf("Source = %q, want %q", cfg.Source, configPath)
	}

	// -config wins over the environment
	other := filepath.Join(t.TempDir(), "flag.yaml")
	if err := os.WriteFile(other, []byte("segmentation:\n  knn: 5\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	cfg, err = Load(parseFlags(t, "-config", other))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Segmentation.KNN != 5 || cfg.Source != other {
		t.Errorf("expected knn 5 from %s, got %d from %q", other, cfg.Segmentation.KNN, cfg.Source)
	}
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	cfg := Default()
	cfg.Source = "ignored.yaml"
	if err := cfg.WriteYAML(&buf); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"segmentation:", "  curvature_threshold_fraction: 0.01", "  dilation_passes: 6", "logging:"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "ignored.yaml") {
		t.Error("Source should not be encoded")
	}
}
