package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// EnvConfig names a config file when -config is not given.
const EnvConfig = "TOOTHSEG_CONFIG"

// Load resolves the configuration: defaults, then the first config file
// found (-config, $TOOTHSEG_CONFIG, ./toothseg.yaml, ConfigDir), then flag
// overrides. The result is validated. A nil Flags skips the flag layer.
func Load(f *Flags) (*Config, error) {
	cfg := Default()

	path := os.Getenv(EnvConfig)
	if f != nil && f.ConfigPath() != "" {
		path = f.ConfigPath()
	}
	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", path, err)
		}
		cfg.Source = path
	}

	if f != nil {
		if err := f.apply(cfg); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// findConfigFile returns the first existing file among the implicit
// locations, or "".
func findConfigFile() string {
	for _, path := range []string{
		"toothseg.yaml",
		filepath.Join(ConfigDir(), "config.yaml"),
	} {
		if st, err := os.Stat(path); err == nil && !st.IsDir() {
			return path
		}
	}
	return ""
}

// ConfigDir returns the per-user directory holding config.yaml and the
// default snapshot and catalog databases.
func ConfigDir() string {
	home, _ := os.UserHomeDir()
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "ToothSeg")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "ToothSeg")
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "toothseg")
	}
	return filepath.Join(home, ".config", "toothseg")
}

func defaultPath(name string) string {
	return filepath.Join(ConfigDir(), name)
}

// loadFromFile merges a YAML file over cfg. Unknown keys are rejected so a
// misspelled constant does not silently fall back to its default.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
