// Package config loads cndtool's CLI defaults from a cndtool.yaml file,
// the same "one piece of structured on-disk state" role the teacher's
// internal/assets/manifest.go plays for its JSON manifest, ported to
// gopkg.in/yaml.v3 since this file is meant to be hand-edited.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds CLI defaults that flags may override.
type Config struct {
	OutputDir string `yaml:"output-dir"`
	MaxTex    int    `yaml:"max-tex"`
	CachePath string `yaml:"cache-path"`
}

// Load reads and parses a cndtool.yaml file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return &c, nil
}

// Save writes c to path as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

// Merge returns a copy of c in which every non-zero argument replaces the
// corresponding field, letting CLI flags win over the file; a zero argument
// leaves the file's value in place.
func (c *Config) Merge(outputDir string, maxTex int, cachePath string) Config {
	merged := *c
	if outputDir != "" {
		merged.OutputDir = outputDir
	}
	if maxTex != 0 {
		merged.MaxTex = maxTex
	}
	if cachePath != "" {
		merged.CachePath = cachePath
	}
	return merged
}
