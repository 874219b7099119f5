// Package config loads project configuration for pavise from a YAML
// file. It is decoupled from any one entry point so tools embedding the
// validation engine can share it.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kitagry/pavise/pkg/adapter"
	"github.com/kitagry/pavise/pkg/validate"
)

// ConfigFileName is the name of the config file.
const ConfigFileName = "pavise.yaml"

// ConfigFileNameAlt is the alternate name of the config file.
const ConfigFileNameAlt = "pavise.yml"

// TargetConfig holds backend target configuration.
type TargetConfig struct {
	Type string `koanf:"type"` // memory, duckdb, sqlite

	// File-based databases (DuckDB, SQLite)
	Path string `koanf:"path"`

	// Additional driver-specific options
	Options map[string]string `koanf:"options"`
}

// Validate checks if the target configuration is valid. It uses the
// backend registry to determine which backend types are available.
func (t *TargetConfig) Validate() error {
	if t.Type == "" {
		return fmt.Errorf("target type is required")
	}
	if _, ok := adapter.Get(strings.ToLower(t.Type)); !ok {
		return &adapter.UnknownBackendError{
			Type:      t.Type,
			Available: adapter.List(),
		}
	}
	return nil
}

// AdapterConfig converts the target to an adapter.Config.
func (t *TargetConfig) AdapterConfig() adapter.Config {
	return adapter.Config{
		Type:    strings.ToLower(t.Type),
		Path:    t.Path,
		Options: t.Options,
	}
}

// Config holds the project-level validation configuration.
type Config struct {
	Strict              bool `koanf:"strict"`
	TypeCheckSampleRows int  `koanf:"type_check_sample_rows"`
	MaxExamplesPerField int  `koanf:"max_examples_per_field"`
	MaxDuplicateGroups  int  `koanf:"max_duplicate_groups"`
	Parallelism         int  `koanf:"parallelism"`

	Target *TargetConfig `koanf:"target"`
}

// Options converts the config into validate.Options. Zero-valued limits
// fall back to the engine defaults.
func (c *Config) Options() validate.Options {
	return validate.Options{
		Strict:              c.Strict,
		TypeCheckSampleRows: c.TypeCheckSampleRows,
		MaxExamplesPerField: c.MaxExamplesPerField,
		MaxDuplicateGroups:  c.MaxDuplicateGroups,
		Parallelism:         c.Parallelism,
	}
}

// Load loads a Config from the given file path.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", path, err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if cfg.Target != nil {
		if err := cfg.Target.Validate(); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

// LoadFromDir loads a Config from pavise.yaml or pavise.yml in dir.
// Returns nil, nil if no config file is found (not an error condition).
func LoadFromDir(dir string) (*Config, error) {
	path := findConfigFile(dir)
	if path == "" {
		return nil, nil
	}
	return Load(path)
}

// FindProjectRoot walks up from startDir to find a directory containing
// pavise.yaml or pavise.yml. Returns empty string if not found.
func FindProjectRoot(startDir string) string {
	dir := startDir
	for {
		if findConfigFile(dir) != "" {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

func findConfigFile(dir string) string {
	yamlPath := filepath.Join(dir, ConfigFileName)
	if _, err := os.Stat(yamlPath); err == nil {
		return yamlPath
	}
	ymlPath := filepath.Join(dir, ConfigFileNameAlt)
	if _, err := os.Stat(ymlPath); err == nil {
		return ymlPath
	}
	return ""
}
