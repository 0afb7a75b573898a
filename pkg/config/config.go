// Package config loads analyzer configuration from TOML, YAML or JSON
// files via koanf, with sensible defaults when no file is present.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all configuration options.
type Config struct {
	Analysis AnalysisConfig `koanf:"analysis" toml:"analysis"`
	Exclude  ExcludeConfig  `koanf:"exclude" toml:"exclude"`
	Lint     LintConfig     `koanf:"lint" toml:"lint"`
	Graph    GraphConfig    `koanf:"graph" toml:"graph"`
	Output   OutputConfig   `koanf:"output" toml:"output"`
}

// AnalysisConfig controls which files are analyzed.
type AnalysisConfig struct {
	// Extensions lists the file suffixes treated as sources.
	Extensions []string `koanf:"extensions" toml:"extensions"`

	// MaxFileSize is a file size in bytes; Validate rejects negative
	// values. The scanner does not apply it: files are analyzed
	// whatever their size.
	MaxFileSize int64 `koanf:"max_file_size" toml:"max_file_size"`
}

// ExcludeConfig defines file exclusion patterns using gitignore-style
// syntax, optionally combined with the repository's .gitignore files.
type ExcludeConfig struct {
	Patterns  []string `koanf:"patterns" toml:"patterns"`
	Gitignore bool     `koanf:"gitignore" toml:"gitignore"`
}

// LintConfig controls rule behavior.
type LintConfig struct {
	// StrictIgnoreIdents is read from the configuration file, but no
	// rule consults it: unknown lint-ignore identifiers are accepted
	// silently whatever its value.
	StrictIgnoreIdents bool `koanf:"strict_ignore_idents" toml:"strict_ignore_idents"`
}

// GraphConfig controls graph output.
type GraphConfig struct {
	// Prune removes visual noise (incidental nodes without diagnostics).
	Prune bool `koanf:"prune" toml:"prune"`
}

// OutputConfig controls rendering.
type OutputConfig struct {
	Format string `koanf:"format" toml:"format"` // terminal, svg, dot, graphml
	Color  bool   `koanf:"color" toml:"color"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			Extensions:  []string{".h", ".cpp"},
			MaxFileSize: 10 * 1024 * 1024,
		},
		Exclude: ExcludeConfig{
			Patterns: []string{
				"build/",
				"target/",
				"out/",
				"third_party/",
				"external/",
				".git/",
			},
			Gitignore: true,
		},
		Lint: LintConfig{
			StrictIgnoreIdents: false,
		},
		Graph: GraphConfig{
			Prune: true,
		},
		Output: OutputConfig{
			Format: "terminal",
			Color:  true,
		},
	}
}

// Load loads configuration from a file.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		parser = toml.Parser()
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// FindConfigFile searches for a config file in standard locations.
// Returns the path if found, or empty string if not found.
func FindConfigFile() string {
	names := []string{
		"guidelines.toml",
		"guidelines.yaml",
		"guidelines.yml",
		"guidelines.json",
	}
	dirs := []string{".", ".guidelines"}

	for _, dir := range dirs {
		for _, name := range names {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}
	return ""
}

// LoadOrDefault loads config from standard locations or returns
// defaults. Returns an error only when a found file fails to load or
// validate.
func LoadOrDefault() (*Config, error) {
	path := FindConfigFile()
	if path == "" {
		return DefaultConfig(), nil
	}
	cfg, err := Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// IsSourceFile reports whether a path matches the configured source
// extensions.
func (c *Config) IsSourceFile(path string) bool {
	for _, ext := range c.Analysis.Extensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

// Validate checks that all config values are within acceptable ranges.
func (c *Config) Validate() error {
	var errs []error

	if len(c.Analysis.Extensions) == 0 {
		errs = append(errs, errors.New("analysis.extensions must not be empty"))
	}
	for _, ext := range c.Analysis.Extensions {
		if !strings.HasPrefix(ext, ".") {
			errs = append(errs, fmt.Errorf("analysis.extensions entry %q must start with a dot", ext))
		}
	}
	if c.Analysis.MaxFileSize < 0 {
		errs = append(errs, errors.New("analysis.max_file_size must be non-negative"))
	}
	switch c.Output.Format {
	case "terminal", "svg", "dot", "graphml":
	default:
		errs = append(errs, fmt.Errorf("output.format %q is not one of terminal, svg, dot, graphml", c.Output.Format))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
