package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/panbanda/slicecorpus/pkg/normalize"
)

// Config holds all configuration options for slicecorpus.
type Config struct {
	// Input slice discovery
	Slices SlicesConfig `koanf:"slices" toml:"slices" yaml:"slices"`

	// Source language of the sliced programs (typescript, python)
	Language string `koanf:"language" toml:"language" yaml:"language"`

	// Usage and class bounds
	Bounds BoundsConfig `koanf:"bounds" toml:"bounds" yaml:"bounds"`

	// Feature rendering
	Features FeaturesConfig `koanf:"features" toml:"features" yaml:"features"`

	// Extraction cache settings
	Cache CacheConfig `koanf:"cache" toml:"cache" yaml:"cache"`

	// Output settings
	Output OutputConfig `koanf:"output" toml:"output" yaml:"output"`
}

// SlicesConfig controls where slice documents are read from.
type SlicesConfig struct {
	Root    string `koanf:"root" toml:"root" yaml:"root"`
	Pattern string `koanf:"pattern" toml:"pattern" yaml:"pattern"`
	Workers int    `koanf:"workers" toml:"workers" yaml:"workers"` // 0 = 2x NumCPU
}

// BoundsConfig defines the usage and class-occurrence limits.
type BoundsConfig struct {
	LowerUsage     int `koanf:"lower_usage" toml:"lower_usage" yaml:"lower_usage"`
	UpperUsage     int `koanf:"upper_usage" toml:"upper_usage" yaml:"upper_usage"`
	ClassThreshold int `koanf:"class_threshold" toml:"class_threshold" yaml:"class_threshold"`
	MaxSamples     int `koanf:"max_samples" toml:"max_samples" yaml:"max_samples"` // 0 = unbounded
	TopN           int `koanf:"top_n" toml:"top_n" yaml:"top_n"`
}

// FeaturesConfig controls how feature strings are rendered.
type FeaturesConfig struct {
	LanguageTag    bool `koanf:"language_tag" toml:"language_tag" yaml:"language_tag"`
	ReceiverPrefix bool `koanf:"receiver_prefix" toml:"receiver_prefix" yaml:"receiver_prefix"`
}

// CacheConfig controls caching behavior.
type CacheConfig struct {
	Enabled bool   `koanf:"enabled" toml:"enabled" yaml:"enabled"`
	Dir     string `koanf:"dir" toml:"dir" yaml:"dir"`
	TTL     int    `koanf:"ttl" toml:"ttl" yaml:"ttl"` // TTL in hours, 0 = never expires
}

// OutputConfig controls output placement and formatting.
type OutputConfig struct {
	Dir    string `koanf:"dir" toml:"dir" yaml:"dir"`
	Format string `koanf:"format" toml:"format" yaml:"format"` // text, json, markdown, toon
	Color  bool   `koanf:"color" toml:"color" yaml:"color"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Slices: SlicesConfig{
			Pattern: "*.json",
		},
		Language: string(normalize.LangTypeScript),
		Bounds: BoundsConfig{
			LowerUsage:     1,
			UpperUsage:     8,
			ClassThreshold: 32,
		},
		Cache: CacheConfig{
			Enabled: false,
			Dir:     ".slicecorpus/cache",
			TTL:     0,
		},
		Output: OutputConfig{
			Dir:    "./",
			Format: "text",
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

// LoadOrDefault tries to load config from standard locations or returns defaults.
func LoadOrDefault() *Config {
	configNames := []string{
		"slicecorpus.toml",
		"slicecorpus.yaml",
		"slicecorpus.yml",
		"slicecorpus.json",
		".slicecorpus.toml",
		".slicecorpus.yaml",
		".slicecorpus.yml",
		".slicecorpus.json",
	}

	searchDirs := []string{".", ".slicecorpus"}

	for _, dir := range searchDirs {
		for _, name := range configNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				cfg, err := Load(path)
				if err == nil {
					return cfg
				}
			}
		}
	}

	return DefaultConfig()
}

// Dialect returns the normalization rules for the configured language.
func (c *Config) Dialect() normalize.Dialect {
	return normalize.NewDialect(normalize.ParseLanguage(c.Language))
}

// Validate checks that the configuration can drive a run.
func (c *Config) Validate() error {
	if c.Slices.Root == "" {
		return fmt.Errorf("slices root is required")
	}
	if _, ok := normalize.LookupLanguage(c.Language); !ok {
		return fmt.Errorf("unsupported language %q (want typescript or python)", c.Language)
	}
	if c.Bounds.LowerUsage < 0 {
		return fmt.Errorf("lower usage bound must not be negative (got %d)", c.Bounds.LowerUsage)
	}
	if c.Bounds.UpperUsage <= 0 {
		return fmt.Errorf("upper usage bound must be a positive integer (got %d)", c.Bounds.UpperUsage)
	}
	if c.Bounds.ClassThreshold < 0 {
		return fmt.Errorf("class threshold must not be negative (got %d)", c.Bounds.ClassThreshold)
	}
	if c.Bounds.MaxSamples < 0 {
		return fmt.Errorf("max samples must not be negative (got %d)", c.Bounds.MaxSamples)
	}
	if c.Bounds.TopN < 0 {
		return fmt.Errorf("top-n must not be negative (got %d)", c.Bounds.TopN)
	}
	return nil
}
