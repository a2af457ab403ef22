package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/brettbedarf/vdir/internal/util"
)

// Config contains runtime configuration values for a tree and its exports and mounts.
type Config struct {
	MountOptions

	LogLvl      util.LogLevel // Global log level (Default info)
	DefaultMode string        // Access mode of manifest files without one, letters r, w, a (Default "rw")

	Compression            string   // Archive method: "deflate" or "store" (Default "deflate")
	CompressionLevel       int      // Flate level, -1 (default) or 0-9 (Default -1)
	ExcludeFromCompression []string // File names always stored uncompressed
	StoreCompressedContent bool     // Store content that sniffs as already compressed (Default false)
	// NOTE: Low-level FUSE config:

	AttrTimeout  float64 // Attribute cache timeout in seconds (Default 1.0)
	EntryTimeout float64 // Directory entry cache timeout in seconds (Default 1.0)
	DirectIO     bool    // Whether to bypass page cache for file reads (Default false)
}

// ConfigOverride uses pointer fields to distinguish between unset and zero values
// when loading partial configuration. See [Config] for field descriptions.
// LogLvl is a verbosity (1 error .. 5 trace), not a util.LogLevel.
type ConfigOverride struct {
	LogLvl                 *int      `yaml:"verbosity,omitempty" json:"verbosity,omitempty"`
	DefaultMode            *string   `yaml:"default_mode,omitempty" json:"default_mode,omitempty"`
	Compression            *string   `yaml:"compression,omitempty" json:"compression,omitempty"`
	CompressionLevel       *int      `yaml:"compression_level,omitempty" json:"compression_level,omitempty"`
	ExcludeFromCompression *[]string `yaml:"exclude_from_compression,omitempty" json:"exclude_from_compression,omitempty"`
	StoreCompressedContent *bool     `yaml:"store_compressed_content,omitempty" json:"store_compressed_content,omitempty"`
	Debug                  *bool     `yaml:"debug,omitempty" json:"debug,omitempty"`
	FsName                 *string   `yaml:"fs_name,omitempty" json:"fs_name,omitempty"`
	Name                   *string   `yaml:"name,omitempty" json:"name,omitempty"`
	AttrTimeout            *float64  `yaml:"attr_timeout,omitempty" json:"attr_timeout,omitempty"`
	EntryTimeout           *float64  `yaml:"entry_timeout,omitempty" json:"entry_timeout,omitempty"`
	DirectIO               *bool     `yaml:"direct_io,omitempty" json:"direct_io,omitempty"`
}

// NewDefaultConfig creates a new Config with all default values.
func NewDefaultConfig() *Config {
	return &Config{
		MountOptions: MountOptions{
			FsName: DefaultFsName,
			Name:   DefaultName,
		},
		LogLvl:                 DefaultLogLvl,
		DefaultMode:            DefaultMode,
		Compression:            DefaultCompression,
		CompressionLevel:       DefaultCompressionLevel,
		StoreCompressedContent: DefaultStoreCompressedContent,
		AttrTimeout:            DefaultAttrTimeout,
		EntryTimeout:           DefaultEntryTimeout,
		DirectIO:               DefaultDirectIO,
	}
}

// NewConfig returns the defaults with override applied; override may be nil.
func NewConfig(override *ConfigOverride) *Config {
	cfg := NewDefaultConfig()
	if override != nil {
		cfg.Merge(override)
	}
	return cfg
}

// Merge applies non-nil values from override onto this Config.
// This allows partial configuration updates while preserving existing values.
func (c *Config) Merge(override *ConfigOverride) {
	if override.LogLvl != nil {
		c.LogLvl = verbosityToLogLvl(*override.LogLvl)
	}
	if override.DefaultMode != nil {
		c.DefaultMode = *override.DefaultMode
	}
	if override.Compression != nil {
		c.Compression = *override.Compression
	}
	if override.CompressionLevel != nil {
		c.CompressionLevel = *override.CompressionLevel
	}
	if override.ExcludeFromCompression != nil {
		c.ExcludeFromCompression = *override.ExcludeFromCompression
	}
	if override.StoreCompressedContent != nil {
		c.StoreCompressedContent = *override.StoreCompressedContent
	}
	if override.Debug != nil {
		c.Debug = *override.Debug
	}
	if override.FsName != nil {
		c.FsName = *override.FsName
	}
	if override.Name != nil {
		c.Name = *override.Name
	}
	if override.AttrTimeout != nil {
		c.AttrTimeout = *override.AttrTimeout
	}
	if override.EntryTimeout != nil {
		c.EntryTimeout = *override.EntryTimeout
	}
	if override.DirectIO != nil {
		c.DirectIO = *override.DirectIO
	}
}

// LoadConfigOverrideFile loads configuration overrides from a file without merging.
// Supports both YAML (.yaml, .yml) and JSON (.json) formats.
func LoadConfigOverrideFile(path string) (*ConfigOverride, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var override ConfigOverride

	// Determine format by file extension
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown config file extension: %s", path)
	}

	return &override, nil
}

// NewConfigFromFile creates a new Config by merging file overrides with defaults.
// This is a convenience function that combines NewDefaultConfig, LoadConfigOverrideFile, and Merge.
func NewConfigFromFile(path string) (*Config, error) {
	override, err := LoadConfigOverrideFile(path)
	if err != nil {
		return nil, err
	}
	return NewConfig(override), nil
}
