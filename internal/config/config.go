// Package config loads CLI settings from flags, OVERLAY_* environment
// variables and an optional TOML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment variable overrides.
const EnvPrefix = "OVERLAY"

// Setting keys.
const (
	KeyLogLevel         = "log_level"
	KeyLogOutputDir     = "log_output_dir"
	KeyCompressionLevel = "compression_level"
	KeyMaxResourceSize  = "max_resource_size"
	KeyMaxDecoderMemory = "max_decoder_memory"
	KeyExportWorkers    = "export_workers"
	KeyOutputFormat     = "output_format"
)

// Output formats for the list command.
const (
	FormatTable = "table"
	FormatJSON  = "json"
)

// Config holds CLI configuration.
type Config struct {
	LogLevel     string `mapstructure:"log_level"`
	LogOutputDir string `mapstructure:"log_output_dir"`

	// CompressionLevel is the default level for add (0-9).
	CompressionLevel int `mapstructure:"compression_level"`

	MaxResourceSize  uint64 `mapstructure:"max_resource_size"`
	MaxDecoderMemory uint64 `mapstructure:"max_decoder_memory"`
	ExportWorkers    int    `mapstructure:"export_workers"`

	// OutputFormat selects "table" or "json" listing output.
	OutputFormat string `mapstructure:"output_format"`
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyLogLevel, "warn")
	v.SetDefault(KeyLogOutputDir, "")
	v.SetDefault(KeyCompressionLevel, 1)
	v.SetDefault(KeyMaxResourceSize, uint64(1<<40))
	v.SetDefault(KeyMaxDecoderMemory, uint64(256<<20))
	v.SetDefault(KeyExportWorkers, 4)
	v.SetDefault(KeyOutputFormat, FormatTable)
}

// ReadConfig reads cfgFile, or when empty searches ~/.config/overlay and
// /etc/overlay for config.toml. A missing default file is not an error.
// Environment variables are bound in either case.
func ReadConfig(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "overlay"))
		}
		v.AddConfigPath("/etc/overlay")
		v.SetConfigName("config")
		v.SetConfigType("toml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// Load decodes v into a Config and validates it.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.CompressionLevel < 0 || c.CompressionLevel > 9 {
		return fmt.Errorf("invalid config: %s must be 0-9, got %d", KeyCompressionLevel, c.CompressionLevel)
	}
	if c.ExportWorkers < 1 {
		return fmt.Errorf("invalid config: %s must be at least 1, got %d", KeyExportWorkers, c.ExportWorkers)
	}
	switch c.OutputFormat {
	case FormatTable, FormatJSON:
	default:
		return fmt.Errorf("invalid config: %s must be %q or %q, got %q",
			KeyOutputFormat, FormatTable, FormatJSON, c.OutputFormat)
	}
	return nil
}
