// Package config loads sigtool settings from defaults, an optional
// sigtool.yaml, SIGTOOL_* environment variables and command line flags,
// in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"runtime"
	"slices"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/dhamidi/sigkit/format"
	"github.com/dhamidi/sigkit/roundtrip"
	"github.com/dhamidi/sigkit/sig"
)

const (
	KeyWorkers       = "workers"
	KeyCacheSize     = "cache_size"
	KeyMaxDepth      = "max_depth"
	KeyFormat        = "format"
	KeyMinSignatures = "min_signatures"
	KeyVerbosity     = "verbosity"
)

// flagNames maps configuration keys to the flags that override them.
var flagNames = map[string]string{
	KeyWorkers:       "workers",
	KeyCacheSize:     "cache-size",
	KeyMaxDepth:      "max-depth",
	KeyFormat:        "format",
	KeyMinSignatures: "min",
	KeyVerbosity:     "verbose",
}

type Config struct {
	Workers       int    `mapstructure:"workers"`
	CacheSize     int    `mapstructure:"cache_size"`
	MaxDepth      int    `mapstructure:"max_depth"`
	Format        string `mapstructure:"format"`
	MinSignatures int    `mapstructure:"min_signatures"`
	Verbosity     int    `mapstructure:"verbosity"`
}

// Load reads the configuration. An explicit path must exist; otherwise
// sigtool.yaml in the working directory is used when present. Flags that
// were not set on the command line do not override other sources.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetDefault(KeyWorkers, runtime.NumCPU())
	v.SetDefault(KeyCacheSize, roundtrip.DefaultCacheSize)
	v.SetDefault(KeyMaxDepth, sig.DefaultMaxDepth)
	v.SetDefault(KeyFormat, "text")
	v.SetDefault(KeyMinSignatures, 0)
	v.SetDefault(KeyVerbosity, 0)

	v.SetEnvPrefix("SIGTOOL")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	} else {
		v.SetConfigName("sigtool")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read sigtool.yaml: %w", err)
			}
		}
	}

	if flags != nil {
		for key, name := range flagNames {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Workers <= 0 {
		return fmt.Errorf("%s must be positive, got %d", KeyWorkers, c.Workers)
	}
	if c.CacheSize <= 0 {
		return fmt.Errorf("%s must be positive, got %d", KeyCacheSize, c.CacheSize)
	}
	if c.MaxDepth <= 0 {
		return fmt.Errorf("%s must be positive, got %d", KeyMaxDepth, c.MaxDepth)
	}
	if c.MinSignatures < 0 {
		return fmt.Errorf("%s must not be negative, got %d", KeyMinSignatures, c.MinSignatures)
	}
	if !slices.Contains(format.Formats, c.Format) {
		return fmt.Errorf("%s must be one of %s, got %q", KeyFormat, strings.Join(format.Formats, ", "), c.Format)
	}
	return nil
}

// CheckerOptions translates the configuration for roundtrip.New.
func (c *Config) CheckerOptions() roundtrip.Options {
	return roundtrip.Options{
		Workers:   c.Workers,
		CacheSize: c.CacheSize,
		MaxDepth:  c.MaxDepth,
	}
}
