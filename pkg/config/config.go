// Package config loads and validates the minifold configuration.
//
// Configuration sources (in order of precedence):
//  1. Environment variables (MINIFOLD_*)
//  2. Configuration file (YAML)
//  3. Default values
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/minifold/minifold/pkg/minify"
	"github.com/minifold/minifold/pkg/optimize"
	"github.com/minifold/minifold/pkg/pool"
)

// Config is the full minifold configuration.
type Config struct {
	// Logging controls log output behavior
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Telemetry controls OpenTelemetry distributed tracing
	Telemetry TelemetryConfig `mapstructure:"telemetry" yaml:"telemetry"`

	// Metrics contains Prometheus metrics server configuration
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`

	// Cache configures the persistent result cache
	Cache CacheConfig `mapstructure:"cache" yaml:"cache"`

	// Assets configures where assets are read from and written back
	Assets AssetsConfig `mapstructure:"assets" yaml:"assets"`

	// Optimize configures the optimization run itself
	Optimize OptimizeConfig `mapstructure:"optimize" yaml:"optimize"`

	// Watch configures watch mode
	Watch WatchConfig `mapstructure:"watch" yaml:"watch"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level: DEBUG, INFO, WARN or ERROR
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`

	// Format selects text or json output
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`

	// Output is stdout, stderr or a file path
	Output string `mapstructure:"output" yaml:"output"`
}

// TelemetryConfig controls OpenTelemetry tracing.
type TelemetryConfig struct {
	// Enabled turns tracing on (opt-in)
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Endpoint is the OTLP gRPC collector endpoint
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`

	// SampleRate is the trace sampling ratio in (0, 1]
	SampleRate float64 `mapstructure:"sample_rate" validate:"gte=0,lte=1" yaml:"sample_rate"`

	// ServiceName identifies this process in traces
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
}

// MetricsConfig controls the Prometheus metrics endpoint.
type MetricsConfig struct {
	// Enabled turns the metrics endpoint on
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Listen is the host:port the metrics server binds to
	Listen string `mapstructure:"listen" yaml:"listen"`
}

// CacheConfig controls the persistent result cache.
type CacheConfig struct {
	// Enabled turns result caching on
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Dir is the cache database directory. Empty selects a directory
	// under the user cache dir.
	Dir string `mapstructure:"dir" yaml:"dir"`
}

// AssetsConfig locates the assets to optimize.
type AssetsConfig struct {
	// Root is the directory holding the build output
	Root string `mapstructure:"root" validate:"required" yaml:"root"`
}

// ParallelConfig is the parallelism surface of the configuration file.
type ParallelConfig struct {
	// Enabled selects worker pool execution; false forces in-process
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Workers caps the pool width when positive; 0 means host-derived
	Workers int `mapstructure:"workers" validate:"gte=0" yaml:"workers"`
}

// ExtractConfig is the extract-comments surface of the configuration file.
type ExtractConfig struct {
	// Mode is one of none, some, all or pattern
	Mode string `mapstructure:"mode" validate:"required,oneof=none some all pattern" yaml:"mode"`

	// Pattern is the regexp used when mode is pattern
	Pattern string `mapstructure:"pattern" yaml:"pattern"`

	// FilenameTemplate is the comments file destination template
	FilenameTemplate string `mapstructure:"filename_template" yaml:"filename_template"`

	// Banner controls the license banner
	Banner BannerConfig `mapstructure:"banner" yaml:"banner"`
}

// BannerConfig is the banner surface of the configuration file.
type BannerConfig struct {
	// Disabled suppresses the banner
	Disabled bool `mapstructure:"disabled" yaml:"disabled"`

	// Text overrides the default banner body when set
	Text string `mapstructure:"text" yaml:"text"`
}

// TargetConfig declares the output language environment. ECMA zero means
// "derive from the declared capabilities".
type TargetConfig struct {
	// ECMA is the output target: 0 (derive), 5, 2015 or 2020
	ECMA int `mapstructure:"ecma" validate:"oneof=0 5 2015 2020" yaml:"ecma"`

	// Module indicates ES module output
	Module bool `mapstructure:"module" yaml:"module"`

	// Capabilities lists supported output syntax used for derivation:
	// arrow_function, const, destructuring, for_of, module,
	// bigint_literal, dynamic_import
	Capabilities []string `mapstructure:"capabilities" yaml:"capabilities,omitempty"`
}

// OptimizeConfig configures the optimization run.
type OptimizeConfig struct {
	// Test, Include and Exclude are regexp patterns selecting assets
	Test    []string `mapstructure:"test" yaml:"test,omitempty"`
	Include []string `mapstructure:"include" yaml:"include,omitempty"`
	Exclude []string `mapstructure:"exclude" yaml:"exclude,omitempty"`

	// Parallel controls worker pool execution
	Parallel ParallelConfig `mapstructure:"parallel" yaml:"parallel"`

	// Extract controls license comment extraction
	Extract ExtractConfig `mapstructure:"extract" yaml:"extract"`

	// Target declares the output language environment
	Target TargetConfig `mapstructure:"target" yaml:"target"`

	// Options is the opaque backend pass-through
	Options map[string]any `mapstructure:"options" yaml:"options,omitempty"`

	// CacheKeys is extra caller-supplied cache fingerprint data
	CacheKeys map[string]string `mapstructure:"cache_keys" yaml:"cache_keys,omitempty"`
}

// WatchConfig controls watch mode.
type WatchConfig struct {
	// Debounce is how long to wait after the last change before rerunning
	Debounce string `mapstructure:"debounce" yaml:"debounce"`
}

// Load loads configuration from file, environment, and defaults.
// An empty configPath uses the default location; a missing file yields the
// default configuration.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)

	found, err := readConfigFile(v)
	if err != nil {
		return nil, err
	}
	if !found {
		return GetDefaultConfig(), nil
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(mapstructure.StringToSliceHookFunc(","))); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// MustLoad loads configuration with user-friendly guidance when the file is
// missing.
func MustLoad(configPath string) (*Config, error) {
	if configPath == "" {
		if !DefaultConfigExists() {
			return nil, fmt.Errorf("no configuration file found at default location: %s\n\n"+
				"Please initialize a configuration file first:\n"+
				"  minifold init\n\n"+
				"Or specify a custom config file:\n"+
				"  minifold <command> --config /path/to/config.yaml",
				GetDefaultConfigPath())
		}
		configPath = GetDefaultConfigPath()
	} else if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s\n\n"+
			"Please create the configuration file:\n"+
			"  minifold init --config %s",
			configPath, configPath)
	}

	cfg, err := Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// SaveConfig writes the configuration as YAML.
func SaveConfig(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func setupViper(v *viper.Viper, configPath string) {
	// Example: MINIFOLD_LOGGING_LEVEL=DEBUG
	v.SetEnvPrefix("MINIFOLD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(getConfigDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read config file: %w", err)
	}
	return true, nil
}

// getConfigDir returns the configuration directory, honoring
// XDG_CONFIG_HOME.
func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "minifold")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "minifold")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// DefaultConfigExists checks for a config file at the default location.
func DefaultConfigExists() bool {
	_, err := os.Stat(GetDefaultConfigPath())
	return err == nil
}

// GetConfigDir returns the configuration directory (exposed for the init
// command).
func GetConfigDir() string {
	return getConfigDir()
}

// ============================================================================
// Mapping to the Optimizer
// ============================================================================

// OptimizerConfig resolves the file surface into the optimizer's effective
// configuration.
func (c *Config) OptimizerConfig() optimize.Config {
	target := c.Optimize.Target
	ecma := target.ECMA
	if ecma == 0 {
		ecma = minify.DefaultECMA(capabilities(target.Capabilities))
	}

	return optimize.Config{
		Match: optimize.MatchConfig{
			Test:    c.Optimize.Test,
			Include: c.Optimize.Include,
			Exclude: c.Optimize.Exclude,
		},
		Comments: optimize.CommentsConfig{
			Extract: minify.ExtractConfig{
				Mode:    minify.ExtractMode(c.Optimize.Extract.Mode),
				Pattern: c.Optimize.Extract.Pattern,
			},
			FilenameTemplate: c.Optimize.Extract.FilenameTemplate,
			Banner: optimize.BannerConfig{
				Disabled: c.Optimize.Extract.Banner.Disabled,
				Text:     c.Optimize.Extract.Banner.Text,
			},
		},
		Options: minify.Options{
			ECMA:   ecma,
			Module: target.Module,
			Raw:    c.Optimize.Options,
		},
		Parallel: pool.Parallelism{
			Disabled: !c.Optimize.Parallel.Enabled,
			Workers:  c.Optimize.Parallel.Workers,
		},
		CacheKeys: c.Optimize.CacheKeys,
	}
}

func capabilities(names []string) minify.Capabilities {
	var caps minify.Capabilities
	for _, name := range names {
		switch name {
		case "arrow_function":
			caps.ArrowFunction = true
		case "const":
			caps.Const = true
		case "destructuring":
			caps.Destructuring = true
		case "for_of":
			caps.ForOf = true
		case "module":
			caps.Module = true
		case "bigint_literal":
			caps.BigIntLiteral = true
		case "dynamic_import":
			caps.DynamicImport = true
		}
	}
	return caps
}
