package config

import (
	"os"
	"path/filepath"
	"strings"
)

// ApplyDefaults fills unspecified fields with their defaults. Zero values
// are replaced, explicit values preserved.
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyTelemetryDefaults(&cfg.Telemetry)
	applyMetricsDefaults(&cfg.Metrics)
	applyCacheDefaults(&cfg.Cache)
	applyAssetsDefaults(&cfg.Assets)
	applyOptimizeDefaults(&cfg.Optimize)
	applyWatchDefaults(&cfg.Watch)
}

func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stderr"
	}
}

func applyTelemetryDefaults(cfg *TelemetryConfig) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "localhost:4317"
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 1.0
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "minifold"
	}
}

func applyMetricsDefaults(cfg *MetricsConfig) {
	if cfg.Listen == "" {
		cfg.Listen = "localhost:9464"
	}
}

func applyCacheDefaults(cfg *CacheConfig) {
	if cfg.Dir == "" {
		cfg.Dir = defaultCacheDir()
	}
}

func applyAssetsDefaults(cfg *AssetsConfig) {
	if cfg.Root == "" {
		cfg.Root = "dist"
	}
}

func applyOptimizeDefaults(cfg *OptimizeConfig) {
	if cfg.Extract.Mode == "" {
		cfg.Extract.Mode = "some"
	}
}

func applyWatchDefaults(cfg *WatchConfig) {
	if cfg.Debounce == "" {
		cfg.Debounce = "300ms"
	}
}

// GetDefaultConfig returns the configuration used when no file exists.
func GetDefaultConfig() *Config {
	cfg := &Config{
		Cache: CacheConfig{Enabled: true},
		Optimize: OptimizeConfig{
			Parallel: ParallelConfig{Enabled: true},
		},
	}
	ApplyDefaults(cfg)
	return cfg
}

// defaultCacheDir places the cache under the user cache directory,
// matching XDG conventions.
func defaultCacheDir() string {
	base, err := os.UserCacheDir()
	if err != nil {
		return ".minifold-cache"
	}
	return filepath.Join(base, "minifold")
}
