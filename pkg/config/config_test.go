package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Logging.Level != "INFO" {
		t.Errorf("expected default log level INFO, got %q", cfg.Logging.Level)
	}
	if !cfg.Cache.Enabled {
		t.Error("expected cache enabled by default")
	}
	if !cfg.Optimize.Parallel.Enabled {
		t.Error("expected parallel enabled by default")
	}
}

func TestLoad_FromFile(t *testing.T) {
	path := writeConfig(t, `
logging:
  level: debug
assets:
  root: build/out
optimize:
  parallel:
    enabled: true
    workers: 4
  extract:
    mode: all
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("expected level normalized to DEBUG, got %q", cfg.Logging.Level)
	}
	if cfg.Assets.Root != "build/out" {
		t.Errorf("unexpected assets root: %q", cfg.Assets.Root)
	}
	if cfg.Optimize.Parallel.Workers != 4 {
		t.Errorf("unexpected worker count: %d", cfg.Optimize.Parallel.Workers)
	}
	if cfg.Optimize.Extract.Mode != "all" {
		t.Errorf("unexpected extract mode: %q", cfg.Optimize.Extract.Mode)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	path := writeConfig(t, `
logging:
  level: info
`)
	t.Setenv("MINIFOLD_LOGGING_LEVEL", "ERROR")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Logging.Level != "ERROR" {
		t.Errorf("expected env override to ERROR, got %q", cfg.Logging.Level)
	}
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Logging.Level = "LOUD"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error for invalid log level")
	}
	if !strings.Contains(err.Error(), "oneof") {
		t.Errorf("expected 'oneof' validation error, got: %v", err)
	}
}

func TestValidate_BadAssetPattern(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Optimize.Include = []string{"("}

	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for unparsable pattern")
	}
}

func TestValidate_PatternModeNeedsPattern(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Optimize.Extract.Mode = "pattern"

	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for missing extract pattern")
	}
}

func TestValidate_BadDebounce(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Watch.Debounce = "soon"

	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for unparsable debounce")
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	original := GetDefaultConfig()
	original.Assets.Root = "out"

	if err := SaveConfig(original, path); err != nil {
		t.Fatalf("SaveConfig returned error: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if loaded.Assets.Root != "out" {
		t.Errorf("round trip lost assets root: %q", loaded.Assets.Root)
	}
}

func TestOptimizerConfigMapping(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Optimize.Target.Capabilities = []string{"arrow_function"}
	cfg.Optimize.Parallel = ParallelConfig{Enabled: false, Workers: 3}
	cfg.Optimize.Extract.Banner.Text = "see licenses"

	oc := cfg.OptimizerConfig()
	if oc.Options.ECMA != 2015 {
		t.Errorf("expected derived ECMA 2015, got %d", oc.Options.ECMA)
	}
	if !oc.Parallel.Disabled {
		t.Error("expected parallelism disabled")
	}
	if oc.Parallel.Workers != 3 {
		t.Errorf("unexpected workers: %d", oc.Parallel.Workers)
	}
	if oc.Comments.Banner.Text != "see licenses" {
		t.Errorf("unexpected banner text: %q", oc.Comments.Banner.Text)
	}
}

func TestOptimizerConfigExplicitECMAWins(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Optimize.Target.ECMA = 5
	cfg.Optimize.Target.Capabilities = []string{"dynamic_import"}

	if got := cfg.OptimizerConfig().Options.ECMA; got != 5 {
		t.Errorf("expected explicit ECMA 5 to win, got %d", got)
	}
}
