package config

import (
	"fmt"
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"
)

// Validate checks the configuration against its struct tags plus the
// cross-field rules tags cannot express.
func Validate(cfg *Config) error {
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return err
	}

	for _, patterns := range [][]string{cfg.Optimize.Test, cfg.Optimize.Include, cfg.Optimize.Exclude} {
		for _, p := range patterns {
			if _, err := regexp.Compile(p); err != nil {
				return fmt.Errorf("invalid asset pattern %q: %w", p, err)
			}
		}
	}

	if cfg.Optimize.Extract.Mode == "pattern" {
		if cfg.Optimize.Extract.Pattern == "" {
			return fmt.Errorf("extract mode %q requires a pattern", cfg.Optimize.Extract.Mode)
		}
		if _, err := regexp.Compile(cfg.Optimize.Extract.Pattern); err != nil {
			return fmt.Errorf("invalid extract pattern %q: %w", cfg.Optimize.Extract.Pattern, err)
		}
	}

	if cfg.Watch.Debounce != "" {
		if _, err := time.ParseDuration(cfg.Watch.Debounce); err != nil {
			return fmt.Errorf("invalid watch debounce %q: %w", cfg.Watch.Debounce, err)
		}
	}

	return nil
}
