// Package config loads the optional pipeline configuration file. Every
// value has a working default so the CLI runs without one; core packages
// take their options as explicit parameters and never read this.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// PipelineConfig is the root of the YAML configuration file.
type PipelineConfig struct {
	// AnomalyCeiling is the largest per-interval delta accepted as real
	// traffic. Zero means the built-in default.
	AnomalyCeiling int64 `yaml:"anomalyCeiling" validate:"gte=0"`

	// MaxConcurrency bounds the per-turnstile worker fan-out.
	MaxConcurrency int `yaml:"maxConcurrency" validate:"gte=0"`

	// Timezone is the IANA name the turnstile timestamps are read in.
	Timezone string `yaml:"timezone"`

	// BucketWidth is the default aggregation bucket, eg. "4h" or "24h".
	BucketWidth string `yaml:"bucketWidth"`

	// BucketOffset shifts the bucket grid away from epoch alignment.
	BucketOffset string `yaml:"bucketOffset"`
}

// Default returns the configuration used when no file is given.
func Default() PipelineConfig {
	return PipelineConfig{
		Timezone:    "America/New_York",
		BucketWidth: "24h",
	}
}

// Load reads and validates a configuration file, applying defaults for
// anything left unset.
func Load(path string) (PipelineConfig, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	if cfg.Timezone == "" {
		cfg.Timezone = Default().Timezone
	}
	if cfg.BucketWidth == "" {
		cfg.BucketWidth = Default().BucketWidth
	}

	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		return cfg, fmt.Errorf("config: validating %s: %w", path, err)
	}

	if _, err := cfg.Location(); err != nil {
		return cfg, err
	}
	if _, err := cfg.Bucket(); err != nil {
		return cfg, err
	}
	if _, err := cfg.Offset(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Location resolves the configured timezone.
func (c PipelineConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: unknown timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Bucket resolves the configured bucket width and offset.
func (c PipelineConfig) Bucket() (width time.Duration, err error) {
	width, err = time.ParseDuration(c.BucketWidth)
	if err != nil {
		return 0, fmt.Errorf("config: invalid bucketWidth %q: %w", c.BucketWidth, err)
	}
	if width <= 0 {
		return 0, fmt.Errorf("config: bucketWidth %q must be positive", c.BucketWidth)
	}
	return width, nil
}

// Offset resolves the configured bucket offset; empty means zero.
func (c PipelineConfig) Offset() (time.Duration, error) {
	if c.BucketOffset == "" {
		return 0, nil
	}
	offset, err := time.ParseDuration(c.BucketOffset)
	if err != nil {
		return 0, fmt.Errorf("config: invalid bucketOffset %q: %w", c.BucketOffset, err)
	}
	return offset, nil
}
