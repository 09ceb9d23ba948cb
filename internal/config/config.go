// Package config loads the benchmark command's YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalid is returned by Validate (and Load) for unusable settings.
var ErrInvalid = errors.New("config: invalid")

// Config describes the cache under test and the synthetic workload.
type Config struct {
	Cache    CacheConfig    `yaml:"cache"`
	Workload WorkloadConfig `yaml:"workload"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// CacheConfig sizes the N-way cache.
type CacheConfig struct {
	Ways        int `yaml:"ways"`
	WayCapacity int `yaml:"way_capacity"`
	// ResizeTo, when positive, is applied with UpdateCapacity halfway
	// through the run.
	ResizeTo int `yaml:"resize_to"`
}

// WorkloadConfig shapes the generated traffic.
type WorkloadConfig struct {
	Workers  int           `yaml:"workers"`
	Duration time.Duration `yaml:"duration"`
	ReadPct  int           `yaml:"read_pct"`
	Keys     int           `yaml:"keys"`
	ZipfS    float64       `yaml:"zipf_s"`
	ZipfV    float64       `yaml:"zipf_v"`
	Seed     int64         `yaml:"seed"`
	Preload  int           `yaml:"preload"`
	// MaxAge makes validated reads reject values older than this (0 = off).
	MaxAge time.Duration `yaml:"max_age"`
}

// MetricsConfig controls the HTTP endpoints.
type MetricsConfig struct {
	Addr      string `yaml:"addr"`
	PprofAddr string `yaml:"pprof_addr"`
	Namespace string `yaml:"namespace"`
}

// Default returns the built-in configuration.
func Default(ways int) Config {
	return Config{
		Cache: CacheConfig{Ways: ways, WayCapacity: 4096},
		Workload: WorkloadConfig{
			Workers:  8,
			Duration: 10 * time.Second,
			ReadPct:  80,
			Keys:     1_000_000,
			ZipfS:    1.1,
			ZipfV:    1.0,
			Seed:     1,
		},
		Metrics:  MetricsConfig{Addr: ":8080", Namespace: "nway"},
		LogLevel: "info",
	}
}

// Load reads path and overlays it on base. Fields absent from the file keep
// their base values.
func Load(path string, base Config) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg := base
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the settings the cache and workload cannot run without.
func (c Config) Validate() error {
	switch {
	case c.Cache.Ways <= 0:
		return fmt.Errorf("%w: cache.ways must be positive", ErrInvalid)
	case c.Cache.WayCapacity < 0:
		return fmt.Errorf("%w: cache.way_capacity must not be negative", ErrInvalid)
	case c.Workload.ReadPct < 0 || c.Workload.ReadPct > 100:
		return fmt.Errorf("%w: workload.read_pct must be within [0,100]", ErrInvalid)
	case c.Workload.Keys <= 0:
		return fmt.Errorf("%w: workload.keys must be positive", ErrInvalid)
	case c.Workload.ZipfS <= 1:
		return fmt.Errorf("%w: workload.zipf_s must be > 1", ErrInvalid)
	case c.Workload.ZipfV < 1:
		return fmt.Errorf("%w: workload.zipf_v must be >= 1", ErrInvalid)
	}
	return nil
}
