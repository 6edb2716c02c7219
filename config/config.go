// Package config loads engine configuration from YAML files and NESTGO_*
// environment variables.
//
// Priority is env > file > defaults. Values are validated with struct tags.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Sampler kinds.
const (
	KindSlice          = "slice"
	KindMultiEllipsoid = "multi_ellipsoid"
)

// Config is the top-level engine configuration.
//
// Thread Safety: Safe to read concurrently. Not safe to modify after creation.
type Config struct {
	// Sampler selects and bounds the constrained sampler.
	Sampler SamplerConfig `yaml:"sampler"`

	// Slice configures the slice sampler.
	Slice SliceConfig `yaml:"slice"`

	// MultiEllipsoid configures the multi-ellipsoidal sampler.
	MultiEllipsoid MultiEllipsoidConfig `yaml:"multi_ellipsoid"`

	// Batch configures parallel replacement of live points.
	Batch BatchConfig `yaml:"batch"`

	// Observability configures logging, metrics and tracing.
	Observability ObservabilityConfig `yaml:"observability"`
}

// SamplerConfig selects the sampler.
type SamplerConfig struct {
	Kind          string `yaml:"kind" validate:"required,oneof=slice multi_ellipsoid"`
	MaxIterations int    `yaml:"max_iterations" validate:"gte=0"`
}

// SliceConfig contains slice sampler settings.
type SliceConfig struct {
	NumSlices      int  `yaml:"num_slices" validate:"gte=1"`
	NumPhantomSave int  `yaml:"num_phantom_save" validate:"gte=0,ltfield=NumSlices"`
	MidpointShrink bool `yaml:"midpoint_shrink"`
	Perfect        bool `yaml:"perfect"`
	GradientSlice  bool `yaml:"gradient_slice"`
}

// MultiEllipsoidConfig contains multi-ellipsoidal sampler settings.
type MultiEllipsoidConfig struct {
	Depth               int     `yaml:"depth" validate:"gte=0,lte=30"`
	EfficiencyThreshold float64 `yaml:"efficiency_threshold" validate:"gt=0,lte=1"`
	Method              string  `yaml:"method" validate:"oneof=kmeans"`
}

// BatchConfig contains batch settings. Zero MaxWorkers means GOMAXPROCS;
// zero InvocationsPerSecond means unlimited.
type BatchConfig struct {
	MaxWorkers           int     `yaml:"max_workers" validate:"gte=0"`
	InvocationsPerSecond float64 `yaml:"invocations_per_second" validate:"gte=0"`
	MaxRetries           int     `yaml:"max_retries" validate:"gte=0"`
}

// ObservabilityConfig contains observability settings.
type ObservabilityConfig struct {
	LogLevel       string `yaml:"log_level" validate:"oneof=debug info warn error"`
	LogFormat      string `yaml:"log_format" validate:"oneof=text json"`
	MetricsEnabled bool   `yaml:"metrics_enabled"`
	TracingEnabled bool   `yaml:"tracing_enabled"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Default returns the default configuration.
func Default() Config {
	return Config{
		Sampler: SamplerConfig{
			Kind: KindSlice,
		},
		Slice: SliceConfig{
			NumSlices:      5,
			NumPhantomSave: 0,
			MidpointShrink: false,
			Perfect:        true,
		},
		MultiEllipsoid: MultiEllipsoidConfig{
			Depth:               5,
			EfficiencyThreshold: 0.1,
			Method:              "kmeans",
		},
		Batch: BatchConfig{
			MaxRetries: 3,
		},
		Observability: ObservabilityConfig{
			LogLevel:  "info",
			LogFormat: "text",
		},
	}
}

// Load loads configuration with priority: env > file > defaults.
// A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
	}

	if err := loadEnv(&cfg); err != nil {
		return cfg, fmt.Errorf("load config env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Parse decodes YAML on top of the defaults and validates the result.
// Environment variables are not consulted.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration against its struct tags.
func (c Config) Validate() error {
	return validate.Struct(c)
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

type envVar struct {
	name string
	set  func(string) error
}

func intVar(dst *int) func(string) error {
	return func(v string) error {
		i, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*dst = i
		return nil
	}
}

func floatVar(dst *float64) func(string) error {
	return func(v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		*dst = f
		return nil
	}
}

func boolVar(dst *bool) func(string) error {
	return func(v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		*dst = b
		return nil
	}
}

func stringVar(dst *string) func(string) error {
	return func(v string) error {
		*dst = v
		return nil
	}
}

func loadEnv(cfg *Config) error {
	vars := []envVar{
		{"NESTGO_SAMPLER_KIND", stringVar(&cfg.Sampler.Kind)},
		{"NESTGO_MAX_ITERATIONS", intVar(&cfg.Sampler.MaxIterations)},
		{"NESTGO_NUM_SLICES", intVar(&cfg.Slice.NumSlices)},
		{"NESTGO_NUM_PHANTOM_SAVE", intVar(&cfg.Slice.NumPhantomSave)},
		{"NESTGO_MIDPOINT_SHRINK", boolVar(&cfg.Slice.MidpointShrink)},
		{"NESTGO_PERFECT", boolVar(&cfg.Slice.Perfect)},
		{"NESTGO_GRADIENT_SLICE", boolVar(&cfg.Slice.GradientSlice)},
		{"NESTGO_DEPTH", intVar(&cfg.MultiEllipsoid.Depth)},
		{"NESTGO_EFFICIENCY_THRESHOLD", floatVar(&cfg.MultiEllipsoid.EfficiencyThreshold)},
		{"NESTGO_METHOD", stringVar(&cfg.MultiEllipsoid.Method)},
		{"NESTGO_MAX_WORKERS", intVar(&cfg.Batch.MaxWorkers)},
		{"NESTGO_INVOCATIONS_PER_SECOND", floatVar(&cfg.Batch.InvocationsPerSecond)},
		{"NESTGO_MAX_RETRIES", intVar(&cfg.Batch.MaxRetries)},
		{"NESTGO_LOG_LEVEL", stringVar(&cfg.Observability.LogLevel)},
		{"NESTGO_LOG_FORMAT", stringVar(&cfg.Observability.LogFormat)},
		{"NESTGO_METRICS_ENABLED", boolVar(&cfg.Observability.MetricsEnabled)},
		{"NESTGO_TRACING_ENABLED", boolVar(&cfg.Observability.TracingEnabled)},
	}

	for _, ev := range vars {
		v, ok := os.LookupEnv(ev.name)
		if !ok || v == "" {
			continue
		}
		if err := ev.set(v); err != nil {
			return fmt.Errorf("%s: %w", ev.name, err)
		}
	}
	return nil
}
