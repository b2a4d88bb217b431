// Package config loads editor settings from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/chazu/prefab/pkg/overlap"
	"github.com/chazu/prefab/pkg/snap"
)

// Config holds every tunable of the composition engine.
type Config struct {
	SnapThreshold      float64 `env:"PREFAB_SNAP_THRESHOLD" envDefault:"0.3"`
	SnapCommitDistance float64 `env:"PREFAB_SNAP_COMMIT_DISTANCE" envDefault:"0.05"`
	MagnetStrength     float64 `env:"PREFAB_MAGNET_STRENGTH" envDefault:"0.5"`
	FacingTolerance    float64 `env:"PREFAB_FACING_TOLERANCE" envDefault:"0.05"`
	FaceToleranceRatio float64 `env:"PREFAB_FACE_TOLERANCE_RATIO" envDefault:"0.2"`
	AmbiguityRatio     float64 `env:"PREFAB_AMBIGUITY_RATIO" envDefault:"0.2"`

	OverlapEpsilon float64 `env:"PREFAB_OVERLAP_EPSILON" envDefault:"0"`
	PlacementStep  float64 `env:"PREFAB_PLACEMENT_STEP" envDefault:"0.5"`
	PlacementTries int     `env:"PREFAB_PLACEMENT_TRIES" envDefault:"80"`
	StackTolerance float64 `env:"PREFAB_STACK_TOLERANCE" envDefault:"0.01"`

	HistoryLimit int `env:"PREFAB_HISTORY_LIMIT" envDefault:"100"`

	CatalogPath string        `env:"PREFAB_CATALOG_PATH"`
	LogLevel    string        `env:"PREFAB_LOG_LEVEL" envDefault:"info"`
	EvalTimeout time.Duration `env:"PREFAB_EVAL_TIMEOUT" envDefault:"5s"`

	// MetricsAddr enables the Prometheus endpoint when set, e.g. ":9090".
	MetricsAddr string `env:"PREFAB_METRICS_ADDR"`
}

// Load parses the process environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse env: %w", err)
	}
	return cfg, cfg.validate()
}

// FromMap parses cfg from vars instead of the process environment.
func FromMap(vars map[string]string) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: vars}); err != nil {
		return Config{}, fmt.Errorf("config: parse env: %w", err)
	}
	return cfg, cfg.validate()
}

// Default returns the built-in settings.
func Default() Config {
	cfg, err := FromMap(map[string]string{})
	if err != nil {
		// the defaults are constants; failing here is a programming error
		panic(err)
	}
	return cfg
}

func (c Config) validate() error {
	switch {
	case c.SnapThreshold <= 0:
		return fmt.Errorf("config: snap threshold must be positive, got %v", c.SnapThreshold)
	case c.SnapCommitDistance < 0 || c.SnapCommitDistance > c.SnapThreshold:
		return fmt.Errorf("config: snap commit distance must be in [0, %v], got %v", c.SnapThreshold, c.SnapCommitDistance)
	case c.FacingTolerance < 0 || c.FacingTolerance > 1:
		return fmt.Errorf("config: facing tolerance must be in [0, 1], got %v", c.FacingTolerance)
	case c.FaceToleranceRatio < 0:
		return fmt.Errorf("config: face tolerance ratio must not be negative, got %v", c.FaceToleranceRatio)
	case c.AmbiguityRatio < 0:
		return fmt.Errorf("config: ambiguity ratio must not be negative, got %v", c.AmbiguityRatio)
	case c.MagnetStrength < 0 || c.MagnetStrength > 1:
		return fmt.Errorf("config: magnet strength must be in [0, 1], got %v", c.MagnetStrength)
	case c.PlacementStep <= 0:
		return fmt.Errorf("config: placement step must be positive, got %v", c.PlacementStep)
	case c.PlacementTries < 0:
		return fmt.Errorf("config: placement tries must not be negative, got %d", c.PlacementTries)
	case c.OverlapEpsilon < 0:
		return fmt.Errorf("config: overlap epsilon must not be negative, got %v", c.OverlapEpsilon)
	case c.StackTolerance < 0:
		return fmt.Errorf("config: stack tolerance must not be negative, got %v", c.StackTolerance)
	}
	return nil
}

// SnapOptions returns the snap search settings.
func (c Config) SnapOptions() snap.Options {
	return snap.Options{
		Threshold:          c.SnapThreshold,
		FacingTolerance:    c.FacingTolerance,
		FaceToleranceRatio: c.FaceToleranceRatio,
		AmbiguityRatio:     c.AmbiguityRatio,
	}
}

// Resolver returns the placement resolver settings.
func (c Config) Resolver() overlap.Resolver {
	return overlap.Resolver{
		Step:           c.PlacementStep,
		Tries:          c.PlacementTries,
		StackTolerance: c.StackTolerance,
		Epsilon:        c.OverlapEpsilon,
	}
}
