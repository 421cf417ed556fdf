package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/jrklab/basket-counting/internal/wire"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New(ctx))
//  2. file (YAML) if BASKET_CONFIG is set
//  3. env (prefix BASKET_)
//
// Validation is fail-fast: a bad threshold or wire format aborts startup
// rather than producing silent misclassification later.
func Load(ctx context.Context) (*Config, error) {
	// Start with defaults
	base := New(ctx)

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("BASKET_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: BASKET_LISTEN_ADDR, BASKET_QUEUE_SIZE, ...
	// Map env keys like BASKET_QUEUE_SIZE -> queue_size (flat keys)
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("BASKET_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "basket_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("%w: listen_addr must not be empty", ErrInvalidConfig)
	}
	if c.HTTPAddr == "" {
		return fmt.Errorf("%w: http_addr must not be empty", ErrInvalidConfig)
	}
	if c.QueueSize <= 0 {
		return fmt.Errorf("%w: queue_size must be positive, got %d", ErrInvalidConfig, c.QueueSize)
	}
	if _, err := wire.ParseFormat(c.WireFormat); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	thresholds := map[string]float64{
		"accel_threshold_g":       c.AccelThresholdG,
		"distance_threshold_mm":   c.DistanceThresholdMM,
		"signal_rate_threshold":   c.SignalRateThreshold,
		"max_time_after_impact_s": c.MaxTimeAfterImpactS,
		"blackout_duration_s":     c.BlackoutDurationS,
	}
	for name, v := range thresholds {
		if v <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %v", ErrInvalidConfig, name, v)
		}
	}

	if c.FramePeriodMS <= 0 {
		return fmt.Errorf("%w: frame_period_ms must be positive, got %d", ErrInvalidConfig, c.FramePeriodMS)
	}
	if c.RingCapacity <= 0 {
		return fmt.Errorf("%w: ring_capacity must be positive, got %d", ErrInvalidConfig, c.RingCapacity)
	}
	if c.SensorTimeoutMS <= 0 {
		return fmt.Errorf("%w: sensor_timeout_ms must be positive, got %d", ErrInvalidConfig, c.SensorTimeoutMS)
	}
	switch c.RangingMode {
	case "short", "medium", "long":
	default:
		return fmt.Errorf("%w: unknown ranging_mode %q", ErrInvalidConfig, c.RangingMode)
	}
	return nil
}
