// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) initializer to build a Config with defaults.
// - All future functions must accept context.Context as the first parameter.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"context"
)

// Config contains process configuration for the host pipeline and the
// device runtime. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// ListenAddr configures the UDP bind address frames arrive on.
	ListenAddr string `koanf:"listen_addr"`

	// HTTPAddr configures the HTTP listen address for health, stats,
	// and shot queries, e.g. ":9080".
	HTTPAddr string `koanf:"http_addr"`

	// QueueSize bounds the in-memory frame queue between the UDP
	// receive task and the processor.
	QueueSize int `koanf:"queue_size"`

	// WireFormat selects the frame layout: "base" or "sequenced".
	WireFormat string `koanf:"wire_format"`

	// AccelThresholdG is the impact detection threshold in g.
	AccelThresholdG float64 `koanf:"accel_threshold_g"`

	// DistanceThresholdMM is the basket crossing distance bound in mm.
	DistanceThresholdMM float64 `koanf:"distance_threshold_mm"`

	// SignalRateThreshold is the minimum ranging signal rate for a
	// crossing to count.
	SignalRateThreshold float64 `koanf:"signal_rate_threshold"`

	// MaxTimeAfterImpactS is the basket detection window in seconds.
	MaxTimeAfterImpactS float64 `koanf:"max_time_after_impact_s"`

	// BlackoutDurationS suppresses re-triggering after a shot resolves.
	BlackoutDurationS float64 `koanf:"blackout_duration_s"`

	// FramePeriodMS sets the device-side frame send interval.
	FramePeriodMS int `koanf:"frame_period_ms"`

	// RingCapacity sets the device sample ring size; rounded up to the
	// next power of two.
	RingCapacity int `koanf:"ring_capacity"`

	// SensorTimeoutMS is the ranging staleness watchdog threshold.
	SensorTimeoutMS int `koanf:"sensor_timeout_ms"`

	// RangingMode selects the distance sensor preset: short, medium, long.
	RangingMode string `koanf:"ranging_mode"`
}

// New creates a Config with defaults. Context is accepted first to
// satisfy the project-wide convention; it is reserved for future use
// and is currently unused.
func New(_ context.Context) *Config {
	c := &Config{
		LogLevel:            "info",
		ListenAddr:          ":5005",
		HTTPAddr:            ":9080",
		QueueSize:           1024,
		WireFormat:          "base",
		AccelThresholdG:     4.0,
		DistanceThresholdMM: 350,
		SignalRateThreshold: 1000,
		MaxTimeAfterImpactS: 0.5,
		BlackoutDurationS:   1.0,
		FramePeriodMS:       100,
		RingCapacity:        256,
		SensorTimeoutMS:     40,
		RangingMode:         "short",
	}
	return c
}
