// Package ranging abstracts the time-of-flight distance sensor and its
// health supervision.
package ranging

import (
	"context"

	"github.com/jrklab/basket-counting/internal/domain/model"
)

// Sensor is the driver surface for a VL53L1X-class time-of-flight
// sensor. Implementations sit on I2C on real hardware; tests and the
// simulator provide in-memory fakes.
type Sensor interface {
	// Init brings the sensor out of standby and loads its configuration.
	Init(ctx context.Context) error

	// Configure applies a ranging mode preset (timing budget and
	// inter-measurement period).
	Configure(ctx context.Context, mode Mode) error

	// StartRanging begins continuous measurements.
	StartRanging(ctx context.Context) error

	// StopRanging halts measurements.
	StopRanging(ctx context.Context) error

	// DataReady reports whether a new measurement is available. The
	// result registers answer reads regardless of ranging progress, so
	// callers must gate Read on this check.
	DataReady(ctx context.Context) (bool, error)

	// Read returns the latest measurement and clears the data-ready
	// interrupt. A measurement with no target in view reports the
	// no-target distance sentinel.
	Read(ctx context.Context) (model.RangeSample, error)

	// PowerCycle toggles the shutdown line to force a hard reboot. The
	// sensor requires Init and Configure again afterwards.
	PowerCycle(ctx context.Context) error
}
