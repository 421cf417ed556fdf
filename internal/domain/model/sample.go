// Package model contains domain models passed between layers.
package model

import "math"

// Sentinel distance values used on the wire.
const (
	// NoTarget marks a ranging measurement where the sensor acquired no
	// target. It is a valid reading, not an error.
	NoTarget uint16 = 0xFFFF

	// SlotUnused pads empty ranging slots in a fixed-size frame. It must
	// never be interpreted as a measurement.
	SlotUnused uint16 = 0xFFFE
)

// Sensor conversion factors for the ±16g / ±2000°/s configuration.
const (
	AccelSensitivity = 2048.0 // LSB/g
	GyroSensitivity  = 16.384 // LSB/°/s
)

// SensorClass tags a sample with its producing sensor.
type SensorClass uint8

const (
	SensorInertial SensorClass = iota + 1
	SensorRanging
)

// String returns the sensor class label used in logs and metrics.
func (c SensorClass) String() string {
	switch c {
	case SensorInertial:
		return "inertial"
	case SensorRanging:
		return "ranging"
	default:
		return "unknown"
	}
}

// InertialSample is a single accelerometer+gyroscope reading in raw
// sensor units, stamped with the device monotonic clock.
type InertialSample struct {
	TimestampMS uint32
	Ax, Ay, Az  int16 // raw acceleration
	Gx, Gy, Gz  int16 // raw angular velocity
}

// AccelG returns the acceleration of one axis in g.
func AccelG(raw int16) float64 { return float64(raw) / AccelSensitivity }

// GyroDPS returns the angular velocity of one axis in °/s.
func GyroDPS(raw int16) float64 { return float64(raw) / GyroSensitivity }

// MagnitudeG returns the Euclidean norm of the three acceleration axes in g.
func (s InertialSample) MagnitudeG() float64 {
	ax := AccelG(s.Ax)
	ay := AccelG(s.Ay)
	az := AccelG(s.Az)
	return math.Sqrt(ax*ax + ay*ay + az*az)
}

// RangeSample is a single time-of-flight reading. Distance passes
// through unscaled; NoTarget marks a reading with nothing in view.
type RangeSample struct {
	TimestampMS uint32
	DistanceMM  uint16
	SignalRate  uint16
}

// HasTarget reports whether the reading measured an actual target.
func (s RangeSample) HasTarget() bool {
	return s.DistanceMM != NoTarget && s.DistanceMM != SlotUnused
}

// Sample is the tagged variant flowing out of the merge: exactly one of
// Inertial or Range is meaningful, selected by Class.
type Sample struct {
	Class    SensorClass
	Inertial InertialSample
	Range    RangeSample
}

// NewInertial wraps an inertial reading as a merged-stream sample.
func NewInertial(s InertialSample) Sample {
	return Sample{Class: SensorInertial, Inertial: s}
}

// NewRange wraps a ranging reading as a merged-stream sample.
func NewRange(s RangeSample) Sample {
	return Sample{Class: SensorRanging, Range: s}
}

// TimestampMS returns the device timestamp of whichever reading the
// sample carries.
func (s Sample) TimestampMS() uint32 {
	if s.Class == SensorRanging {
		return s.Range.TimestampMS
	}
	return s.Inertial.TimestampMS
}

// Time returns the device timestamp in seconds.
func (s Sample) Time() float64 {
	return float64(s.TimestampMS()) / 1000.0
}
