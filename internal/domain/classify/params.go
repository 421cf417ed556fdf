// Package classify implements the shot classification state machine.
package classify

import "fmt"

// Params are the classification thresholds, fixed for a session.
// Defaults follow the reference tuning for a backboard-mounted
// MPU6050/VL53L1X pair; all values are externally configurable.
type Params struct {
	// ImpactThresholdG is the acceleration magnitude above which an
	// inertial sample counts as a rim/board impact.
	ImpactThresholdG float64

	// DistanceThresholdMM: a ranging sample below this distance may be
	// a ball crossing the target plane.
	DistanceThresholdMM float64

	// SignalRateThreshold: basketballs return a high signal rate;
	// readings at or below this are ignored for basket detection.
	SignalRateThreshold float64

	// MaxTimeAfterImpact is the window in seconds after an impact in
	// which a basket crossing classifies the shot as a made bank shot.
	MaxTimeAfterImpact float64

	// BlackoutWindow is the cooldown in seconds after a resolved shot
	// during which all samples are ignored (rim rattle suppression).
	BlackoutWindow float64
}

// DefaultParams returns the reference thresholds.
func DefaultParams() Params {
	return Params{
		ImpactThresholdG:    4.0,
		DistanceThresholdMM: 350,
		SignalRateThreshold: 1000,
		MaxTimeAfterImpact:  0.5,
		BlackoutWindow:      1.0,
	}
}

// Validate rejects non-positive thresholds. Construction is the only
// place configuration errors can surface; the sample path never fails.
func (p Params) Validate() error {
	check := func(name string, v float64) error {
		if v <= 0 {
			return fmt.Errorf("%w: %s = %v", ErrInvalidParams, name, v)
		}
		return nil
	}
	if err := check("impact_threshold_g", p.ImpactThresholdG); err != nil {
		return err
	}
	if err := check("distance_threshold_mm", p.DistanceThresholdMM); err != nil {
		return err
	}
	if err := check("signal_rate_threshold", p.SignalRateThreshold); err != nil {
		return err
	}
	if err := check("max_time_after_impact_s", p.MaxTimeAfterImpact); err != nil {
		return err
	}
	return check("blackout_window_s", p.BlackoutWindow)
}
