package ranging

import (
	"context"
	"fmt"
	"time"

	"github.com/jrklab/basket-counting/pkg/logger"
	"github.com/jrklab/basket-counting/pkg/metrics"
)

// Default supervision parameters.
const (
	defaultTimeout     = 40 * time.Millisecond
	defaultMaxRecovers = 3
)

// Monitor watches the measurement stream for staleness and recovers a
// wedged sensor by power cycling it. Used from the device run loop
// only; not safe for concurrent use.
type Monitor struct {
	sensor      Sensor
	mode        Mode
	timeout     time.Duration
	maxRecovers int

	lastSample time.Time
	failures   int

	logger logger.Logger
}

// MonitorOption applies a configuration option to the Monitor.
type MonitorOption func(*Monitor)

// WithTimeout sets the staleness threshold.
func WithTimeout(d time.Duration) MonitorOption {
	return func(m *Monitor) {
		if d > 0 {
			m.timeout = d
		}
	}
}

// WithMaxRecovers caps consecutive recovery attempts before the sensor
// is declared unrecoverable.
func WithMaxRecovers(n int) MonitorOption {
	return func(m *Monitor) {
		if n > 0 {
			m.maxRecovers = n
		}
	}
}

// WithLogger sets a custom logger for the monitor.
func WithLogger(l logger.Logger) MonitorOption {
	return func(m *Monitor) {
		if l != nil {
			m.logger = l
		}
	}
}

// NewMonitor creates a monitor supervising the given sensor.
func NewMonitor(sensor Sensor, mode Mode, opts ...MonitorOption) *Monitor {
	m := &Monitor{
		sensor:      sensor,
		mode:        mode,
		timeout:     defaultTimeout,
		maxRecovers: defaultMaxRecovers,
		lastSample:  time.Now(),
		logger:      logger.Get().Named("ranging"),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Observe records a successful measurement and clears the failure
// streak.
func (m *Monitor) Observe(now time.Time) {
	m.lastSample = now
	m.failures = 0
}

// Stale reports whether the stream has been silent past the threshold.
func (m *Monitor) Stale(now time.Time) bool {
	return now.Sub(m.lastSample) > m.timeout
}

// Check recovers the sensor if the stream is stale. Returns
// ErrRecovery wrapped with the cause when a recovery attempt fails, and
// ErrStale once the attempt budget is exhausted.
func (m *Monitor) Check(ctx context.Context, now time.Time) error {
	if !m.Stale(now) {
		return nil
	}
	if m.failures >= m.maxRecovers {
		return fmt.Errorf("%w: %d recoveries exhausted", ErrStale, m.maxRecovers)
	}

	m.failures++
	m.logger.Warn(ctx, "ranging stream stale, power cycling sensor",
		logger.Int("attempt", m.failures),
		logger.String("silent_for", now.Sub(m.lastSample).String()),
	)

	if err := m.recover(ctx); err != nil {
		metrics.RecordSensorResetError()
		return fmt.Errorf("%w: %w", ErrRecovery, err)
	}

	metrics.RecordSensorReset()
	// Give the rebooted sensor a full timeout window before the next
	// staleness verdict.
	m.lastSample = now
	return nil
}

// recover reboots the sensor over its shutdown line and restores the
// operating mode.
func (m *Monitor) recover(ctx context.Context) error {
	if err := m.sensor.PowerCycle(ctx); err != nil {
		return fmt.Errorf("power cycle: %w", err)
	}
	if err := m.sensor.Init(ctx); err != nil {
		return fmt.Errorf("init: %w", err)
	}
	if err := m.sensor.Configure(ctx, m.mode); err != nil {
		return fmt.Errorf("configure: %w", err)
	}
	if err := m.sensor.StartRanging(ctx); err != nil {
		return fmt.Errorf("start ranging: %w", err)
	}
	return nil
}
