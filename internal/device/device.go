package device

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jrklab/basket-counting/internal/device/ranging"
	"github.com/jrklab/basket-counting/internal/domain/model"
	"github.com/jrklab/basket-counting/pkg/logger"
)

// Default run loop configuration.
const (
	defaultFramePeriod = 100 * time.Millisecond
	watchdogPeriod     = 10 * time.Millisecond
)

// Device ties the sampling paths, the packetizer, and the ranging
// watchdog into one run loop. Inertial samples arrive via PushInertial
// from the accelerometer interrupt path; ranging is polled here.
type Device struct {
	packetizer  *Packetizer
	sensor      ranging.Sensor
	monitor     *ranging.Monitor
	mode        ranging.Mode
	framePeriod time.Duration

	logger logger.Logger
}

// DeviceOption applies a configuration option to the Device.
type DeviceOption func(*Device)

// WithFramePeriod sets the frame send interval.
func WithFramePeriod(d time.Duration) DeviceOption {
	return func(dev *Device) {
		if d > 0 {
			dev.framePeriod = d
		}
	}
}

// WithDeviceLogger sets a custom logger for the device.
func WithDeviceLogger(l logger.Logger) DeviceOption {
	return func(dev *Device) {
		if l != nil {
			dev.logger = l
		}
	}
}

// NewDevice assembles the device runtime.
func NewDevice(p *Packetizer, sensor ranging.Sensor, mode ranging.Mode, monitor *ranging.Monitor, opts ...DeviceOption) *Device {
	d := &Device{
		packetizer:  p,
		sensor:      sensor,
		monitor:     monitor,
		mode:        mode,
		framePeriod: defaultFramePeriod,
		logger:      logger.Get().Named("device"),
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// PushInertial feeds an accelerometer/gyro sample into the pipeline.
func (d *Device) PushInertial(s model.InertialSample) bool {
	return d.packetizer.PushInertial(s)
}

// Run starts the sensor and drives polling, sending, and supervision
// until ctx is cancelled. Send failures are logged and the loop keeps
// going; an unrecoverable sensor stops the loop with an error.
func (d *Device) Run(ctx context.Context) error {
	if err := d.sensor.Init(ctx); err != nil {
		return err
	}
	if err := d.sensor.Configure(ctx, d.mode); err != nil {
		return err
	}
	if err := d.sensor.StartRanging(ctx); err != nil {
		return err
	}
	defer func() {
		_ = d.sensor.StopRanging(context.Background())
	}()

	d.logger.Info(ctx, "device running",
		logger.String("mode", d.mode.String()),
		logger.String("frame_period", d.framePeriod.String()),
	)

	pollTicker := time.NewTicker(d.mode.SampleInterval())
	defer pollTicker.Stop()
	sendTicker := time.NewTicker(d.framePeriod)
	defer sendTicker.Stop()
	watchdogTicker := time.NewTicker(watchdogPeriod)
	defer watchdogTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-pollTicker.C:
			ready, err := d.sensor.DataReady(ctx)
			if err != nil {
				d.logger.Warn(ctx, "data-ready poll failed", logger.Error(err))
				continue
			}
			if !ready {
				// No fresh measurement; the watchdog decides whether the
				// silence has gone on too long.
				continue
			}
			s, err := d.sensor.Read(ctx)
			if err != nil {
				d.logger.Warn(ctx, "ranging read failed", logger.Error(err))
				continue
			}
			d.monitor.Observe(time.Now())
			d.packetizer.PushRange(s)

		case <-sendTicker.C:
			if err := d.packetizer.Flush(ctx); err != nil {
				d.logger.Warn(ctx, "frame send failed", logger.Error(err))
			}

		case <-watchdogTicker.C:
			if err := d.monitor.Check(ctx, time.Now()); err != nil {
				if errors.Is(err, ranging.ErrStale) {
					d.logger.Error(ctx, "ranging sensor unrecoverable", logger.Error(err))
					return fmt.Errorf("%w: %w", ErrSensorDead, err)
				}
				d.logger.Warn(ctx, "sensor recovery failed", logger.Error(err))
			}
		}
	}
}

// defaultClock measures milliseconds since construction, mirroring the
// firmware's millisecond tick counter.
func defaultClock() Clock {
	start := time.Now()
	return func() uint32 {
		return uint32(time.Since(start).Milliseconds())
	}
}
