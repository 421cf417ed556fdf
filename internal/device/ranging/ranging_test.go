package ranging_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jrklab/basket-counting/internal/device/ranging"
	"github.com/jrklab/basket-counting/internal/domain/model"
	"github.com/jrklab/basket-counting/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

type fakeSensor struct {
	inits       int
	configures  int
	starts      int
	powerCycles int
	lastMode    ranging.Mode
	failCycle   error
}

func (f *fakeSensor) Init(context.Context) error { f.inits++; return nil }

func (f *fakeSensor) Configure(_ context.Context, mode ranging.Mode) error {
	f.configures++
	f.lastMode = mode
	return nil
}

func (f *fakeSensor) StartRanging(context.Context) error { f.starts++; return nil }
func (f *fakeSensor) StopRanging(context.Context) error  { return nil }

func (f *fakeSensor) DataReady(context.Context) (bool, error) { return true, nil }

func (f *fakeSensor) Read(context.Context) (model.RangeSample, error) {
	return model.RangeSample{}, nil
}

func (f *fakeSensor) PowerCycle(context.Context) error {
	f.powerCycles++
	return f.failCycle
}

func TestModes(t *testing.T) {
	Convey("Given the ranging mode presets", t, func() {
		Convey("Each mode maps to its budget and interval", func() {
			So(ranging.ModeShort.TimingBudgetMS(), ShouldEqual, 20)
			So(ranging.ModeShort.SampleInterval(), ShouldEqual, 20*time.Millisecond)
			So(ranging.ModeMedium.TimingBudgetMS(), ShouldEqual, 50)
			So(ranging.ModeMedium.SampleInterval(), ShouldEqual, 50*time.Millisecond)
			So(ranging.ModeLong.TimingBudgetMS(), ShouldEqual, 100)
			So(ranging.ModeLong.SampleInterval(), ShouldEqual, 100*time.Millisecond)
		})

		Convey("ParseMode accepts the known names", func() {
			for _, name := range []string{"short", "medium", "long"} {
				m, err := ranging.ParseMode(name)
				So(err, ShouldBeNil)
				So(m.String(), ShouldEqual, name)
			}

			_, err := ranging.ParseMode("ultra")
			So(errors.Is(err, ranging.ErrUnknownMode), ShouldBeTrue)
		})

		Convey("Timeout register values cover the supported budgets", func() {
			cases := map[int]uint16{
				20:   0x0007,
				33:   0x000B,
				50:   0x000E,
				100:  0x001D,
				200:  0x003C,
				500:  0x009A,
				1000: 0x0134,
			}
			for budget, want := range cases {
				got, ok := ranging.TimeoutRegisterValue(budget)
				So(ok, ShouldBeTrue)
				So(got, ShouldEqual, want)
			}

			_, ok := ranging.TimeoutRegisterValue(75)
			So(ok, ShouldBeFalse)
		})
	})
}

func TestMonitor(t *testing.T) {
	if err := logger.Init(); err != nil {
		t.Fatalf("logger init: %v", err)
	}

	Convey("Given a sensor monitor", t, func() {
		ctx := context.Background()
		sensor := &fakeSensor{}
		now := time.Now()

		m := ranging.NewMonitor(sensor, ranging.ModeShort,
			ranging.WithTimeout(40*time.Millisecond),
			ranging.WithMaxRecovers(2),
		)
		m.Observe(now)

		Convey("A fresh stream is not stale", func() {
			So(m.Stale(now.Add(30*time.Millisecond)), ShouldBeFalse)
			So(m.Check(ctx, now.Add(30*time.Millisecond)), ShouldBeNil)
			So(sensor.powerCycles, ShouldEqual, 0)
		})

		Convey("Silence past the threshold triggers a power cycle", func() {
			late := now.Add(100 * time.Millisecond)
			So(m.Stale(late), ShouldBeTrue)
			So(m.Check(ctx, late), ShouldBeNil)

			So(sensor.powerCycles, ShouldEqual, 1)
			So(sensor.inits, ShouldEqual, 1)
			So(sensor.configures, ShouldEqual, 1)
			So(sensor.lastMode, ShouldEqual, ranging.ModeShort)
			So(sensor.starts, ShouldEqual, 1)
		})

		Convey("A measurement clears the failure streak", func() {
			late := now.Add(100 * time.Millisecond)
			So(m.Check(ctx, late), ShouldBeNil)

			m.Observe(time.Now())
			So(m.Stale(time.Now()), ShouldBeFalse)
		})

		Convey("Recovery attempts are capped", func() {
			// Each check sees a time a full second past the previous
			// recovery; without an Observe in between the failure streak
			// accumulates.
			at := now
			for i := 0; i < 2; i++ {
				at = at.Add(time.Second)
				So(m.Check(ctx, at), ShouldBeNil)
			}

			err := m.Check(ctx, at.Add(time.Second))
			So(errors.Is(err, ranging.ErrStale), ShouldBeTrue)
			So(sensor.powerCycles, ShouldEqual, 2)
		})

		Convey("Recovery restarts the staleness window on the caller's clock", func() {
			base := time.Unix(1000, 0)
			m.Observe(base)

			late := base.Add(time.Second)
			So(m.Check(ctx, late), ShouldBeNil)
			So(sensor.powerCycles, ShouldEqual, 1)

			// The rebooted sensor gets exactly one timeout window measured
			// from the recovery instant, not from the wall clock.
			So(m.Stale(late.Add(40*time.Millisecond)), ShouldBeFalse)
			So(m.Stale(late.Add(41*time.Millisecond)), ShouldBeTrue)
		})

		Convey("A failing power cycle surfaces as a recovery error", func() {
			sensor.failCycle = errors.New("xshut stuck")
			m.Observe(now.Add(-time.Second))

			err := m.Check(ctx, now)
			So(errors.Is(err, ranging.ErrRecovery), ShouldBeTrue)
			So(sensor.inits, ShouldEqual, 0)
		})
	})
}
