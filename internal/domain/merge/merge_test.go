package merge_test

import (
	"testing"

	"github.com/jrklab/basket-counting/internal/domain/merge"
	"github.com/jrklab/basket-counting/internal/domain/model"
	"github.com/jrklab/basket-counting/internal/wire"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMergeOrdering(t *testing.T) {
	Convey("Given samples from both sensors", t, func() {
		m := merge.New()
		m.AddInertial(
			model.InertialSample{TimestampMS: 100},
			model.InertialSample{TimestampMS: 300},
			model.InertialSample{TimestampMS: 500},
		)
		m.AddRanging(
			model.RangeSample{TimestampMS: 200, DistanceMM: 300},
			model.RangeSample{TimestampMS: 400, DistanceMM: 310},
		)

		Convey("The merged sequence is non-decreasing in timestamp", func() {
			var prev uint32
			count := 0
			for {
				s, ok := m.Next()
				if !ok {
					break
				}
				So(s.TimestampMS(), ShouldBeGreaterThanOrEqualTo, prev)
				prev = s.TimestampMS()
				count++
			}
			So(count, ShouldEqual, 5)
			So(m.Len(), ShouldEqual, 0)
		})
	})
}

func TestMergeTieBreak(t *testing.T) {
	Convey("Given an inertial and a ranging sample with equal timestamps", t, func() {
		m := merge.New()
		m.AddRanging(model.RangeSample{TimestampMS: 1000, DistanceMM: 200})
		m.AddInertial(model.InertialSample{TimestampMS: 1000})

		Convey("The inertial sample is processed first", func() {
			first, ok := m.Next()
			So(ok, ShouldBeTrue)
			So(first.Class, ShouldEqual, model.SensorInertial)

			second, ok := m.Next()
			So(ok, ShouldBeTrue)
			So(second.Class, ShouldEqual, model.SensorRanging)
		})
	})
}

func TestMergePersistsAcrossFrames(t *testing.T) {
	Convey("Given frames arriving with a gap", t, func() {
		m := merge.New()

		// Frame 1 carries only inertial samples.
		m.AddFrame(&wire.Frame{
			TimestampMS: 1000,
			Inertial:    []model.InertialSample{{TimestampMS: 900}, {TimestampMS: 950}},
		})

		// Drain one sample, leave the rest buffered.
		s, ok := m.Next()
		So(ok, ShouldBeTrue)
		So(s.TimestampMS(), ShouldEqual, 900)

		// Frame 3 arrives; frame 2 was lost in transit.
		m.AddFrame(&wire.Frame{
			TimestampMS: 3000,
			Ranging:     []model.RangeSample{{TimestampMS: 2900, DistanceMM: 250}},
		})

		Convey("Buffered samples still drain in order", func() {
			s, ok = m.Next()
			So(ok, ShouldBeTrue)
			So(s.TimestampMS(), ShouldEqual, 950)

			s, ok = m.Next()
			So(ok, ShouldBeTrue)
			So(s.Class, ShouldEqual, model.SensorRanging)
			So(s.TimestampMS(), ShouldEqual, 2900)

			_, ok = m.Next()
			So(ok, ShouldBeFalse)
		})
	})
}

func TestMergeSingleStream(t *testing.T) {
	Convey("With only one FIFO populated the merge still drains", t, func() {
		m := merge.New()
		m.AddRanging(
			model.RangeSample{TimestampMS: 10},
			model.RangeSample{TimestampMS: 20},
		)

		s, ok := m.Next()
		So(ok, ShouldBeTrue)
		So(s.TimestampMS(), ShouldEqual, 10)

		s, ok = m.Next()
		So(ok, ShouldBeTrue)
		So(s.TimestampMS(), ShouldEqual, 20)

		_, ok = m.Next()
		So(ok, ShouldBeFalse)
	})
}

func TestMergeReset(t *testing.T) {
	Convey("Reset discards everything buffered", t, func() {
		m := merge.New()
		m.AddInertial(model.InertialSample{TimestampMS: 1})
		m.AddRanging(model.RangeSample{TimestampMS: 2})
		So(m.Len(), ShouldEqual, 2)

		m.Reset()
		So(m.Len(), ShouldEqual, 0)
		_, ok := m.Next()
		So(ok, ShouldBeFalse)
	})
}

func TestMergeCompaction(t *testing.T) {
	// Drive enough samples through one FIFO to cross the internal
	// compaction threshold and confirm nothing is lost or reordered.
	m := merge.New()
	const n = 3000
	for i := 0; i < n; i++ {
		m.AddInertial(model.InertialSample{TimestampMS: uint32(i)})
	}
	for i := 0; i < n; i++ {
		s, ok := m.Next()
		if !ok {
			t.Fatalf("ran out of samples at %d", i)
		}
		if s.TimestampMS() != uint32(i) {
			t.Fatalf("sample %d has timestamp %d", i, s.TimestampMS())
		}
	}
	if _, ok := m.Next(); ok {
		t.Fatal("expected empty merger")
	}
}
