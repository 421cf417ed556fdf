// Package merge interleaves the two per-sensor sample streams into one
// globally time-ordered sequence.
//
// The two FIFOs persist across frames: frames may be lost in transit,
// so nothing here assumes contiguous delivery. Ordering within each
// FIFO follows from the packetizer emitting samples oldest-first.
package merge

import (
	"github.com/jrklab/basket-counting/internal/domain/model"
	"github.com/jrklab/basket-counting/internal/wire"
)

// compactThreshold bounds how far a FIFO head index may run ahead of
// the backing slice before it is re-sliced to release consumed memory.
const compactThreshold = 1024

// Merger holds the persistent per-sensor FIFOs.
type Merger struct {
	inertial []model.InertialSample
	ranging  []model.RangeSample
	inHead   int
	rgHead   int
}

// New creates an empty Merger.
func New() *Merger {
	return &Merger{}
}

// AddFrame appends a decoded frame's samples to the matching FIFOs.
func (m *Merger) AddFrame(f *wire.Frame) {
	m.inertial = append(m.inertial, f.Inertial...)
	m.ranging = append(m.ranging, f.Ranging...)
}

// AddInertial appends inertial samples directly (used by tests and replay).
func (m *Merger) AddInertial(samples ...model.InertialSample) {
	m.inertial = append(m.inertial, samples...)
}

// AddRanging appends ranging samples directly (used by tests and replay).
func (m *Merger) AddRanging(samples ...model.RangeSample) {
	m.ranging = append(m.ranging, samples...)
}

// Len returns the number of buffered, not yet merged samples.
func (m *Merger) Len() int {
	return (len(m.inertial) - m.inHead) + (len(m.ranging) - m.rgHead)
}

// Next pops the sample with the smaller timestamp across the two FIFOs.
// Equal timestamps yield the inertial sample first; the tie-break is
// fixed so classification is reproducible. The second return value is
// false when both FIFOs are empty.
func (m *Merger) Next() (model.Sample, bool) {
	hasIn := m.inHead < len(m.inertial)
	hasRg := m.rgHead < len(m.ranging)

	switch {
	case !hasIn && !hasRg:
		return model.Sample{}, false
	case hasIn && !hasRg:
		return m.popInertial(), true
	case !hasIn:
		return m.popRanging(), true
	}

	if m.inertial[m.inHead].TimestampMS <= m.ranging[m.rgHead].TimestampMS {
		return m.popInertial(), true
	}
	return m.popRanging(), true
}

func (m *Merger) popInertial() model.Sample {
	s := m.inertial[m.inHead]
	m.inHead++
	if m.inHead >= compactThreshold {
		m.inertial = append([]model.InertialSample(nil), m.inertial[m.inHead:]...)
		m.inHead = 0
	}
	return model.NewInertial(s)
}

func (m *Merger) popRanging() model.Sample {
	s := m.ranging[m.rgHead]
	m.rgHead++
	if m.rgHead >= compactThreshold {
		m.ranging = append([]model.RangeSample(nil), m.ranging[m.rgHead:]...)
		m.rgHead = 0
	}
	return model.NewRange(s)
}

// Reset discards all buffered samples.
func (m *Merger) Reset() {
	m.inertial = nil
	m.ranging = nil
	m.inHead = 0
	m.rgHead = 0
}
