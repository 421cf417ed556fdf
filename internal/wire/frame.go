// Package wire implements the fixed-size datagram format carrying
// batched sensor samples from the device to the host.
//
// Layout (big-endian, constant total length):
//
//	u32  frame_timestamp_ms
//	[u16 sequence_id]                 sequenced format only
//	u8   inertial_count               (0..20)
//	20 x { u16 delta_ms, i16 ax, i16 ay, i16 az, i16 gx, i16 gy, i16 gz }
//	u8   ranging_count                (0..8)
//	8  x { u16 delta_ms, u16 distance_mm, u16 signal_rate }
//
// Per-sample deltas are frame time minus sample time, saturated to
// [0, 65535]. Unused inertial slots are zero-filled; unused ranging
// slots carry the SlotUnused distance sentinel. The format in use is
// fixed per deployment, never negotiated on the wire.
package wire

import (
	"encoding/binary"
	"fmt"

	"github.com/jrklab/basket-counting/internal/domain/model"
)

// Slot capacities per frame.
const (
	MaxInertialSamples = 20
	MaxRangingSamples  = 8

	timestampSize    = 4
	sequenceSize     = 2
	countSize        = 1
	inertialSlotSize = 14 // u16 delta + 6 x i16
	rangingSlotSize  = 6  // u16 delta + u16 distance + u16 signal rate

	// MaxDeltaMS is the widest representable sample age within a frame.
	MaxDeltaMS = 0xFFFF
)

// Format selects the wire layout for a deployment.
type Format int

const (
	// FormatBase is the original layout with no loss detection.
	FormatBase Format = iota
	// FormatSequenced inserts a u16 sequence id after the timestamp so
	// the receiver can observe duplicates and gaps.
	FormatSequenced
)

// String returns the configuration name of the format.
func (f Format) String() string {
	if f == FormatSequenced {
		return "sequenced"
	}
	return "base"
}

// ParseFormat maps a configuration string onto a Format.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "", "base":
		return FormatBase, nil
	case "sequenced":
		return FormatSequenced, nil
	default:
		return FormatBase, fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// EncodedSize returns the constant byte length of a frame in the given
// format.
func EncodedSize(f Format) int {
	n := timestampSize +
		countSize + MaxInertialSamples*inertialSlotSize +
		countSize + MaxRangingSamples*rangingSlotSize
	if f == FormatSequenced {
		n += sequenceSize
	}
	return n
}

// Frame is one decoded (or to-be-encoded) batch of samples.
type Frame struct {
	TimestampMS uint32
	Seq         uint16 // meaningful in FormatSequenced only
	Inertial    []model.InertialSample
	Ranging     []model.RangeSample
}

// SaturatedDelta computes frameTS - sampleTS clamped to [0, MaxDeltaMS].
// A sample stamped after the frame time clamps to zero; an older sample
// saturates rather than wrapping.
func SaturatedDelta(frameTS, sampleTS uint32) uint16 {
	if sampleTS >= frameTS {
		return 0
	}
	d := frameTS - sampleTS
	if d > MaxDeltaMS {
		return MaxDeltaMS
	}
	return uint16(d)
}

// Encode serializes the frame into a fixed-length datagram.
func Encode(f *Frame, format Format) ([]byte, error) {
	if len(f.Inertial) > MaxInertialSamples {
		return nil, fmt.Errorf("%w: %d inertial samples", ErrTooManySamples, len(f.Inertial))
	}
	if len(f.Ranging) > MaxRangingSamples {
		return nil, fmt.Errorf("%w: %d ranging samples", ErrTooManySamples, len(f.Ranging))
	}

	buf := make([]byte, EncodedSize(format))
	off := 0

	binary.BigEndian.PutUint32(buf[off:], f.TimestampMS)
	off += timestampSize
	if format == FormatSequenced {
		binary.BigEndian.PutUint16(buf[off:], f.Seq)
		off += sequenceSize
	}

	buf[off] = byte(len(f.Inertial))
	off += countSize
	for _, s := range f.Inertial {
		binary.BigEndian.PutUint16(buf[off:], SaturatedDelta(f.TimestampMS, s.TimestampMS))
		binary.BigEndian.PutUint16(buf[off+2:], uint16(s.Ax))
		binary.BigEndian.PutUint16(buf[off+4:], uint16(s.Ay))
		binary.BigEndian.PutUint16(buf[off+6:], uint16(s.Az))
		binary.BigEndian.PutUint16(buf[off+8:], uint16(s.Gx))
		binary.BigEndian.PutUint16(buf[off+10:], uint16(s.Gy))
		binary.BigEndian.PutUint16(buf[off+12:], uint16(s.Gz))
		off += inertialSlotSize
	}
	// Unused inertial slots stay zero-filled.
	off += (MaxInertialSamples - len(f.Inertial)) * inertialSlotSize

	buf[off] = byte(len(f.Ranging))
	off += countSize
	for _, s := range f.Ranging {
		binary.BigEndian.PutUint16(buf[off:], SaturatedDelta(f.TimestampMS, s.TimestampMS))
		binary.BigEndian.PutUint16(buf[off+2:], s.DistanceMM)
		binary.BigEndian.PutUint16(buf[off+4:], s.SignalRate)
		off += rangingSlotSize
	}
	// Pad unused ranging slots so they can never read as measurements.
	for i := len(f.Ranging); i < MaxRangingSamples; i++ {
		binary.BigEndian.PutUint16(buf[off+2:], model.SlotUnused)
		off += rangingSlotSize
	}

	return buf, nil
}

// Decode validates and deserializes a datagram. It rejects input of the
// wrong length or with slot counts above capacity; it never panics on
// malformed bytes. Padding slots are dropped; no-target readings are
// kept as valid samples. Absolute timestamps are reconstructed as
// frame time minus delta, clamped at zero.
func Decode(data []byte, format Format) (*Frame, error) {
	want := EncodedSize(format)
	if len(data) != want {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrBadLength, len(data), want)
	}

	f := &Frame{}
	off := 0

	f.TimestampMS = binary.BigEndian.Uint32(data[off:])
	off += timestampSize
	if format == FormatSequenced {
		f.Seq = binary.BigEndian.Uint16(data[off:])
		off += sequenceSize
	}

	inertialCount := int(data[off])
	off += countSize
	if inertialCount > MaxInertialSamples {
		return nil, fmt.Errorf("%w: inertial count %d", ErrBadCount, inertialCount)
	}
	f.Inertial = make([]model.InertialSample, 0, inertialCount)
	for i := 0; i < inertialCount; i++ {
		slot := data[off+i*inertialSlotSize:]
		delta := binary.BigEndian.Uint16(slot)
		f.Inertial = append(f.Inertial, model.InertialSample{
			TimestampMS: reconstruct(f.TimestampMS, delta),
			Ax:          int16(binary.BigEndian.Uint16(slot[2:])),
			Ay:          int16(binary.BigEndian.Uint16(slot[4:])),
			Az:          int16(binary.BigEndian.Uint16(slot[6:])),
			Gx:          int16(binary.BigEndian.Uint16(slot[8:])),
			Gy:          int16(binary.BigEndian.Uint16(slot[10:])),
			Gz:          int16(binary.BigEndian.Uint16(slot[12:])),
		})
	}
	off += MaxInertialSamples * inertialSlotSize

	rangingCount := int(data[off])
	off += countSize
	if rangingCount > MaxRangingSamples {
		return nil, fmt.Errorf("%w: ranging count %d", ErrBadCount, rangingCount)
	}
	f.Ranging = make([]model.RangeSample, 0, rangingCount)
	for i := 0; i < rangingCount; i++ {
		slot := data[off+i*rangingSlotSize:]
		distance := binary.BigEndian.Uint16(slot[2:])
		if distance == model.SlotUnused {
			continue
		}
		delta := binary.BigEndian.Uint16(slot)
		f.Ranging = append(f.Ranging, model.RangeSample{
			TimestampMS: reconstruct(f.TimestampMS, delta),
			DistanceMM:  distance,
			SignalRate:  binary.BigEndian.Uint16(slot[4:]),
		})
	}

	return f, nil
}

// reconstruct recovers an absolute sample timestamp from the frame time
// and a saturated delta.
func reconstruct(frameTS uint32, delta uint16) uint32 {
	d := uint32(delta)
	if d > frameTS {
		return 0
	}
	return frameTS - d
}
