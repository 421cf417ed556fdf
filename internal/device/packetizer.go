package device

import (
	"context"
	"fmt"
	"net"

	"github.com/jrklab/basket-counting/internal/domain/model"
	"github.com/jrklab/basket-counting/internal/wire"
	"github.com/jrklab/basket-counting/pkg/metrics"
)

// Sender transmits an encoded frame to the host.
type Sender interface {
	Send(ctx context.Context, data []byte) error
}

// Clock returns the device's monotonic timestamp in milliseconds. It is
// injectable so tests control time.
type Clock func() uint32

// Packetizer drains the sample rings into wire frames. Samples leave
// oldest-first; whatever exceeds the frame's slot capacity stays
// buffered for the next flush.
type Packetizer struct {
	inertial *Ring[model.InertialSample]
	ranging  *Ring[model.RangeSample]
	format   wire.Format
	sender   Sender
	clock    Clock
	seq      uint16
}

// PacketizerOption applies a configuration option to the Packetizer.
type PacketizerOption func(*Packetizer)

// WithClock sets the timestamp source for frame headers.
func WithClock(c Clock) PacketizerOption {
	return func(p *Packetizer) {
		if c != nil {
			p.clock = c
		}
	}
}

// NewPacketizer creates a packetizer over fresh rings of the given
// capacity.
func NewPacketizer(ringCapacity int, format wire.Format, sender Sender, opts ...PacketizerOption) (*Packetizer, error) {
	if ringCapacity <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrBadCapacity, ringCapacity)
	}

	p := &Packetizer{
		inertial: NewRing[model.InertialSample](ringCapacity),
		ranging:  NewRing[model.RangeSample](ringCapacity),
		format:   format,
		sender:   sender,
		clock:    defaultClock(),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p, nil
}

// PushInertial buffers an accelerometer/gyro sample. Full ring drops
// the sample and counts the overflow.
func (p *Packetizer) PushInertial(s model.InertialSample) bool {
	if !p.inertial.Push(s) {
		metrics.RecordRingOverflow()
		return false
	}
	return true
}

// PushRange buffers a distance sample. Full ring drops the sample and
// counts the overflow.
func (p *Packetizer) PushRange(s model.RangeSample) bool {
	if !p.ranging.Push(s) {
		metrics.RecordRingOverflow()
		return false
	}
	return true
}

// Backlog returns the buffered sample counts (inertial, ranging).
func (p *Packetizer) Backlog() (int, int) {
	return p.inertial.Len(), p.ranging.Len()
}

// Flush builds one frame from the buffered samples and sends it. Frames
// go out even when empty; the host uses the cadence as a liveness
// signal. The sequence counter advances only after a successful send.
func (p *Packetizer) Flush(ctx context.Context) error {
	frame := &wire.Frame{
		TimestampMS: p.clock(),
		Seq:         p.seq,
	}

	for len(frame.Inertial) < wire.MaxInertialSamples {
		s, ok := p.inertial.Pop()
		if !ok {
			break
		}
		frame.Inertial = append(frame.Inertial, s)
	}
	for len(frame.Ranging) < wire.MaxRangingSamples {
		s, ok := p.ranging.Pop()
		if !ok {
			break
		}
		frame.Ranging = append(frame.Ranging, s)
	}

	data, err := wire.Encode(frame, p.format)
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	if err := p.sender.Send(ctx, data); err != nil {
		return fmt.Errorf("%w: %w", ErrSend, err)
	}

	p.seq++
	metrics.RecordFrameSent()
	metrics.UpdateRangingBacklog(p.ranging.Len())
	return nil
}

// UDPSender sends frames to a fixed host address over UDP.
type UDPSender struct {
	conn *net.UDPConn
}

// NewUDPSender dials the host's frame ingestion address.
func NewUDPSender(addr string) (*UDPSender, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", addr, err)
	}
	conn, err := net.DialUDP("udp", nil, udpAddr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return &UDPSender{conn: conn}, nil
}

// Send writes one datagram.
func (s *UDPSender) Send(_ context.Context, data []byte) error {
	if _, err := s.conn.Write(data); err != nil {
		return fmt.Errorf("udp write: %w", err)
	}
	return nil
}

// Close releases the socket.
func (s *UDPSender) Close() error {
	if err := s.conn.Close(); err != nil {
		return fmt.Errorf("udp close: %w", err)
	}
	return nil
}
