// Package udp implements the host-side receive task: it owns the
// datagram socket and feeds raw frames into the ingestion queue.
package udp

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/jrklab/basket-counting/internal/adapters/mq/queue"
	"github.com/jrklab/basket-counting/internal/wire"
	"github.com/jrklab/basket-counting/pkg/logger"
	"github.com/jrklab/basket-counting/pkg/metrics"
)

// Default listener configuration constants.
const (
	defaultReadTimeout = 1 * time.Second
	defaultRcvBuf      = 1 << 20
	maxDatagramSize    = 2048
)

// Enqueuer is the slice of the queue the listener needs.
type Enqueuer interface {
	Enqueue(ctx context.Context, d queue.Datagram) bool
}

// Listener receives frames over UDP. Reads are deadline-bounded so the
// loop can observe cancellation; enqueues never block. On a full queue
// the frame is dropped and counted.
type Listener struct {
	addr        string
	rcvBuf      int
	readTimeout time.Duration
	format      wire.Format
	queue       Enqueuer
	seq         *SeqTracker

	conn   *net.UDPConn
	logger logger.Logger
}

// Option applies a configuration option to the Listener.
type Option func(*Listener)

// WithReadTimeout sets the per-read deadline.
func WithReadTimeout(d time.Duration) Option {
	return func(l *Listener) {
		if d > 0 {
			l.readTimeout = d
		}
	}
}

// WithRcvBuf sets the socket receive buffer size in bytes.
func WithRcvBuf(n int) Option {
	return func(l *Listener) {
		if n > 0 {
			l.rcvBuf = n
		}
	}
}

// WithLogger sets a custom logger for the listener.
func WithLogger(lg logger.Logger) Option {
	return func(l *Listener) {
		if lg != nil {
			l.logger = lg
		}
	}
}

// NewListener creates a listener for the given bind address.
func NewListener(addr string, format wire.Format, q Enqueuer, opts ...Option) *Listener {
	l := &Listener{
		addr:        addr,
		rcvBuf:      defaultRcvBuf,
		readTimeout: defaultReadTimeout,
		format:      format,
		queue:       q,
		logger:      logger.Get().Named("udp"),
	}
	if format == wire.FormatSequenced {
		l.seq = NewSeqTracker()
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Start binds the socket and runs the receive loop until ctx is
// cancelled. It returns the bind error, if any; receive errors after a
// successful bind are logged and the loop continues.
func (l *Listener) Start(ctx context.Context) error {
	udpAddr, err := net.ResolveUDPAddr("udp", l.addr)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", l.addr, err)
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", l.addr, err)
	}
	if err := conn.SetReadBuffer(l.rcvBuf); err != nil {
		l.logger.Warn(ctx, "failed to set receive buffer",
			logger.Int("bytes", l.rcvBuf), logger.Error(err))
	}
	l.conn = conn
	defer conn.Close()

	l.logger.Info(ctx, "listening",
		logger.String("addr", conn.LocalAddr().String()),
		logger.String("format", l.format.String()),
	)

	buf := make([]byte, maxDatagramSize)
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if err := conn.SetReadDeadline(time.Now().Add(l.readTimeout)); err != nil {
			return fmt.Errorf("set read deadline: %w", err)
		}

		n, _, err := conn.ReadFromUDP(buf)
		if err != nil {
			var nerr net.Error
			if errors.As(err, &nerr) && nerr.Timeout() {
				// Expected when no data is available; lets us check ctx.
				continue
			}
			if ctx.Err() != nil {
				return nil
			}
			l.logger.Warn(ctx, "read failed", logger.Error(err))
			continue
		}

		metrics.RecordFrameReceived()

		// The buffer is reused; the queue owns its own copy.
		d := make(queue.Datagram, n)
		copy(d, buf[:n])

		l.observeSequence(d)

		if !l.queue.Enqueue(ctx, d) {
			metrics.RecordFrameDropped()
		}
	}
}

// observeSequence feeds the sequence tracker on sequenced deployments.
// Loss is surfaced as metrics only; duplicates still flow downstream
// because the classifier's blackout makes replays harmless.
func (l *Listener) observeSequence(d queue.Datagram) {
	if l.seq == nil || len(d) < 6 {
		return
	}
	dup, lost := l.seq.Observe(binary.BigEndian.Uint16(d[4:6]))
	if dup {
		metrics.RecordFrameDuplicate()
	}
	if lost > 0 {
		metrics.RecordFramesLost(lost)
	}
}

// LocalAddr returns the bound address, or nil before Start.
func (l *Listener) LocalAddr() net.Addr {
	if l.conn == nil {
		return nil
	}
	return l.conn.LocalAddr()
}
