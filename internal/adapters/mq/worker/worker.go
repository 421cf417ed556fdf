// Package worker runs the frame processor: the single task that owns
// merge and classifier state on the host.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/jrklab/basket-counting/internal/adapters/mq/queue"
	"github.com/jrklab/basket-counting/internal/domain/classify"
	"github.com/jrklab/basket-counting/internal/domain/merge"
	"github.com/jrklab/basket-counting/internal/domain/model"
	"github.com/jrklab/basket-counting/internal/wire"
	"github.com/jrklab/basket-counting/pkg/logger"
	"github.com/jrklab/basket-counting/pkg/metrics"
)

// Queue defines how the processor receives frames.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Datagram
}

// Recorder persists classified shot events.
type Recorder interface {
	Record(ctx context.Context, e model.ShotEvent) error
}

// EventSink receives classified events for external consumers
// (notification, rendering, capture). It must not block.
type EventSink func(e model.ShotEvent)

// Processor drains the ingestion queue, decodes frames, drives the
// merge and the classifier, and hands events to the recorder and sink.
//
// There is deliberately exactly one Processor per pipeline: merge and
// classifier state is single-writer, so no locking is needed here.
type Processor struct {
	queue    Queue
	format   wire.Format
	merger   *merge.Merger
	class    *classify.Classifier
	recorder Recorder
	sink     EventSink

	// Shutdown control
	shutdown chan struct{}
	done     chan struct{}
	resetCh  chan struct{}

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Processor.
type Option func(*Processor)

// WithEventSink attaches a sink for classified events.
func WithEventSink(sink EventSink) Option {
	return func(p *Processor) {
		if sink != nil {
			p.sink = sink
		}
	}
}

// WithLogger sets a custom logger for the processor.
func WithLogger(l logger.Logger) Option {
	return func(p *Processor) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewProcessor creates the frame processor.
func NewProcessor(q Queue, format wire.Format, class *classify.Classifier, recorder Recorder, opts ...Option) *Processor {
	p := &Processor{
		queue:    q,
		format:   format,
		merger:   merge.New(),
		class:    class,
		recorder: recorder,
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		resetCh:  make(chan struct{}, 1),
		logger:   logger.Get().Named("processor"),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Run starts the processor loop until ctx is cancelled or Shutdown is
// called.
func (p *Processor) Run(ctx context.Context) {
	defer close(p.done)

	frames := p.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.shutdown:
			return
		case <-p.resetCh:
			p.ResetSession()
		case d, ok := <-frames:
			if !ok {
				// Queue closed, processor should stop.
				return
			}
			if err := p.processFrame(ctx, d); err != nil {
				p.logger.Warn(ctx, "frame rejected", logger.Error(err))
			}
		}
	}
}

// Shutdown gracefully stops the processor.
func (p *Processor) Shutdown(ctx context.Context) error {
	close(p.shutdown)

	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		p.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// RequestReset asks the running processor to clear merge and classifier
// state between frames. Safe to call from other goroutines; coalesces
// if a reset is already pending.
func (p *Processor) RequestReset() {
	select {
	case p.resetCh <- struct{}{}:
	default:
	}
}

// ResetSession clears merge and classifier state for a new session.
// Callers must guarantee the processor is not concurrently processing;
// live resets go through RequestReset instead.
func (p *Processor) ResetSession() {
	p.merger.Reset()
	p.class.Reset()
	metrics.UpdateClassifierState(int(p.class.State()))
}

// processFrame decodes one datagram and runs its samples through the
// pipeline. Malformed frames are counted and skipped, never fatal.
func (p *Processor) processFrame(ctx context.Context, d queue.Datagram) error {
	start := time.Now()

	frame, err := wire.Decode(d, p.format)
	if err != nil {
		metrics.RecordFrameMalformed()
		return fmt.Errorf("decode: %w", err)
	}
	metrics.RecordDecodeLatency(float64(time.Since(start).Microseconds()) / 1000.0)
	metrics.RecordSamplesDecoded(model.SensorInertial.String(), len(frame.Inertial))
	metrics.RecordSamplesDecoded(model.SensorRanging.String(), len(frame.Ranging))

	p.merger.AddFrame(frame)

	for {
		s, ok := p.merger.Next()
		if !ok {
			break
		}
		event := p.class.Process(s)
		if event == nil {
			continue
		}

		metrics.RecordShotClassified(string(event.Classification))
		p.logger.Info(ctx, "shot classified",
			logger.String("classification", string(event.Classification)),
			logger.String("basket_type", string(event.BasketType)),
			logger.Float64("confidence", event.Confidence),
		)

		if p.recorder != nil {
			if err := p.recorder.Record(ctx, *event); err != nil {
				p.logger.Error(ctx, "failed to record shot",
					logger.String("id", event.ID),
					logger.Error(err),
				)
			}
		}
		if p.sink != nil {
			p.sink(*event)
		}
	}

	metrics.UpdateClassifierState(int(p.class.State()))
	return nil
}
