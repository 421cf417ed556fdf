// Package service provides the core pipeline service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"net"
	"sync"

	framequeue "github.com/jrklab/basket-counting/internal/adapters/mq/queue"
	"github.com/jrklab/basket-counting/internal/adapters/mq/worker"
	"github.com/jrklab/basket-counting/internal/adapters/repository"
	"github.com/jrklab/basket-counting/internal/adapters/udp"
	"github.com/jrklab/basket-counting/internal/domain/classify"
	"github.com/jrklab/basket-counting/internal/domain/model"
	"github.com/jrklab/basket-counting/internal/domain/types"
	"github.com/jrklab/basket-counting/internal/wire"
	"github.com/jrklab/basket-counting/pkg/logger"
)

// Service owns the host pipeline: UDP listener, frame queue, processor,
// and the session store backing the HTTP API.
type Service struct {
	mu sync.RWMutex

	// Core components
	store     repository.Store
	queue     *framequeue.InMemoryQueue
	processor *worker.Processor
	listener  *udp.Listener

	// Configuration
	listenAddr string
	queueSize  int
	format     wire.Format
	params     classify.Params

	// State
	started bool
	cancel  context.CancelFunc
	loops   sync.WaitGroup

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithListenAddr sets the UDP bind address frames arrive on.
func WithListenAddr(addr string) Option {
	return func(s *Service) {
		if addr != "" {
			s.listenAddr = addr
		}
	}
}

// WithQueueSize sets the maximum size of the frame queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithWireFormat selects the frame layout decoded from the wire.
func WithWireFormat(f wire.Format) Option {
	return func(s *Service) {
		s.format = f
	}
}

// WithClassifierParams sets the shot classifier thresholds.
func WithClassifierParams(p classify.Params) Option {
	return func(s *Service) {
		s.params = p
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		listenAddr: ":5005",
		queueSize:  1024,
		format:     wire.FormatBase,
		params:     classify.DefaultParams(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the pipeline components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting shot counting service...")

	class, err := classify.New(s.params)
	if err != nil {
		return err
	}

	s.store = repository.NewSessionStore()
	s.queue = framequeue.NewInMemoryQueue(
		framequeue.WithCapacity(s.queueSize),
	)
	s.processor = worker.NewProcessor(s.queue, s.format, class, s.store)
	s.listener = udp.NewListener(s.listenAddr, s.format, s.queue)

	runCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.loops.Add(2)
	go func() {
		defer s.loops.Done()
		s.processor.Run(runCtx)
	}()
	go func() {
		defer s.loops.Done()
		if err := s.listener.Start(runCtx); err != nil {
			s.logger.Error(runCtx, "listener failed", logger.Error(err))
		}
	}()

	s.started = true
	s.logger.Info(ctx, "shot counting service started",
		logger.String("listenAddr", s.listenAddr),
		logger.String("wireFormat", s.format.String()),
		logger.Int("queueSize", s.queueSize),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping shot counting service...")

	if s.cancel != nil {
		s.cancel()
	}
	if s.queue != nil {
		_ = s.queue.Close()
	}
	s.loops.Wait()

	s.started = false
	s.logger.Info(context.Background(), "shot counting service stopped")
}

// UDPAddr returns the bound UDP address, or nil before the listener
// has bound. Useful when starting with port 0.
func (s *Service) UDPAddr() net.Addr {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.LocalAddr()
}

// SessionStats returns make/miss counts for the current session.
func (s *Service) SessionStats(ctx context.Context) (types.Stats, error) {
	s.mu.RLock()
	store := s.store
	s.mu.RUnlock()
	if store == nil {
		return types.Stats{}, nil
	}

	st, err := store.Stats(ctx)
	if err != nil {
		return types.Stats{}, err
	}
	return types.Stats{
		Session:    st.SessionID,
		Makes:      st.Makes,
		Misses:     st.Misses,
		Total:      st.Total,
		Percentage: st.Percentage,
	}, nil
}

// Shots returns the session's classified shots in arrival order.
func (s *Service) Shots(ctx context.Context) ([]types.Shot, error) {
	s.mu.RLock()
	store := s.store
	s.mu.RUnlock()
	if store == nil {
		return nil, nil
	}

	events, err := store.List(ctx)
	if err != nil {
		return nil, err
	}

	shots := make([]types.Shot, len(events))
	for i, e := range events {
		shots[i] = toShot(e)
	}
	return shots, nil
}

// ResetSession discards the shot history and clears pipeline state.
func (s *Service) ResetSession(ctx context.Context) (string, error) {
	s.mu.RLock()
	store, proc := s.store, s.processor
	s.mu.RUnlock()
	if store == nil {
		return "", nil
	}

	sessionID, err := store.Reset(ctx)
	if err != nil {
		return "", err
	}
	if proc != nil {
		proc.RequestReset()
	}

	s.logger.Info(ctx, "session reset", logger.String("session", sessionID))
	return sessionID, nil
}

// Count returns the number of shots recorded in the session.
func (s *Service) Count(ctx context.Context) int {
	s.mu.RLock()
	store := s.store
	s.mu.RUnlock()
	if store == nil {
		return 0
	}
	return store.Count(ctx)
}

func toShot(e model.ShotEvent) types.Shot {
	return types.Shot{
		ID:             e.ID,
		ImpactTime:     e.ImpactTime,
		BasketTime:     e.BasketTime,
		Classification: string(e.Classification),
		BasketType:     string(e.BasketType),
		Confidence:     e.Confidence,
	}
}
