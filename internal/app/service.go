package app

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/isles/internal/adapters/mq/queue"
	"github.com/okian/isles/internal/adapters/mq/worker"
	"github.com/okian/isles/internal/domain/effects"
	"github.com/okian/isles/internal/domain/model"
	"github.com/okian/isles/pkg/logger"
	"github.com/okian/isles/pkg/metrics"
)

const (
	defaultQueueSize    = 1024
	defaultTickInterval = time.Second / 60
	sessionStopTimeout  = 5 * time.Second
)

// Service owns the shared World and every open session.
type Service struct {
	mu sync.RWMutex

	world        *World
	queueSize    int
	tickInterval time.Duration
	expOpts      []ExperienceOption

	sessions map[uuid.UUID]*Session
	opened   int64

	started bool
	logger  logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorld sets the scene shared by all sessions.
func WithWorld(w *World) Option {
	return func(s *Service) { s.world = w }
}

// WithQueueSize sets the per-session input queue capacity.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithTickInterval sets the camera tick period of each session loop.
func WithTickInterval(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.tickInterval = d
		}
	}
}

// WithExperienceOptions applies opts to every new Experience.
func WithExperienceOptions(opts ...ExperienceOption) Option {
	return func(s *Service) { s.expOpts = append(s.expOpts, opts...) }
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		queueSize:    defaultQueueSize,
		tickInterval: defaultTickInterval,
		sessions:     make(map[uuid.UUID]*Session),
		logger:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start validates configuration; sessions can be opened afterwards.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.world == nil {
		return ErrNoWorld
	}
	s.started = true
	s.logger.Info(ctx, "island service started",
		logger.Int("segments", s.world.Timeline.Len()),
		logger.Int("assets", s.world.Registry.Len()),
		logger.Int("queueSize", s.queueSize),
		logger.Duration("tick", s.tickInterval),
	)
	return nil
}

// Stop closes every open session.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	open := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		open = append(open, sess)
	}
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), sessionStopTimeout)
	defer cancel()
	for _, sess := range open {
		if err := sess.Close(ctx); err != nil {
			s.logger.Warn(ctx, "session close timed out", logger.String("session", sess.ID().String()))
		}
	}
	s.logger.Info(ctx, "island service stopped", logger.Int("sessions", len(open)))
}

// Open creates a session whose effects go to collab and starts its loop.
// The loop runs until the session is closed or ctx is canceled.
func (s *Service) Open(ctx context.Context, collab effects.Collaborators, opts ...ExperienceOption) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil, ErrNotStarted
	}

	all := append(append([]ExperienceOption{WithExperienceLogger(s.logger)}, s.expOpts...), opts...)
	exp := NewExperience(s.world, collab, all...)
	exp.Start(ctx)

	q := queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	loop := worker.NewSessionLoop(q, exp,
		worker.WithName("session"),
		worker.WithLogger(s.logger),
		worker.WithTickInterval(s.tickInterval),
	)
	loopCtx, cancel := context.WithCancel(ctx)
	sess := &Session{exp: exp, queue: q, loop: loop, cancel: cancel, onClose: s.forget}
	s.sessions[exp.ID()] = sess
	s.opened++
	go loop.Run(loopCtx)

	metrics.RecordSessionOpened()
	s.logger.Info(ctx, "session opened", logger.String("session", exp.ID().String()))
	return sess, nil
}

func (s *Service) forget(id uuid.UUID) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// Session looks up an open session.
func (s *Service) Session(id uuid.UUID) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return sess, nil
}

// Sessions returns snapshots of every open session ordered by id.
func (s *Service) Sessions() []Snapshot {
	s.mu.RLock()
	out := make([]Snapshot, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess.Snapshot())
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out
}

// Segments returns the shared timeline.
func (s *Service) Segments() []model.Segment {
	if s.world == nil {
		return nil
	}
	return s.world.Timeline.Segments()
}

// World returns the shared scene.
func (s *Service) World() *World { return s.world }

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":        s.started,
		"queueSize":      s.queueSize,
		"tickIntervalMs": s.tickInterval.Milliseconds(),
		"sessionsOpen":   len(s.sessions),
		"sessionsTotal":  s.opened,
	}
	if s.world != nil {
		stats["segments"] = s.world.Timeline.Len()
		stats["assets"] = s.world.Registry.Len()
	}
	return stats
}

// SessionSnapshot returns the state of one open session.
func (s *Service) SessionSnapshot(id uuid.UUID) (Snapshot, error) {
	sess, err := s.Session(id)
	if err != nil {
		return Snapshot{}, err
	}
	return sess.Snapshot(), nil
}
