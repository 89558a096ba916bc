package app

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/okian/isles/internal/adapters/mq/queue"
	"github.com/okian/isles/internal/adapters/mq/worker"
	"github.com/okian/isles/internal/domain/model"
	"github.com/okian/isles/pkg/metrics"
)

// Session couples an Experience with its input queue and session loop.
type Session struct {
	exp    *Experience
	queue  *queue.InMemoryQueue
	loop   *worker.SessionLoop
	cancel context.CancelFunc

	closeOnce sync.Once
	onClose   func(uuid.UUID)
}

// ID returns the session id.
func (s *Session) ID() uuid.UUID { return s.exp.ID() }

// Enqueue hands an input to the session loop without blocking.
func (s *Session) Enqueue(ctx context.Context, in model.Input) error {
	if err := s.queue.Enqueue(ctx, in); err != nil {
		if errors.Is(err, queue.ErrClosed) {
			return ErrSessionClosed
		}
		return err
	}
	return nil
}

// Manifest lists the assets the client must report loaded.
func (s *Session) Manifest() []string { return s.exp.Manifest() }

// Snapshot returns the experience state.
func (s *Session) Snapshot() Snapshot { return s.exp.Snapshot() }

// Done is closed once the session loop has exited.
func (s *Session) Done() <-chan struct{} { return s.loop.Done() }

// Close stops accepting input, lets the loop drain and waits for it.
func (s *Session) Close(ctx context.Context) error {
	var err error
	s.closeOnce.Do(func() {
		_ = s.queue.Close()
		select {
		case <-s.loop.Done():
		case <-ctx.Done():
			err = s.loop.Shutdown(ctx)
		}
		s.cancel()
		metrics.RecordSessionClosed()
		if s.onClose != nil {
			s.onClose(s.ID())
		}
	})
	return err
}
