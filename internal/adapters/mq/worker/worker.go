// Package worker runs the per-session loop: the one goroutine allowed to
// mutate a session's experience. Inputs arrive from a queue and render ticks
// from a ticker on the same select.
package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/isles/internal/adapters/mq/queue"
	"github.com/okian/isles/internal/domain/model"
	"github.com/okian/isles/pkg/logger"
	"github.com/okian/isles/pkg/metrics"
)

// Default loop configuration constants.
const (
	defaultTickInterval = time.Second / 60
)

// Input abstracts what the loop reads off the queue.
type Input = model.Input

// Handler consumes inputs and ticks. Calls are never concurrent.
type Handler interface {
	HandleInput(ctx context.Context, in Input)
	Tick(ctx context.Context, dt time.Duration)
}

// Queue defines how the loop receives inputs.
type Queue interface {
	Dequeue() <-chan queue.Input
}

// SessionLoop drives one Handler.
type SessionLoop struct {
	queue   Queue
	handler Handler
	name    string
	tick    time.Duration

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

// NewSessionLoop creates a loop with configuration options.
func NewSessionLoop(q Queue, h Handler, opts ...Option) *SessionLoop {
	l := &SessionLoop{
		queue:    q,
		handler:  h,
		name:     "session",
		tick:     defaultTickInterval,
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Nop(),
	}

	for _, opt := range opts {
		opt(l)
	}
	l.logger = l.logger.Named(l.name)

	return l
}

// Run processes inputs and ticks until ctx is canceled, Shutdown is called
// or the queue is closed. Inputs still buffered at queue close are handled.
func (l *SessionLoop) Run(ctx context.Context) {
	defer close(l.done)

	var ticks <-chan time.Time
	if l.tick > 0 {
		ticker := time.NewTicker(l.tick)
		defer ticker.Stop()
		ticks = ticker.C
	}

	last := time.Now()
	inputs := l.queue.Dequeue()
	for {
		select {
		case <-ctx.Done():
			return
		case <-l.shutdown:
			return
		case in, ok := <-inputs:
			if !ok {
				l.logger.Debug(ctx, "queue closed")
				return
			}
			metrics.RecordQueueDequeue()
			l.handler.HandleInput(ctx, in)
		case now := <-ticks:
			l.handler.Tick(ctx, now.Sub(last))
			last = now
		}
	}
}

// Shutdown stops the loop and waits for it to exit.
func (l *SessionLoop) Shutdown(ctx context.Context) error {
	l.shutdownOnce.Do(func() { close(l.shutdown) })

	select {
	case <-l.done:
		return nil
	case <-ctx.Done():
		l.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Done is closed when Run returns.
func (l *SessionLoop) Done() <-chan struct{} { return l.done }
