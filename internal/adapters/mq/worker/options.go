package worker

import (
	"time"

	"github.com/okian/isles/pkg/logger"
)

// Option applies a configuration option to the SessionLoop.
type Option func(*SessionLoop)

// WithName sets the loop name for identification and logging.
func WithName(name string) Option {
	return func(l *SessionLoop) {
		if name != "" {
			l.name = name
		}
	}
}

// WithLogger sets a custom logger for the loop.
func WithLogger(log logger.Logger) Option {
	return func(l *SessionLoop) {
		if log != nil {
			l.logger = log
		}
	}
}

// WithTickInterval sets the render tick period. Zero disables ticks.
func WithTickInterval(d time.Duration) Option {
	return func(l *SessionLoop) {
		if d >= 0 {
			l.tick = d
		}
	}
}
