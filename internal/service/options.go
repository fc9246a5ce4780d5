package service

import (
	"log/slog"
	"time"

	"github.com/phrazzld/examprep-api/internal/events"
)

// Default retry policy for attempt creation and status changes.
const (
	DefaultMaxTries     = 3
	DefaultRetryBackoff = 10 * time.Millisecond
)

type options struct {
	now      func() time.Time
	maxTries int
	backoff  time.Duration
	emitter  events.EventEmitter
	logger   *slog.Logger
}

// Option configures a service.
type Option func(*options)

// WithClock replaces time.Now. Timestamps are always stored in UTC.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithRetryPolicy sets the total number of tries for writes that can lose a
// race, and the constant pause between tries.
func WithRetryPolicy(maxTries int, backoff time.Duration) Option {
	return func(o *options) {
		if maxTries > 0 {
			o.maxTries = maxTries
		}
		if backoff > 0 {
			o.backoff = backoff
		}
	}
}

// WithEmitter sets where domain events are published after commit.
func WithEmitter(emitter events.EventEmitter) Option {
	return func(o *options) {
		if emitter != nil {
			o.emitter = emitter
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func buildOptions(component string, opts []Option) options {
	o := options{
		now:      time.Now,
		maxTries: DefaultMaxTries,
		backoff:  DefaultRetryBackoff,
		emitter:  events.NopEmitter{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	o.logger = o.logger.With("component", component)
	return o
}

func (o options) clock() time.Time {
	return o.now().UTC()
}
