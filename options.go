package mreasoner

import (
	"math/rand"
	"time"

	"go.uber.org/zap"
)

// Default construction values.
const (
	defaultQueryTimeout = time.Minute
	defaultGracePeriod  = 5 * time.Second
)

// settings holds resolved construction-time configuration for a Reasoner.
type settings struct {
	logger       *zap.Logger
	trace        *TraceBuffer
	queryTimeout time.Duration
	gracePeriod  time.Duration
	rng          *rand.Rand
}

// Option configures a Reasoner at construction time.
type Option func(*settings)

// WithLogger sets the structured log sink for the instance and its
// reader. Defaults to a no-op logger; there is no ambient global.
func WithLogger(logger *zap.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithTrace attaches a bounded ring buffer that records every sent
// command and received line for post-hoc inspection.
func WithTrace(trace *TraceBuffer) Option {
	return func(s *settings) {
		s.trace = trace
	}
}

// WithQueryTimeout bounds each blocking wait for an engine response.
// A wedged child then surfaces as ErrTimeout instead of hanging forever.
// Values <= 0 are ignored.
func WithQueryTimeout(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.queryTimeout = d
		}
	}
}

// WithGracePeriod sets how long Terminate waits for the child to honor
// the quit command before killing it. Values <= 0 are ignored.
func WithGracePeriod(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.gracePeriod = d
		}
	}
}

// WithRand sets the random source used for fit start points and random
// search. Defaults to a time-seeded source; inject a fixed seed for
// reproducible searches.
func WithRand(rng *rand.Rand) Option {
	return func(s *settings) {
		if rng != nil {
			s.rng = rng
		}
	}
}

func resolveOptions(opts ...Option) settings {
	s := settings{
		logger:       zap.NewNop(),
		queryTimeout: defaultQueryTimeout,
		gracePeriod:  defaultGracePeriod,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&s)
		}
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return s
}
