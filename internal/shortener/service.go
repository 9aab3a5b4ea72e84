package shortener

import (
	"context"
	"io"
	"log/slog"
	"time"
)

const DefaultMaxAttempts = 10

// Service implements allocation and resolution over a single Store.
type Service struct {
	store       Store
	recorder    Recorder
	cache       TargetCache
	newID       IDGenerator
	maxAttempts int
	dedup       bool
	now         func() time.Time
	logger      *slog.Logger
}

type Option func(*Service)

// WithDedup turns the reuse of ids for identical long URLs on or off.
func WithDedup(on bool) Option {
	return func(s *Service) { s.dedup = on }
}

func WithMaxAttempts(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

func WithIDGenerator(gen IDGenerator) Option {
	return func(s *Service) { s.newID = gen }
}

// WithRecorder sends access events somewhere other than the store, e.g. an async pool.
func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

func WithCache(c TargetCache) Option {
	return func(s *Service) { s.cache = c }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func New(store Store, opts ...Option) *Service {
	s := &Service{
		store:       store,
		recorder:    store,
		maxAttempts: DefaultMaxAttempts,
		dedup:       true,
		now:         func() time.Time { return time.Now().UTC() },
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	s.newID, _ = NanoID(DefaultIDLength)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ping reports store connectivity when the store supports it.
func (s *Service) Ping(ctx context.Context) error {
	p, ok := s.store.(Pinger)
	if !ok {
		return nil
	}
	return p.Ping(ctx)
}
