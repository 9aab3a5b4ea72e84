// Package pool records link accesses asynchronously with a fixed set of workers.
package pool

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/antonevtu/shortlink/internal/shortener"
)

const queueSize = 1000

var (
	ErrQueueFull = errors.New("click queue is full")
	ErrClosed    = errors.New("click pool is closed")
)

type AccessItem struct {
	ShortID string
	At      time.Time
}

// ClickPoolT implements shortener.Recorder by queueing events for the workers.
type ClickPoolT struct {
	input  chan AccessItem
	g      *errgroup.Group
	ctx    context.Context
	logger *slog.Logger

	mu     sync.RWMutex
	closed bool
}

func New(ctx context.Context, repo shortener.Recorder, numWorkers int, logger *slog.Logger) *ClickPoolT {
	if numWorkers < 1 {
		numWorkers = 1
	}
	g, ctx := errgroup.WithContext(ctx)
	pool := &ClickPoolT{
		input:  make(chan AccessItem, queueSize),
		g:      g,
		ctx:    ctx,
		logger: logger,
	}
	for i := 0; i < numWorkers; i++ {
		pool.g.Go(func() error {
			pool.work(repo)
			return nil
		})
	}
	return pool
}

func (p *ClickPoolT) work(repo shortener.Recorder) {
	for {
		select {
		case item, ok := <-p.input:
			if !ok {
				return
			}
			if err := repo.RecordAccess(p.ctx, item.ShortID, item.At); err != nil {
				p.logger.Warn("async record access failed", "short_id", item.ShortID, "error", err)
			}
		case <-p.ctx.Done():
			return
		}
	}
}

// RecordAccess never blocks: a full queue drops the event.
func (p *ClickPoolT) RecordAccess(_ context.Context, shortID string, at time.Time) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}
	select {
	case p.input <- AccessItem{ShortID: shortID, At: at}:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops accepting events and waits until the queue is drained.
func (p *ClickPoolT) Close() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.input)
	}
	p.mu.Unlock()
	_ = p.g.Wait()
	p.logger.Info("click pool has closed")
}
