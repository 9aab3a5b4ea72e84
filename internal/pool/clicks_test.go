package pool

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type countingRecorder struct {
	mu     sync.Mutex
	counts map[string]int
	block  chan struct{}
}

func (r *countingRecorder) RecordAccess(_ context.Context, shortID string, _ time.Time) error {
	if r.block != nil {
		<-r.block
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counts[shortID]++
	if shortID == "broken" {
		return errors.New("store unavailable")
	}
	return nil
}

func TestClickPoolDrainsOnClose(t *testing.T) {
	rec := &countingRecorder{counts: map[string]int{}}
	p := New(context.Background(), rec, 4, discard)

	for i := 0; i < 200; i++ {
		require.NoError(t, p.RecordAccess(context.Background(), "abc123", time.Now()))
	}
	require.NoError(t, p.RecordAccess(context.Background(), "broken", time.Now()))
	p.Close()

	assert.Equal(t, 200, rec.counts["abc123"])
	assert.Equal(t, 1, rec.counts["broken"])
	assert.ErrorIs(t, p.RecordAccess(context.Background(), "abc123", time.Now()), ErrClosed)

	// second Close is a no-op
	p.Close()
}

func TestClickPoolQueueFull(t *testing.T) {
	rec := &countingRecorder{counts: map[string]int{}, block: make(chan struct{})}
	p := New(context.Background(), rec, 1, discard)

	var full bool
	for i := 0; i < queueSize+2; i++ {
		if err := p.RecordAccess(context.Background(), "abc123", time.Now()); err != nil {
			require.ErrorIs(t, err, ErrQueueFull)
			full = true
			break
		}
	}
	assert.True(t, full)

	close(rec.block)
	p.Close()
}
