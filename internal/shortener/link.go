// Package shortener allocates short identifiers for long URLs and resolves them back,
// keeping per-link access statistics.
package shortener

import (
	"context"
	"errors"
	"time"
)

// ShortLink is the only persisted entity.
type ShortLink struct {
	ShortID      string     `json:"shortId"`
	OriginalURL  string     `json:"originalUrl"`
	Clicks       int64      `json:"clicks"`
	LastAccessed *time.Time `json:"lastAccessed"`
	CreatedAt    time.Time  `json:"createdAt"`
}

var (
	ErrValidation          = errors.New("invalid url")
	ErrNotFound            = errors.New("url not found")
	ErrAllocationExhausted = errors.New("no free short id within retry limit")

	// ErrIDTaken and ErrURLTaken are returned by Store.Create when a unique key is violated.
	ErrIDTaken  = errors.New("short id already exists")
	ErrURLTaken = errors.New("original url already exists")
)

// Store is the record store both the allocator and the resolver work against.
type Store interface {

	//Create inserts a new record. Returns ErrIDTaken or ErrURLTaken on unique violation
	Create(ctx context.Context, link ShortLink) error

	//FindByShortID returns the record for a short id or ErrNotFound
	FindByShortID(ctx context.Context, shortID string) (ShortLink, error)

	//FindByURL returns a record with exactly this original URL or ErrNotFound
	FindByURL(ctx context.Context, originalURL string) (ShortLink, error)

	//RecordAccess atomically increments clicks and moves lastAccessed forward to at.
	//Returns ErrNotFound for unknown short id
	RecordAccess(ctx context.Context, shortID string, at time.Time) error
}

// Recorder receives access events. A Store is a Recorder; so is the async click pool.
type Recorder interface {
	RecordAccess(ctx context.Context, shortID string, at time.Time) error
}

// TargetCache caches shortID -> originalURL pairs. Both sides are immutable,
// so entries never need invalidation.
type TargetCache interface {
	Get(ctx context.Context, shortID string) (string, bool)
	Set(ctx context.Context, shortID, originalURL string)
}

// Pinger is implemented by stores that can report connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}
