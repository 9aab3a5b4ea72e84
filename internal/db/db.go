// Package db is the Postgres implementation of shortener.Store.
package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/antonevtu/shortlink/internal/shortener"
)

const (
	shortIDConstraint     = "urls_short_id_key"
	originalURLConstraint = "urls_original_url_key"
)

type T struct {
	*pgxpool.Pool
}

// New connects to Postgres, applies migrations and sets the original_url uniqueness
// to match uniqueURL. The returned handle is meant to live for the whole process.
func New(ctx context.Context, url string, uniqueURL bool, logger *slog.Logger) (T, error) {
	var pool T
	if err := Migrate(url, logger); err != nil {
		return pool, err
	}

	var err error
	pool.Pool, err = pgxpool.Connect(ctx, url)
	if err != nil {
		return pool, fmt.Errorf("connect postgres: %w", err)
	}

	// toggled on every start so DEDUP can be switched without a migration
	if err = pool.setURLUniqueness(ctx, uniqueURL, logger); err != nil {
		pool.Close()
		return pool, fmt.Errorf("set original_url uniqueness: %w", err)
	}

	return pool, nil
}

// setURLUniqueness creates or drops the unique hash index on original_url. If rows written
// with dedup off already share a URL the index cannot be built; the store then keeps running
// without it and the allocator's lookup is the only dedup guard.
func (d *T) setURLUniqueness(ctx context.Context, uniqueURL bool, logger *slog.Logger) error {
	if !uniqueURL {
		_, err := d.Pool.Exec(ctx, "drop index if exists "+originalURLConstraint)
		return err
	}

	_, err := d.Pool.Exec(ctx, "create unique index if not exists "+originalURLConstraint+" on urls (md5(original_url))")
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		// a failed build can leave an invalid index behind
		if _, dropErr := d.Pool.Exec(ctx, "drop index if exists "+originalURLConstraint); dropErr != nil {
			return dropErr
		}
		var duplicates int64
		_ = d.Pool.QueryRow(ctx,
			"select count(*) from (select 1 from urls group by md5(original_url), original_url having count(*) > 1) dup").Scan(&duplicates)
		logger.Warn("duplicate original urls, unique index not created", "urls", duplicates)
		return nil
	}
	return err
}

func (d *T) Create(ctx context.Context, link shortener.ShortLink) error {
	sql := "insert into urls (short_id, original_url, clicks, last_accessed, created_at) values ($1, $2, $3, $4, $5)"
	_, err := d.Pool.Exec(ctx, sql, link.ShortID, link.OriginalURL, link.Clicks, link.LastAccessed, link.CreatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		switch pgErr.ConstraintName {
		case shortIDConstraint:
			return shortener.ErrIDTaken
		case originalURLConstraint:
			return shortener.ErrURLTaken
		}
	}
	return err
}

func (d *T) FindByShortID(ctx context.Context, shortID string) (shortener.ShortLink, error) {
	row := d.Pool.QueryRow(ctx,
		"select short_id, original_url, clicks, last_accessed, created_at from urls where short_id = $1", shortID)
	return scanLink(row)
}

func (d *T) FindByURL(ctx context.Context, originalURL string) (shortener.ShortLink, error) {
	row := d.Pool.QueryRow(ctx,
		"select short_id, original_url, clicks, last_accessed, created_at from urls "+
			"where md5(original_url) = md5($1) and original_url = $1 order by id limit 1", originalURL)
	return scanLink(row)
}

// RecordAccess is a single statement so concurrent resolutions never lose an increment.
func (d *T) RecordAccess(ctx context.Context, shortID string, at time.Time) error {
	sql := "update urls set clicks = clicks + 1, last_accessed = greatest(coalesce(last_accessed, $2), $2) where short_id = $1"
	tag, err := d.Pool.Exec(ctx, sql, shortID, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shortener.ErrNotFound
	}
	return nil
}

func scanLink(row pgx.Row) (shortener.ShortLink, error) {
	var l shortener.ShortLink
	err := row.Scan(&l.ShortID, &l.OriginalURL, &l.Clicks, &l.LastAccessed, &l.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return shortener.ShortLink{}, shortener.ErrNotFound
	}
	return l, err
}
