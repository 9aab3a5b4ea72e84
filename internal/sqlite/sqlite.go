// Package sqlite implements shortener.Store on SQLite (modernc, file DSNs) or
// libSQL/Turso (libsql:// and wss:// DSNs).
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/antonevtu/shortlink/internal/shortener"
)

const schema = `
CREATE TABLE IF NOT EXISTS urls (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	short_id      TEXT NOT NULL UNIQUE,
	original_url  TEXT NOT NULL,
	clicks        INTEGER NOT NULL DEFAULT 0 CHECK (clicks >= 0),
	last_accessed DATETIME,
	created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS urls_original_url_idx ON urls(original_url);
`

type Repository struct {
	db *sql.DB
}

// New opens dsn, creates the schema and sets the original_url uniqueness.
func New(ctx context.Context, dsn string, uniqueURL bool, logger *slog.Logger) (*Repository, error) {
	driverName := "sqlite"
	if strings.HasPrefix(dsn, "libsql://") || strings.HasPrefix(dsn, "wss://") {
		driverName = "libsql"
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driverName, err)
	}
	if driverName == "sqlite" {
		// one writer at a time avoids SQLITE_BUSY on the shared file
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", driverName, err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	repo := &Repository{db: db}
	if err := repo.setURLUniqueness(ctx, uniqueURL, logger); err != nil {
		db.Close()
		return nil, fmt.Errorf("set original_url uniqueness: %w", err)
	}

	return repo, nil
}

// setURLUniqueness creates or drops the unique index on original_url. Rows written with
// dedup off may already share a URL; then the index is left out and a warning is logged.
func (r *Repository) setURLUniqueness(ctx context.Context, uniqueURL bool, logger *slog.Logger) error {
	if !uniqueURL {
		_, err := r.db.ExecContext(ctx, "DROP INDEX IF EXISTS urls_original_url_key")
		return err
	}

	_, err := r.db.ExecContext(ctx, "CREATE UNIQUE INDEX IF NOT EXISTS urls_original_url_key ON urls(original_url)")
	if err != nil && isUniqueFailure(err) {
		var duplicates int64
		_ = r.db.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM (SELECT 1 FROM urls GROUP BY original_url HAVING COUNT(*) > 1)").Scan(&duplicates)
		logger.Warn("duplicate original urls, unique index not created", "urls", duplicates)
		return nil
	}
	return err
}

func (r *Repository) Create(ctx context.Context, link shortener.ShortLink) error {
	query := `INSERT INTO urls (short_id, original_url, clicks, last_accessed, created_at) VALUES (?, ?, ?, ?, ?)`

	var lastAccessed sql.NullTime
	if link.LastAccessed != nil {
		lastAccessed = sql.NullTime{Time: link.LastAccessed.UTC(), Valid: true}
	}
	_, err := r.db.ExecContext(ctx, query, link.ShortID, link.OriginalURL, link.Clicks, lastAccessed, link.CreatedAt.UTC())
	if err != nil {
		return translateUnique(err)
	}
	return nil
}

func (r *Repository) FindByShortID(ctx context.Context, shortID string) (shortener.ShortLink, error) {
	query := `SELECT short_id, original_url, clicks, last_accessed, created_at FROM urls WHERE short_id = ?`
	return scanLink(r.db.QueryRowContext(ctx, query, shortID))
}

func (r *Repository) FindByURL(ctx context.Context, originalURL string) (shortener.ShortLink, error) {
	query := `SELECT short_id, original_url, clicks, last_accessed, created_at FROM urls WHERE original_url = ? ORDER BY id LIMIT 1`
	return scanLink(r.db.QueryRowContext(ctx, query, originalURL))
}

func (r *Repository) RecordAccess(ctx context.Context, shortID string, at time.Time) error {
	at = at.UTC()
	query := `UPDATE urls SET clicks = clicks + 1,
		last_accessed = CASE WHEN last_accessed IS NULL OR last_accessed < ? THEN ? ELSE last_accessed END
		WHERE short_id = ?`
	res, err := r.db.ExecContext(ctx, query, at, at, shortID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return shortener.ErrNotFound
	}
	return nil
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *Repository) Close() {
	_ = r.db.Close()
}

func scanLink(row *sql.Row) (shortener.ShortLink, error) {
	var l shortener.ShortLink
	var lastAccessed sql.NullTime
	err := row.Scan(&l.ShortID, &l.OriginalURL, &l.Clicks, &lastAccessed, &l.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return shortener.ShortLink{}, shortener.ErrNotFound
	}
	if err != nil {
		return shortener.ShortLink{}, err
	}
	if lastAccessed.Valid {
		t := lastAccessed.Time
		l.LastAccessed = &t
	}
	return l, nil
}

// translateUnique maps unique constraint failures to shortener sentinels. libSQL only
// reports the message, so the column is taken from the text for both drivers.
func translateUnique(err error) error {
	if !isUniqueFailure(err) {
		return err
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "urls.short_id"):
		return shortener.ErrIDTaken
	case strings.Contains(msg, "urls.original_url"):
		return shortener.ErrURLTaken
	}
	return err
}

func isUniqueFailure(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
