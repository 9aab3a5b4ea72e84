package repository

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antonevtu/shortlink/internal/shortener"
)

func TestRepositoryRestoreFromFile(t *testing.T) {
	ctx := context.Background()
	fileName := filepath.Join(t.TempDir(), "storage.txt")
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	accessed := created.Add(time.Hour)

	repo, err := New(fileName, true)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, shortener.ShortLink{ShortID: "abc123", OriginalURL: "https://example.com/a", CreatedAt: created}))
	require.NoError(t, repo.Create(ctx, shortener.ShortLink{ShortID: "zzz999", OriginalURL: "https://example.com/b", CreatedAt: created}))
	require.NoError(t, repo.RecordAccess(ctx, "abc123", accessed))
	require.NoError(t, repo.RecordAccess(ctx, "abc123", accessed.Add(-time.Minute)))
	repo.Close()

	data, err := os.ReadFile(fileName)
	require.NoError(t, err)
	assert.Equal(t, 4, strings.Count(string(data), "\n"))

	// later lines win on restore
	restored, err := New(fileName, true)
	require.NoError(t, err)
	defer restored.Close()
	assert.Equal(t, 2, restored.Len())

	link, err := restored.FindByShortID(ctx, "abc123")
	require.NoError(t, err)
	assert.EqualValues(t, 2, link.Clicks)
	require.NotNil(t, link.LastAccessed)
	assert.True(t, accessed.Equal(*link.LastAccessed))

	link, err = restored.FindByURL(ctx, "https://example.com/b")
	require.NoError(t, err)
	assert.Equal(t, "zzz999", link.ShortID)
	assert.Nil(t, link.LastAccessed)

	assert.ErrorIs(t, restored.Create(ctx, shortener.ShortLink{ShortID: "abc123", OriginalURL: "https://example.com/c"}), shortener.ErrIDTaken)
}

func TestRepositoryUniqueness(t *testing.T) {
	ctx := context.Background()

	unique, err := New("", true)
	require.NoError(t, err)
	require.NoError(t, unique.Create(ctx, shortener.ShortLink{ShortID: "aaaaaa", OriginalURL: "https://example.com"}))
	assert.ErrorIs(t, unique.Create(ctx, shortener.ShortLink{ShortID: "aaaaaa", OriginalURL: "https://example.org"}), shortener.ErrIDTaken)
	assert.ErrorIs(t, unique.Create(ctx, shortener.ShortLink{ShortID: "bbbbbb", OriginalURL: "https://example.com"}), shortener.ErrURLTaken)

	shared, err := New("", false)
	require.NoError(t, err)
	require.NoError(t, shared.Create(ctx, shortener.ShortLink{ShortID: "aaaaaa", OriginalURL: "https://example.com"}))
	require.NoError(t, shared.Create(ctx, shortener.ShortLink{ShortID: "bbbbbb", OriginalURL: "https://example.com"}))

	// the first record stays the one found by URL
	link, err := shared.FindByURL(ctx, "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, "aaaaaa", link.ShortID)
}

func TestRepositoryNotFound(t *testing.T) {
	ctx := context.Background()
	repo, err := New("", true)
	require.NoError(t, err)

	_, err = repo.FindByShortID(ctx, "nope42")
	assert.ErrorIs(t, err, shortener.ErrNotFound)
	_, err = repo.FindByURL(ctx, "https://nowhere.example")
	assert.ErrorIs(t, err, shortener.ErrNotFound)
	assert.ErrorIs(t, repo.RecordAccess(ctx, "nope42", time.Now()), shortener.ErrNotFound)
	assert.NoError(t, repo.Ping(ctx))
}
