package shortener

import (
	"context"
	"errors"
	"fmt"
)

// Resolve returns the original URL for shortID and records the access.
// A failed access update is logged but the URL is still returned.
func (s *Service) Resolve(ctx context.Context, shortID string) (string, error) {
	target, cached := s.lookupCache(ctx, shortID)
	if !cached {
		link, err := s.store.FindByShortID(ctx, shortID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return "", ErrNotFound
			}
			return "", fmt.Errorf("find short link: %w", err)
		}
		target = link.OriginalURL
		if s.cache != nil {
			s.cache.Set(ctx, shortID, target)
		}
	}

	err := s.recorder.RecordAccess(ctx, shortID, s.now())
	switch {
	case err == nil:
	case errors.Is(err, ErrNotFound) && cached:
		// cache outlived the store contents
		return "", ErrNotFound
	default:
		s.logger.Warn("record access failed", "short_id", shortID, "error", err)
	}
	return target, nil
}

func (s *Service) lookupCache(ctx context.Context, shortID string) (string, bool) {
	if s.cache == nil {
		return "", false
	}
	return s.cache.Get(ctx, shortID)
}
