package shortener

import (
	"context"
	"errors"
	"fmt"
)

// Allocate returns the short id for longURL. created is false when an existing
// record was reused, either by the dedup check or after losing a concurrent insert.
func (s *Service) Allocate(ctx context.Context, longURL string) (shortID string, created bool, err error) {
	if err = ValidateURL(longURL); err != nil {
		return "", false, err
	}

	if s.dedup {
		existing, err := s.store.FindByURL(ctx, longURL)
		if err == nil {
			return existing.ShortID, false, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return "", false, fmt.Errorf("dedup lookup: %w", err)
		}
	}

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		candidate, err := s.newID()
		if err != nil {
			return "", false, fmt.Errorf("generate short id: %w", err)
		}

		_, err = s.store.FindByShortID(ctx, candidate)
		if err == nil {
			s.logger.Debug("short id collision", "short_id", candidate, "attempt", attempt)
			continue
		}
		if !errors.Is(err, ErrNotFound) {
			return "", false, fmt.Errorf("collision check: %w", err)
		}

		err = s.store.Create(ctx, ShortLink{
			ShortID:     candidate,
			OriginalURL: longURL,
			CreatedAt:   s.now(),
		})
		switch {
		case err == nil:
			return candidate, true, nil
		case errors.Is(err, ErrIDTaken):
			s.logger.Debug("short id taken on insert", "short_id", candidate, "attempt", attempt)
			continue
		case errors.Is(err, ErrURLTaken):
			// lost the race against a concurrent allocation of the same url
			existing, err := s.store.FindByURL(ctx, longURL)
			if err != nil {
				return "", false, fmt.Errorf("re-read after url conflict: %w", err)
			}
			return existing.ShortID, false, nil
		default:
			return "", false, fmt.Errorf("create short link: %w", err)
		}
	}

	s.logger.Error("allocation exhausted", "attempts", s.maxAttempts)
	return "", false, ErrAllocationExhausted
}
