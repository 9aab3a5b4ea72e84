package shortener

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidateURL accepts only absolute URLs with a scheme and a host.
func ValidateURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return fmt.Errorf("%w: empty url", ErrValidation)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrValidation, err)
	}
	if !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("%w: %q is not an absolute url", ErrValidation, raw)
	}
	return nil
}
