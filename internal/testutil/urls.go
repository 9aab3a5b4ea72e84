package testutil

import (
	"strings"

	"github.com/google/uuid"
)

// LongURL returns a valid URL of exactly n bytes (n >= 64) with a random, poorly
// compressible path.
func LongURL(n int) string {
	var b strings.Builder
	b.WriteString("https://example.com/")
	for b.Len() < n {
		b.WriteString(uuid.NewString())
		b.WriteByte('/')
	}
	return b.String()[:n]
}
