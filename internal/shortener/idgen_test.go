package shortener

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNanoID(t *testing.T) {
	for length := MinIDLength; length <= MaxIDLength; length++ {
		gen, err := NanoID(length)
		require.NoError(t, err)
		for i := 0; i < 100; i++ {
			id, err := gen()
			require.NoError(t, err)
			require.Len(t, id, length)
			for _, c := range id {
				require.True(t, strings.ContainsRune(Alphabet, c), "unexpected symbol %q in %s", c, id)
			}
		}
	}
}

func TestNanoIDLengthBounds(t *testing.T) {
	_, err := NanoID(MinIDLength - 1)
	assert.Error(t, err)
	_, err = NanoID(MaxIDLength + 1)
	assert.Error(t, err)
	assert.Len(t, Alphabet, 62)
}
