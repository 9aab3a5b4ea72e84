package shortener

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	MinIDLength     = 6
	MaxIDLength     = 8
	DefaultIDLength = 6
)

// IDGenerator returns a fresh candidate short id.
type IDGenerator func() (string, error)

// NanoID returns a generator of random ids of the given length over Alphabet.
func NanoID(length int) (IDGenerator, error) {
	if length < MinIDLength || length > MaxIDLength {
		return nil, fmt.Errorf("short id length must be in [%d, %d], got %d", MinIDLength, MaxIDLength, length)
	}
	return func() (string, error) {
		return gonanoid.Generate(Alphabet, length)
	}, nil
}
