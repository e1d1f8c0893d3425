package random

import (
	"crypto/rand"
)

// Random supplies the unpredictable values behind session secrets and can
// be mocked for testing
type Random interface {
	// String returns length characters drawn uniformly from alphabet
	String(length int, alphabet string) string
}

// CryptoRandom implements Random using crypto/rand
type CryptoRandom struct{}

// New creates a new CryptoRandom
func New() *CryptoRandom {
	return &CryptoRandom{}
}

// String returns length characters drawn uniformly from alphabet, which
// must hold at most 256 bytes. Bytes that would bias the draw are rejected.
func (r *CryptoRandom) String(length int, alphabet string) string {
	n := len(alphabet)
	if length <= 0 || n == 0 || n > 256 {
		return ""
	}
	limit := 256 - 256%n

	result := make([]byte, 0, length)
	buf := make([]byte, length*2)
	for len(result) < length {
		// crypto/rand.Read never fails on supported platforms
		_, _ = rand.Read(buf)
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			result = append(result, alphabet[int(b)%n])
			if len(result) == length {
				break
			}
		}
	}
	return string(result)
}
