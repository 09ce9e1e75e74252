// Package results caches generated summaries and comparisons per requester.
package results

import (
	"crypto/sha256"
	"encoding/hex"
)

// KeyLength is the number of hex characters kept from the content digest.
const KeyLength = 32

// Key derives the cache key for resolved input text: the first 128 bits of its SHA-256 digest, hex encoded.
func Key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])[:KeyLength]
}
