package utils

import (
	"crypto/rand"   // secure random number generation
	"crypto/sha256" // SHA-256 hashing of bearer tokens before storage
	"encoding/hex"  // hex encoding of digests and random bytes
)

// HashToken returns the SHA-256 hash of a raw bearer token as a hex string.
// Session rows store only this hash, so a leaked sessions table cannot be
// replayed as live tokens.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// RandomDigits returns n cryptographically secure decimal digits.  Used for
// reservation PIN generation.  Bytes of 250 and above are rejected before
// the modulo so every digit is drawn uniformly.
func RandomDigits(n int) (string, error) {
	out := make([]byte, 0, n)
	buf := make([]byte, n)
	for len(out) < n {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if b >= 250 {
				continue
			}
			out = append(out, '0'+b%10)
			if len(out) == n {
				break
			}
		}
	}
	return string(out), nil
}
