package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// tokenBytes gives 160 bits of entropy, enough to make collisions and
// guessing cryptographically negligible.
const tokenBytes = 20

// NewToken mints a fresh random session token. The raw token travels
// only in the client cookie; anything persisted or logged must use
// LookupKey instead.
func NewToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("unable to generate session token, cause %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// LookupKey derives the storage key for a raw token. It is
// deterministic and one-way: stolen store rows cannot be turned back
// into valid cookies.
func LookupKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
