package tokenhash

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"
)

const (
	prefix = "sha256:"
	// TokenBytes is the entropy of a generated session token.
	TokenBytes = 32
)

// Generate returns a new random opaque token encoded as hex.
func Generate() (string, error) {
	buf := make([]byte, TokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate random bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// Hash returns the canonical hash representation for a token. Stores only ever
// see this value, never the token itself.
func Hash(token string) string {
	sum := sha256.Sum256([]byte(token))
	return prefix + hex.EncodeToString(sum[:])
}

// Verify checks whether token matches the stored hash.
func Verify(storedHash, token string) bool {
	if !strings.HasPrefix(storedHash, prefix) {
		return false
	}
	expected := Hash(token)
	return subtle.ConstantTimeCompare([]byte(storedHash), []byte(expected)) == 1
}
