package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
)

// SessionTokenBytes is the entropy of an opaque session token.
const SessionTokenBytes = 32

// ErrInvalidToken indicates the token is not a well-formed session token.
var ErrInvalidToken = errors.New("invalid session token")

var tokenRegex = regexp.MustCompile(`^[a-f0-9]{64}$`)

// GenerateSessionToken returns a random hex-encoded session token.
func GenerateSessionToken() (string, error) {
	b := make([]byte, SessionTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// ValidateSessionToken checks the token shape before any store lookup.
func ValidateSessionToken(token string) error {
	if !tokenRegex.MatchString(token) {
		return ErrInvalidToken
	}
	return nil
}

// QuickHash returns a truncated SHA256 of input for storage keys.
// Raw session tokens never reach Redis.
// This is NOT for password storage.
func QuickHash(input string) string {
	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:16])
}
