package security

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	sessionTokenBytes = 32
	apiKeyBytes       = 32

	// APIKeyPrefix makes raw keys recognizable in config files and logs
	// without revealing anything about the secret body.
	APIKeyPrefix = "sa_"

	// LookupPrefixLen is how much of the raw key is stored in the clear to
	// narrow resolver candidates. Short enough to stay non-secret, long
	// enough to make prefix collisions rare.
	LookupPrefixLen = 12

	apiKeyHashCost = 10
)

// NewSessionToken returns a fresh high-entropy session token, safe for use in
// URLs. The token is the session's public identifier and encodes nothing.
func NewSessionToken() (string, error) {
	b := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// NewAPIKey returns a fresh raw project API key. Callers must hash it with
// HashAPIKey before storage; the raw value is surfaced exactly once.
func NewAPIKey() (string, error) {
	b := make([]byte, apiKeyBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate api key: %w", err)
	}
	return APIKeyPrefix + hex.EncodeToString(b), nil
}

// LooksLikeAPIKey is a cheap shape check used to reject garbage before any
// store access.
func LooksLikeAPIKey(raw string) bool {
	return strings.HasPrefix(raw, APIKeyPrefix) && len(raw) > LookupPrefixLen
}

// LookupPrefix returns the non-secret leading fragment of a raw key, stored
// alongside the hash so the resolver can skip most candidates without running
// the slow comparison.
func LookupPrefix(raw string) string {
	if len(raw) < LookupPrefixLen {
		return raw
	}
	return raw[:LookupPrefixLen]
}

// HashAPIKey derives the salted one-way stored form of a raw key.
func HashAPIKey(raw string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(raw), apiKeyHashCost)
	if err != nil {
		return "", fmt.Errorf("hash api key: %w", err)
	}
	return string(h), nil
}

// CompareAPIKey checks a raw key against a stored hash. bcrypt's comparison
// is the authentication step; it does not leak timing correlated with key
// content the way a direct byte compare would.
func CompareAPIKey(hash, raw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(raw)) == nil
}

// FingerprintSecret returns a stable non-reversible cache key for a raw
// secret. Cache layers must never see the secret itself.
func FingerprintSecret(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
