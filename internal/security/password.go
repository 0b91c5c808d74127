package security

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const passwordHashCost = 12

// HashPassword derives the stored form of a dashboard user's password.
func HashPassword(plain string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(plain), passwordHashCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

// VerifyPassword checks a candidate password against a stored hash.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
