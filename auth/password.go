// Package auth implements student registration and login: roster
// verification, OTP delivery, salted password storage, and JWT
// issuance.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
)

const saltLen = 16

// HashPassword returns base64(salt || sha256(salt || password)) with a
// random 16-byte salt.
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	sum := sha256.Sum256(append(salt, []byte(password)...))
	return base64.StdEncoding.EncodeToString(append(salt, sum[:]...)), nil
}

// VerifyPassword checks a password against a stored salted hash.
func VerifyPassword(password, stored string) bool {
	decoded, err := base64.StdEncoding.DecodeString(stored)
	if err != nil || len(decoded) != saltLen+sha256.Size {
		return false
	}

	salt := decoded[:saltLen]
	want := decoded[saltLen:]
	sum := sha256.Sum256(append(salt, []byte(password)...))

	return subtle.ConstantTimeCompare(sum[:], want) == 1
}
