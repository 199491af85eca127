// Package secrets handles silo API key generation and verification. Keys are
// stored as bcrypt digests; comparison is constant-time by construction.
package secrets

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"helix/pkg/domerr"
)

// Generate creates a cryptographically secure random API key, base64-encoded.
func Generate() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("could not generate api key: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Hash creates a bcrypt digest of the provided key, suitable for the silo
// registry.
func Hash(key string) (string, error) {
	if key == "" {
		return "", domerr.New(domerr.CodeInvalidInput, "api key cannot be empty")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", domerr.New(domerr.CodeInvalidInput, "api key is too long")
		}
		return "", fmt.Errorf("could not hash api key: %w", err)
	}
	return string(hashed), nil
}

// Verify checks a plaintext key against a stored digest.
// Errors: CodeInvalidKey on mismatch.
func Verify(key, digest string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(key)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return domerr.New(domerr.CodeInvalidKey, "api key does not match")
		}
		return fmt.Errorf("could not verify api key: %w", err)
	}
	return nil
}
