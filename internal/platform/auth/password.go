package auth

import (
	"fmt"

	"github.com/alexedwards/argon2id"

	"github.com/localserve/localserve-api/internal/domain"
)

// HashPassword hashes a plaintext password with argon2id. The plaintext is
// validated here so a weak password can never reach the store.
func HashPassword(plaintext string) (string, error) {
	if len(plaintext) < domain.MinPasswordLength {
		return "", domain.NewValidationError("password", "must be at least 6 characters")
	}
	hash, err := argon2id.CreateHash(plaintext, argon2id.DefaultParams)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return hash, nil
}

// VerifyPassword reports whether plaintext matches the stored hash, using
// argon2id's own constant-time comparison.
func VerifyPassword(plaintext, hash string) (bool, error) {
	match, err := argon2id.ComparePasswordAndHash(plaintext, hash)
	if err != nil {
		return false, fmt.Errorf("failed to verify password: %w", err)
	}
	return match, nil
}
