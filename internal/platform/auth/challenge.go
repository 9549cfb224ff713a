package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/alexedwards/argon2id"
)

// NewChallengeToken generates a random verification token and the SHA-256
// hash under which it is stored. The plaintext goes to the delivery channel
// once and is never persisted; the deterministic hash lets reset and
// verification lookups match by hash alone.
func NewChallengeToken() (plaintext, hash string, err error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("failed to generate challenge token: %w", err)
	}
	plaintext = hex.EncodeToString(buf)
	return plaintext, HashChallengeToken(plaintext), nil
}

func HashChallengeToken(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}

// NewOTP generates a 6-digit code, uniform over [100000, 999999].
func NewOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("failed to generate OTP: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// HashOTP hashes an OTP with the same argon2id parameters as passwords.
// A 6-digit code is guessable offline under a cheap hash, so the cost is
// not lowered.
func HashOTP(otp string) (string, error) {
	hash, err := argon2id.CreateHash(otp, argon2id.DefaultParams)
	if err != nil {
		return "", fmt.Errorf("failed to hash OTP: %w", err)
	}
	return hash, nil
}

func VerifyOTP(otp, hash string) (bool, error) {
	match, err := argon2id.ComparePasswordAndHash(otp, hash)
	if err != nil {
		return false, fmt.Errorf("failed to verify OTP: %w", err)
	}
	return match, nil
}
