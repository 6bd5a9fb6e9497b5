// Package auth implements password verification, session tokens and the
// identity gate that turns a bearer credential into a verified Identity.
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters (OWASP 2024 recommended minimum).
const (
	argon2Time    = 3
	argon2Memory  = 64 * 1024 // 64 MB
	argon2Threads = 4
	argon2KeyLen  = 32
	argon2SaltLen = 16

	// MaxPasswordLength bounds the work a single hash can cost.
	MaxPasswordLength = 1024
)

var (
	// ErrInvalidHash indicates the verifier is not a PHC argon2id string.
	ErrInvalidHash = errors.New("invalid hash format")
	// ErrIncompatibleVersion indicates the argon2 version is not supported.
	ErrIncompatibleVersion = errors.New("incompatible argon2 version")
	// ErrEmptyPassword is returned when hashing an empty secret.
	ErrEmptyPassword = errors.New("password cannot be empty")
	// ErrPasswordTooLong is returned when the secret exceeds MaxPasswordLength.
	ErrPasswordTooLong = errors.New("password exceeds maximum length")
)

// Verifier is a parsed argon2id PHC string.
type Verifier struct {
	Memory  uint32
	Time    uint32
	Threads uint8
	Salt    []byte
	Hash    []byte
}

// HashPassword creates an Argon2id hash of the given secret.
// Returns the hash in PHC string format.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	if len(password) > MaxPasswordLength {
		return "", ErrPasswordTooLong
	}

	salt := make([]byte, argon2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	hash := argon2.IDKey([]byte(password), salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)

	// $argon2id$v=19$m=65536,t=3,p=4$<salt>$<hash>
	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		argon2Memory,
		argon2Time,
		argon2Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	), nil
}

// VerifyPassword reports whether password matches the stored verifier.
// A malformed verifier never matches.
func VerifyPassword(password, encodedHash string) bool {
	v, err := ParseVerifier(encodedHash)
	if err != nil {
		return false
	}
	return v.Matches(password)
}

// Matches recomputes the hash with the verifier's parameters and compares
// in constant time.
func (v *Verifier) Matches(password string) bool {
	if len(password) > MaxPasswordLength {
		return false
	}
	computed := argon2.IDKey([]byte(password), v.Salt, v.Time, v.Memory, v.Threads, uint32(len(v.Hash)))
	return subtle.ConstantTimeCompare(computed, v.Hash) == 1
}

// ParseVerifier parses a PHC argon2id string.
func ParseVerifier(encodedHash string) (*Verifier, error) {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return nil, ErrInvalidHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return nil, ErrInvalidHash
	}
	if version != argon2.Version {
		return nil, ErrIncompatibleVersion
	}

	v := &Verifier{}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &v.Memory, &v.Time, &v.Threads); err != nil {
		return nil, ErrInvalidHash
	}
	if v.Memory == 0 || v.Time == 0 || v.Threads == 0 {
		return nil, ErrInvalidHash
	}

	var err error
	if v.Salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil || len(v.Salt) == 0 {
		return nil, ErrInvalidHash
	}
	if v.Hash, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil || len(v.Hash) == 0 {
		return nil, ErrInvalidHash
	}

	return v, nil
}
