// Package auth holds the credential primitives: salted PBKDF2 password
// digests, the email shape check and signed session tokens.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"regexp"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// Iterations is the PBKDF2 work factor.
	Iterations = 100_000
	keyLen     = 32
	saltBytes  = 32

	// MinPasswordLen is the shortest password accepted at sign-up and change.
	MinPasswordLen = 6
)

var emailRe = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// HashPassword derives a hex PBKDF2-HMAC-SHA256 digest of password. When
// salt is empty a fresh random salt (64 hex chars) is generated. The salt
// actually used is returned alongside the digest.
func HashPassword(password, salt string) (digest, usedSalt string, err error) {
	if salt == "" {
		salt, err = NewSalt()
		if err != nil {
			return "", "", err
		}
	}
	key := pbkdf2.Key([]byte(password), []byte(salt), Iterations, keyLen, sha256.New)
	return hex.EncodeToString(key), salt, nil
}

// VerifyPassword recomputes the digest for password and salt and compares
// it with digest in constant time.
func VerifyPassword(password, digest, salt string) bool {
	if salt == "" || digest == "" {
		return false
	}
	got, _, err := HashPassword(password, salt)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(digest)) == 1
}

// NewSalt returns 32 random bytes, hex-encoded.
func NewSalt() (string, error) {
	b := make([]byte, saltBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// ValidateEmail reports whether s looks like an email address.
func ValidateEmail(s string) bool {
	return emailRe.MatchString(s)
}

// NormalizeEmail trims and lower-cases an address for storage and lookup.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
