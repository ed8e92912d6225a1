// Package cryptox implements password hashing for account credentials.
//
// The original service stored secrets under reversible symmetric encryption
// and compared decrypted values. That is replaced here with a salted one-way
// argon2id digest and a constant-time comparison; see DESIGN.md for the
// behavior-change note.
package cryptox

import (
	"crypto/subtle"

	"github.com/dmitrijs2005/trainspotter/internal/common"
	"golang.org/x/crypto/argon2"
)

const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32

	saltSize = 32
)

// NewSalt returns a fresh random per-account salt.
func NewSalt() []byte {
	return common.GenerateRandByteArray(saltSize)
}

// HashPassword derives the stored digest for a password and salt.
func HashPassword(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)
}

// VerifyPassword reports whether candidate matches the stored digest,
// comparing in constant time.
func VerifyPassword(candidate string, salt, digest []byte) bool {
	computed := HashPassword(candidate, salt)
	return subtle.ConstantTimeCompare(computed, digest) == 1
}
