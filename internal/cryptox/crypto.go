// Package cryptox implements password credentials: a random per-user salt
// and an argon2id-derived verifier compared in constant time.
package cryptox

import (
	"crypto/subtle"

	"github.com/dmitrijs2005/projdash/internal/common"
	"golang.org/x/crypto/argon2"
)

// SaltSize is the length of a freshly generated salt in bytes.
const SaltSize = 16

// Params are the argon2id cost parameters.
type Params struct {
	Time    uint32
	Memory  uint32
	Threads uint8
	KeyLen  uint32
}

// DefaultParams follow the argon2id recommendation of RFC 9106 (second choice).
var DefaultParams = Params{Time: 1, Memory: 64 * 1024, Threads: 4, KeyLen: 32}

// DeriveVerifier derives the stored verifier for password and salt.
func DeriveVerifier(password, salt []byte, p Params) []byte {
	return argon2.IDKey(password, salt, p.Time, p.Memory, p.Threads, p.KeyLen)
}

// HashPassword generates a new salt and returns it together with the verifier.
func HashPassword(password []byte, p Params) (salt, verifier []byte) {
	salt = common.GenerateRandByteArray(SaltSize)
	return salt, DeriveVerifier(password, salt, p)
}

// CheckPassword reports whether password matches the stored salt and verifier.
func CheckPassword(password, salt, verifier []byte, p Params) bool {
	if len(salt) == 0 || len(verifier) == 0 {
		return false
	}
	candidate := DeriveVerifier(password, salt, p)
	defer common.WipeByteArray(candidate)

	return subtle.ConstantTimeCompare(verifier, candidate) == 1
}
