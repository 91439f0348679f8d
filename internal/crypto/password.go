// Package crypto implements server-side password hashing and verification.
package crypto

import (
	"crypto/rand"
	"crypto/subtle"

	"golang.org/x/crypto/argon2"
)

// SaltLen is the length of the per-user salt.
const SaltLen = 16

// Params are Argon2id cost parameters.
type Params struct {
	Time    uint32
	Memory  uint32 // KiB
	Threads uint8
	KeyLen  uint32
}

// DefaultParams are tuned for interactive server-side sign-in.
var DefaultParams = Params{Time: 3, Memory: 64 * 1024, Threads: 1, KeyLen: 32}

// Hasher derives and checks password hashes.
type Hasher struct{ p Params }

// NewHasher returns a Hasher with p; zero p means DefaultParams.
func NewHasher(p Params) Hasher {
	if p == (Params{}) {
		p = DefaultParams
	}
	return Hasher{p: p}
}

// NewSalt returns a fresh random salt.
func NewSalt() ([]byte, error) {
	b := make([]byte, SaltLen)
	_, err := rand.Read(b)
	return b, err
}

// Hash returns the Argon2id hash of password with salt.
func (h Hasher) Hash(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, h.p.Time, h.p.Memory, h.p.Threads, h.p.KeyLen)
}

// Verify reports whether password matches the expected hash, in constant time.
func (h Hasher) Verify(password string, salt, expected []byte) bool {
	return subtle.ConstantTimeCompare(h.Hash(password, salt), expected) == 1
}
