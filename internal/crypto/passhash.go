// Package crypto implements password hashing and sealing of small local secrets.
package crypto

import (
	"crypto/rand"
	"crypto/subtle"

	"golang.org/x/crypto/argon2"
)

// SaltLen is the per-user salt size in bytes.
const SaltLen = 16

// Params are Argon2id cost parameters.
type Params struct {
	Time    uint32 // iterations
	Memory  uint32 // KiB
	Threads uint8
	KeyLen  uint32
}

// DefaultParams are tuned for interactive sign-in.
var DefaultParams = Params{Time: 3, Memory: 64 * 1024, Threads: 1, KeyLen: 32}

// Hasher hashes and verifies passwords with fixed Argon2id parameters.
type Hasher struct{ p Params }

// NewHasher returns a hasher; zero fields of p fall back to DefaultParams.
func NewHasher(p Params) *Hasher {
	if p.Time == 0 {
		p.Time = DefaultParams.Time
	}
	if p.Memory == 0 {
		p.Memory = DefaultParams.Memory
	}
	if p.Threads == 0 {
		p.Threads = DefaultParams.Threads
	}
	if p.KeyLen == 0 {
		p.KeyLen = DefaultParams.KeyLen
	}
	return &Hasher{p: p}
}

// RandBytes returns n cryptographically secure random bytes.
func RandBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	_, err := rand.Read(b)
	return b, err
}

// Hash returns the Argon2id hash of password using the provided salt.
func (h *Hasher) Hash(password, salt []byte) []byte {
	return argon2.IDKey(password, salt, h.p.Time, h.p.Memory, h.p.Threads, h.p.KeyLen)
}

// Verify checks password against the expected hash and salt in constant time.
func (h *Hasher) Verify(password, salt, expected []byte) bool {
	got := h.Hash(password, salt)
	return subtle.ConstantTimeCompare(got, expected) == 1
}
