// Package limiter throttles sign-in attempts per (email, client address).
package limiter

import (
	"context"
	"crypto/sha256"
	"net"
	"time"
)

// Limiter controls sign-in attempts and temporary lockouts.
type Limiter interface {
	// Allow reports whether a sign-in is currently allowed and, if not, for how long it stays blocked.
	Allow(ctx context.Context, k Key) (bool, time.Duration, error)
	// Success resets counters after a successful sign-in.
	Success(ctx context.Context, k Key) error
	// Failure records a failed attempt; it reports whether the key is now blocked.
	Failure(ctx context.Context, k Key) (bool, time.Duration, error)
}

// Key identifies one throttled (email, address) pair. The address is stored hashed.
type Key struct {
	Email  string
	IPHash []byte
}

// NewKey builds a Key from an email and a peer address ("host:port" or bare host).
func NewKey(email, addr string) Key {
	return Key{Email: email, IPHash: HashIP(addr)}
}

// Policy configures the sliding window and the lockout.
type Policy struct {
	Window   time.Duration // failures older than this start a fresh count
	MaxFails int           // failures within Window that trigger a block
	BlockFor time.Duration
}

// DefaultPolicy is five failures in fifteen minutes, then a fifteen minute block.
var DefaultPolicy = Policy{Window: 15 * time.Minute, MaxFails: 5, BlockFor: 15 * time.Minute}

// HashIP returns a stable hash of the host part of addr; raw addresses are never stored.
func HashIP(addr string) []byte {
	host := addr
	if h, _, err := net.SplitHostPort(addr); err == nil {
		host = h
	}
	sum := sha256.Sum256([]byte(host))
	return sum[:]
}
