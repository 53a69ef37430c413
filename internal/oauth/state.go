package oauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"time"
)

const (
	// StateTTL bounds how long an issued state may wait for its callback.
	StateTTL = 15 * time.Minute

	// sweepInterval is how often abandoned states are purged.
	sweepInterval = 5 * time.Minute
)

// State binds an authorization request to its callback. It references its
// provider by name only; validity against the live registry is re-checked
// when the state is consumed.
type State struct {
	Provider    Provider  `json:"provider"`
	RedirectURL string    `json:"redirect_url,omitempty"`
	IssuedAt    time.Time `json:"issued_at"`
	Nonce       string    `json:"nonce"`
}

// Expired reports whether the state is past its TTL at the given instant.
func (s State) Expired(now time.Time) bool {
	return now.Sub(s.IssuedAt) > StateTTL
}

// StateRepository issues and consumes single-use CSRF state tokens. The
// memory implementation is the single-instance default; the cache-backed
// one serves horizontally scaled deployments.
type StateRepository interface {
	// Generate stores a fresh state and returns its opaque key.
	Generate(ctx context.Context, provider Provider, redirectURL string) (string, error)

	// Consume looks up, removes and returns the state for key. It returns
	// ok=false when the key is unknown or the state is past its TTL;
	// expired entries are removed as a side effect. A state is returned at
	// most once per key.
	Consume(ctx context.Context, key string) (State, bool)

	// Count returns the number of live entries (best effort for
	// distributed backends).
	Count() int

	// Clear drops all entries. Test and ops use.
	Clear()

	// Close stops background work and releases held entries.
	Close()
}

// newStateKey returns 16 random bytes, hex encoded. The key is the only
// value ever handed to the browser; the nonce stays server-side.
func newStateKey() (string, error) {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(b[:]), nil
}

// newNonce returns a random base64url string of n source bytes.
func newNonce(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
