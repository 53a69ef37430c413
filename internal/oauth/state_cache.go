package oauth

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/burnick/demoapp-sub000/internal/cache"
	"github.com/burnick/demoapp-sub000/internal/observability/logger"
)

const statePrefix = "oauth:state:"

// cacheStateRepository stores states in the shared cache so several
// instances can serve the same login flow. Expiry is delegated to the
// backend TTL; no sweeper is needed. Count is a local best-effort number
// since distributed backends cannot be sized cheaply.
type cacheStateRepository struct {
	c     cache.Cache
	now   func() time.Time
	local atomic.Int64
}

// NewCacheStateRepository builds a repository on top of the given cache.
func NewCacheStateRepository(c cache.Cache) StateRepository {
	return &cacheStateRepository{c: c, now: time.Now}
}

func (r *cacheStateRepository) Generate(ctx context.Context, provider Provider, redirectURL string) (string, error) {
	key, err := newStateKey()
	if err != nil {
		return "", err
	}
	nonce, err := newNonce(16)
	if err != nil {
		return "", err
	}

	st := State{
		Provider:    provider,
		RedirectURL: redirectURL,
		IssuedAt:    r.now().UTC(),
		Nonce:       nonce,
	}
	b, err := json.Marshal(st)
	if err != nil {
		return "", err
	}

	r.c.Set(statePrefix+key, b, StateTTL)
	r.local.Add(1)

	logger.From(ctx).Debug("oauth state issued",
		logger.Provider(string(provider)),
		logger.StateKey(key),
	)
	return key, nil
}

func (r *cacheStateRepository) Consume(ctx context.Context, key string) (State, bool) {
	log := logger.From(ctx).With(logger.Component("oauth.state"))

	b, ok := r.c.Get(statePrefix + key)
	if !ok {
		log.Warn("oauth state lookup miss", logger.StateKey(key))
		return State{}, false
	}
	r.c.Delete(statePrefix + key)
	r.local.Add(-1)

	var st State
	if err := json.Unmarshal(b, &st); err != nil {
		log.Warn("oauth state decode failed", logger.StateKey(key), logger.Err(err))
		return State{}, false
	}
	// Backend TTL already bounds lifetime, but re-check against the clock
	// in case the backend default was configured longer.
	if st.Expired(r.now()) {
		log.Warn("oauth state expired", logger.StateKey(key))
		return State{}, false
	}

	log.Debug("oauth state consumed",
		logger.StateKey(key),
		logger.Provider(string(st.Provider)),
	)
	return st, true
}

func (r *cacheStateRepository) Count() int {
	n := r.local.Load()
	if n < 0 {
		return 0
	}
	return int(n)
}

// Clear only resets the local counter; distributed entries expire via TTL.
func (r *cacheStateRepository) Clear() { r.local.Store(0) }

func (r *cacheStateRepository) Close() {}
