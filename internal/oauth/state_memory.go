package oauth

import (
	"context"
	"sync"
	"time"

	"github.com/burnick/demoapp-sub000/internal/observability/logger"
)

// memoryStateRepository keeps states in a plain map guarded by a mutex.
// Generate, Consume and the periodic sweep race on the same entries, so
// every access is serialized. A background ticker purges abandoned flows to
// bound memory growth.
type memoryStateRepository struct {
	mu      sync.Mutex
	entries map[string]State

	now  func() time.Time
	done chan struct{}
	wg   sync.WaitGroup
}

// NewMemoryStateRepository creates the repository and starts its sweeper.
func NewMemoryStateRepository() StateRepository {
	r := newMemoryStateRepository(time.Now)
	r.wg.Add(1)
	go r.sweepLoop()
	return r
}

// newMemoryStateRepository builds the repository without starting the
// sweeper, with an injectable clock.
func newMemoryStateRepository(now func() time.Time) *memoryStateRepository {
	return &memoryStateRepository{
		entries: make(map[string]State),
		now:     now,
		done:    make(chan struct{}),
	}
}

func (r *memoryStateRepository) Generate(ctx context.Context, provider Provider, redirectURL string) (string, error) {
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

	r.mu.Lock()
	r.entries[key] = st
	size := len(r.entries)
	r.mu.Unlock()

	logger.From(ctx).Debug("oauth state issued",
		logger.Provider(string(provider)),
		logger.StateKey(key),
		logger.Int("store_size", size),
	)
	return key, nil
}

func (r *memoryStateRepository) Consume(ctx context.Context, key string) (State, bool) {
	log := logger.From(ctx).With(logger.Component("oauth.state"))

	r.mu.Lock()
	st, ok := r.entries[key]
	if ok {
		delete(r.entries, key)
	}
	r.mu.Unlock()

	if !ok {
		log.Warn("oauth state lookup miss", logger.StateKey(key))
		return State{}, false
	}
	if st.Expired(r.now()) {
		log.Warn("oauth state expired",
			logger.StateKey(key),
			logger.Provider(string(st.Provider)),
		)
		return State{}, false
	}

	log.Debug("oauth state consumed",
		logger.StateKey(key),
		logger.Provider(string(st.Provider)),
	)
	return st, true
}

func (r *memoryStateRepository) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *memoryStateRepository) Clear() {
	r.mu.Lock()
	r.entries = make(map[string]State)
	r.mu.Unlock()
}

func (r *memoryStateRepository) Close() {
	select {
	case <-r.done:
		// already closed
	default:
		close(r.done)
	}
	r.wg.Wait()
	r.Clear()
}

func (r *memoryStateRepository) sweepLoop() {
	defer r.wg.Done()
	t := time.NewTicker(sweepInterval)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			r.sweep()
		case <-r.done:
			return
		}
	}
}

// sweep removes every entry older than the TTL regardless of whether it is
// ever validated.
func (r *memoryStateRepository) sweep() {
	now := r.now()

	r.mu.Lock()
	removed := 0
	for key, st := range r.entries {
		if st.Expired(now) {
			delete(r.entries, key)
			removed++
		}
	}
	remaining := len(r.entries)
	r.mu.Unlock()

	if removed > 0 {
		logger.L().Debug("oauth state sweep",
			logger.Component("oauth.state"),
			logger.Int("removed", removed),
			logger.Int("remaining", remaining),
		)
	}
}
