package rate

import (
	"context"
	"fmt"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryLimiter is the in-process fixed window used when no Redis is
// configured. Counters live in a go-cache with per-window expiry.
type MemoryLimiter struct {
	cache  *gocache.Cache
	prefix string
	max    int64
	window time.Duration
	now    func() time.Time
}

func NewMemoryLimiter(prefix string, max int, window time.Duration) *MemoryLimiter {
	if prefix == "" {
		prefix = "rl:"
	}
	return &MemoryLimiter{
		cache:  gocache.New(window, window),
		prefix: prefix,
		max:    int64(max),
		window: window,
		now:    time.Now,
	}
}

func (l *MemoryLimiter) Allow(ctx context.Context, key string) (Result, error) {
	now := l.now().UTC()
	winStart := now.Truncate(l.window)
	winEnd := winStart.Add(l.window)
	cacheKey := fmt.Sprintf("%s%s:%d", l.prefix, strings.ReplaceAll(key, " ", "_"), winStart.Unix())

	hits := int64(1)
	if err := l.cache.Add(cacheKey, int64(1), winEnd.Sub(now)); err != nil {
		n, incErr := l.cache.IncrementInt64(cacheKey, 1)
		if incErr != nil {
			// Entry expired between Add and Increment; start a new window.
			l.cache.Set(cacheKey, int64(1), winEnd.Sub(now))
			n = 1
		}
		hits = n
	}

	allowed := hits <= l.max
	remaining := l.max - hits
	if remaining < 0 {
		remaining = 0
	}

	res := Result{
		Allowed:     allowed,
		Remaining:   remaining,
		CurrentHits: hits,
		WindowTTL:   winEnd.Sub(now),
	}
	if !allowed {
		res.RetryAfter = winEnd.Sub(now)
	}
	return res, nil
}
