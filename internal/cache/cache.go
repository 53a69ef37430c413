// Package cache defines the byte-oriented cache abstraction shared by the
// refresh-token store and the distributed OAuth state repository. Two
// backends exist: in-process (go-cache) and redis.
package cache

import "time"

// Cache is a TTL key/value store over raw bytes.
type Cache interface {
	// Get returns the value and whether the key exists and is unexpired.
	Get(key string) ([]byte, bool)
	// Set stores value under key for ttl. ttl <= 0 uses the backend default.
	Set(key string, value []byte, ttl time.Duration)
	// Delete removes the key. Deleting a missing key is a no-op.
	Delete(key string)
}
