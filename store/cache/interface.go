// Package cache provides the response cache used by the Stemformatics
// API gateway. The cache holds opaque payloads under string keys with a
// fixed TTL and a total byte-size budget.
package cache

// Store defines the cache operations exposed to the gateway.
type Store interface {
	// Get retrieves a value from the cache.
	// Returns: value, whether a live (non-expired) entry exists
	Get(key string) (any, bool)

	// Set stores a value in the cache under the configured TTL.
	// Always reports success; a cache write is never allowed to fail
	// the request that triggered it.
	Set(key string, value any) bool
}

// Sizer estimates the byte size of a payload for budget accounting.
type Sizer interface {
	// Size returns the serialized byte length of value, falling back
	// to a best-effort in-memory estimate when serialization fails.
	// It never returns an error.
	Size(value any) int
}
