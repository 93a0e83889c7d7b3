package cache

// NopStore is the disabled-cache implementation of Store. Every read
// misses and every write succeeds without storing anything, so callers
// are written once against Store and never branch on whether caching
// is on.
type NopStore struct{}

// Get always reports a miss.
func (NopStore) Get(string) (any, bool) {
	return nil, false
}

// Set always reports success and discards the value.
func (NopStore) Set(string, any) bool {
	return true
}

// Ensure NopStore implements Store
var _ Store = NopStore{}
