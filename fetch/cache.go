package fetch

import "time"

// CacheState is the caller's record of a cached resource. The zero value
// means caching is disabled and nothing was fetched. This package only reads
// it.
type CacheState struct {
	Cache   bool
	Fetched *time.Time
	// Expires is optional; the zero time means no known expiry.
	Expires time.Time
}

// IsCached reports whether caching is enabled and a fetch time is recorded,
// i.e. whether the caller may skip re-fetching.
func IsCached(state CacheState) bool {
	return state.Cache && state.Fetched != nil
}

// IsFresh reports whether state is cached and not past its expiry at now.
func IsFresh(state CacheState, now time.Time) bool {
	if !IsCached(state) {
		return false
	}
	return state.Expires.IsZero() || now.Before(state.Expires)
}

// NewCacheState builds the record for a fetch completed at fetched.
// Caching is enabled only when the response allowed it.
func NewCacheState(md Metadata, fetched time.Time) CacheState {
	return CacheState{Cache: md.Cacheable, Fetched: &fetched, Expires: md.Expires}
}
