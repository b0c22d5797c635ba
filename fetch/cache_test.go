package fetch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsCached(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name  string
		state CacheState
		want  bool
	}{
		{"zero value", CacheState{}, false},
		{"cache without fetched", CacheState{Cache: true}, false},
		{"fetched without cache", CacheState{Fetched: &now}, false},
		{"cache and fetched", CacheState{Cache: true, Fetched: &now}, true},
		{"expired entry is still cached", CacheState{Cache: true, Fetched: &now, Expires: now.Add(-time.Hour)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsCached(tt.state))
		})
	}
}

func TestIsFresh(t *testing.T) {
	fetched := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	state := CacheState{Cache: true, Fetched: &fetched, Expires: fetched.Add(time.Minute)}

	assert.True(t, IsFresh(state, fetched.Add(30*time.Second)))
	assert.False(t, IsFresh(state, fetched.Add(2*time.Minute)))
	assert.True(t, IsFresh(CacheState{Cache: true, Fetched: &fetched}, fetched.Add(24*time.Hour)), "no expiry")
	assert.False(t, IsFresh(CacheState{Cache: true}, fetched))
}

func TestNewCacheState(t *testing.T) {
	fetched := time.Now()
	expires := fetched.Add(time.Minute)

	state := NewCacheState(Metadata{Cacheable: true, Expires: expires}, fetched)
	assert.True(t, IsCached(state))
	assert.Equal(t, expires, state.Expires)
	assert.Equal(t, fetched, *state.Fetched)

	assert.False(t, IsCached(NewCacheState(Metadata{}, fetched)))
}
