package podcast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCacheGetMissThenHit(t *testing.T) {
	c := NewCache[string](time.Minute, nil)
	_, ok := c.Get("alice's shows")
	assert.False(t, ok)

	c.Insert("alice's shows", "podcast-blob", false)
	v, ok := c.Get("alice's shows")
	assert.True(t, ok)
	assert.Equal(t, "podcast-blob", v)
}

func TestCacheExpiresAfterTTL(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := now
	c := NewCache[int](time.Minute, func() time.Time { return clock })

	c.Insert("k", 42, false)
	clock = now.Add(2 * time.Minute)

	_, ok := c.Get("k")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestCacheScrubEvictsOtherExpiredEntries(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := now
	c := NewCache[int](time.Minute, func() time.Time { return clock })

	c.Insert("old", 1, false)
	clock = now.Add(2 * time.Minute)
	c.Insert("new", 2, true)

	assert.Equal(t, 1, c.Len())
	_, ok := c.Get("new")
	assert.True(t, ok)
}
