package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLRUCacheBasics(t *testing.T) {
	c := NewLRUCache[string](2, time.Minute)

	_, found := c.Get("a")
	assert.False(t, found)

	c.Set("a", "1")
	v, found := c.Get("a")
	assert.True(t, found)
	assert.Equal(t, "1", v)

	c.Set("a", "2")
	v, _ = c.Get("a")
	assert.Equal(t, "2", v)
	assert.Equal(t, 1, c.Size())

	c.Delete("a")
	_, found = c.Get("a")
	assert.False(t, found)
}

func TestLRUCacheEvictsOldest(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a") // refresh a, making b the eviction candidate
	c.Set("c", 3)

	_, foundA := c.Get("a")
	_, foundB := c.Get("b")
	_, foundC := c.Get("c")
	assert.True(t, foundA)
	assert.False(t, foundB)
	assert.True(t, foundC)
}

func TestLRUCacheTTL(t *testing.T) {
	c := NewLRUCache[int](10, 10*time.Millisecond)

	c.Set("a", 1)
	time.Sleep(20 * time.Millisecond)

	_, found := c.Get("a")
	assert.False(t, found)

	c.Set("b", 2)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, c.CleanExpired())
	assert.Zero(t, c.Size())
}

func TestLRUCachePurge(t *testing.T) {
	c := NewLRUCache[int](10, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)

	c.Purge()

	assert.Zero(t, c.Size())
	_, found := c.Get("a")
	assert.False(t, found)
}

func TestManagerCleansRegisteredCaches(t *testing.T) {
	c := NewLRUCache[int](10, time.Millisecond)
	c.Set("a", 1)

	m := NewManager()
	m.Register(c)
	m.StartCleanup(5 * time.Millisecond)
	defer m.Stop()

	assert.Eventually(t, func() bool { return c.Size() == 0 },
		time.Second, 5*time.Millisecond)
}
