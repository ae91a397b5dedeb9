package analytics

import (
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLRUCache_BasicGetPut(t *testing.T) {
	c := newLRUCache[float64](3)

	c.put("a", 0.25)
	c.put("b", 0.5)

	v, ok := c.get("a")
	assert.True(t, ok)
	assert.Equal(t, 0.25, v)

	_, ok = c.get("missing")
	assert.False(t, ok)
}

func TestLRUCache_Eviction(t *testing.T) {
	c := newLRUCache[string](2)

	c.put("a", "A")
	c.put("b", "B")
	c.put("c", "C") // evicts "a"

	_, ok := c.get("a")
	assert.False(t, ok, "a should have been evicted")

	v, ok := c.get("b")
	assert.True(t, ok)
	assert.Equal(t, "B", v)

	v, ok = c.get("c")
	assert.True(t, ok)
	assert.Equal(t, "C", v)
}

func TestLRUCache_AccessPromotesEntry(t *testing.T) {
	c := newLRUCache[string](2)

	c.put("a", "A")
	c.put("b", "B")
	c.get("a")
	c.put("c", "C")

	_, ok := c.get("a")
	assert.True(t, ok, "a was accessed recently, should not be evicted")

	_, ok = c.get("b")
	assert.False(t, ok, "b should have been evicted")
}

func TestLRUCache_UpdateExisting(t *testing.T) {
	c := newLRUCache[string](2)

	c.put("a", "A1")
	c.put("a", "A2")

	v, ok := c.get("a")
	assert.True(t, ok)
	assert.Equal(t, "A2", v)
	assert.Equal(t, 1, c.size())
}

func TestLRUCache_DisabledWhenSizeZero(t *testing.T) {
	c := newLRUCache[string](0)
	c.put("a", "A")

	_, ok := c.get("a")
	assert.False(t, ok)
	assert.Zero(t, c.size())
}

func TestLRUCache_Concurrent(t *testing.T) {
	c := newLRUCache[int](16)
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				key := strconv.Itoa((w*100 + i) % 40)
				c.put(key, i)
				c.get(key)
			}
		}(w)
	}
	wg.Wait()
	assert.LessOrEqual(t, c.size(), 16)
}
