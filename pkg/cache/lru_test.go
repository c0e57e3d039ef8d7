package cache_test

import (
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/csstree/pkg/cache"
)

func TestLRU_GetPut(t *testing.T) {
	t.Parallel()

	c := cache.NewLRU[string, int](4)

	_, ok := c.Get("a")
	assert.False(t, ok)

	c.Put("a", 1)

	got, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, got)

	c.Put("a", 2)

	got, _ = c.Get("a")
	assert.Equal(t, 2, got)
	assert.Equal(t, 1, c.Len())
}

func TestLRU_Eviction(t *testing.T) {
	t.Parallel()

	c := cache.NewLRU[int, string](2)

	c.Put(1, "one")
	c.Put(2, "two")

	// Touch 1 so 2 becomes the least recently used.
	_, _ = c.Get(1)

	c.Put(3, "three")

	_, ok := c.Get(2)
	assert.False(t, ok)

	_, ok = c.Get(1)
	assert.True(t, ok)

	_, ok = c.Get(3)
	assert.True(t, ok)

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Evictions)
	assert.Equal(t, 2, stats.Entries)
	assert.Equal(t, 2, stats.Capacity)
}

func TestLRU_GetOrCompute(t *testing.T) {
	t.Parallel()

	c := cache.NewLRU[string, int](0)
	calls := 0

	compute := func() int {
		calls++

		return 42
	}

	assert.Equal(t, 42, c.GetOrCompute("k", compute))
	assert.Equal(t, 42, c.GetOrCompute("k", compute))
	assert.Equal(t, 1, calls)

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.InDelta(t, 0.5, stats.HitRate(), 1e-9)
	assert.Equal(t, cache.DefaultLRUSize, stats.Capacity)
}

func TestLRU_Clear(t *testing.T) {
	t.Parallel()

	c := cache.NewLRU[string, int](8)
	c.Put("a", 1)
	c.Clear()

	assert.Equal(t, 0, c.Len())

	_, ok := c.Get("a")
	assert.False(t, ok)
	assert.InDelta(t, 0.0, cache.Stats{}.HitRate(), 1e-9)
}

func TestLRU_Concurrent(t *testing.T) {
	t.Parallel()

	c := cache.NewLRU[string, int](16)

	var wg sync.WaitGroup

	for worker := range 8 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for idx := range 100 {
				key := strconv.Itoa((worker + idx) % 32)
				c.GetOrCompute(key, func() int { return idx })
			}
		}()
	}

	wg.Wait()

	assert.LessOrEqual(t, c.Len(), 16)
}
