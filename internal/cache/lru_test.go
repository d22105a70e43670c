package cache

import (
	"testing"
	"time"
)

func TestLRUCache(t *testing.T) {
	t.Run("get and set", func(t *testing.T) {
		c := NewLRUCache[int](2, time.Minute)
		c.Set("a", 1)

		got, ok := c.Get("a")
		if !ok || got != 1 {
			t.Errorf("Get(a) = %d, %v; want 1, true", got, ok)
		}
		if _, ok := c.Get("missing"); ok {
			t.Error("Get(missing) reported a hit")
		}
	})

	t.Run("evicts least recently used", func(t *testing.T) {
		c := NewLRUCache[int](2, time.Minute)
		c.Set("a", 1)
		c.Set("b", 2)
		c.Get("a") // touch a so b becomes the eviction candidate
		c.Set("c", 3)

		if _, ok := c.Get("b"); ok {
			t.Error("b survived eviction")
		}
		if _, ok := c.Get("a"); !ok {
			t.Error("a was evicted despite being recently used")
		}
	})

	t.Run("expired entries miss", func(t *testing.T) {
		c := NewLRUCache[int](2, -time.Second)
		c.Set("a", 1)
		if _, ok := c.Get("a"); ok {
			t.Error("expired entry reported a hit")
		}
	})

	t.Run("clear drops everything", func(t *testing.T) {
		c := NewLRUCache[int](4, time.Minute)
		c.Set("a", 1)
		c.Set("b", 2)
		c.Clear()
		if c.Size() != 0 {
			t.Errorf("size after clear = %d, want 0", c.Size())
		}
	})

	t.Run("clean expired", func(t *testing.T) {
		c := NewLRUCache[int](4, -time.Second)
		c.Set("a", 1)
		c.Set("b", 2)
		if cleaned := c.CleanExpired(); cleaned != 2 {
			t.Errorf("CleanExpired() = %d, want 2", cleaned)
		}
	})
}
