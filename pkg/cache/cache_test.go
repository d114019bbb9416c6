package cache

import (
	"testing"
	"time"
)

func TestSetGet(t *testing.T) {
	c := NewInMemoryCache[string, int](time.Minute)
	c.Set("a", 1, 0)

	v, ok := c.Get("a")
	if !ok || v != 1 {
		t.Fatalf("got %d %v, want 1 true", v, ok)
	}
	if _, ok := c.Get("missing"); ok {
		t.Fatalf("missing key must not be found")
	}
	if c.Size() != 1 {
		t.Fatalf("size got=%d want=1", c.Size())
	}
}

func TestExpiry(t *testing.T) {
	c := NewInMemoryCache[string, string](time.Minute)
	c.Set("k", "v", 10*time.Millisecond)

	if _, ok := c.Get("k"); !ok {
		t.Fatalf("fresh entry must be readable")
	}
	time.Sleep(20 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Fatalf("expired entry must not be returned")
	}
}

func TestDeleteAndClear(t *testing.T) {
	c := NewInMemoryCache[string, int](time.Minute)
	c.Set("a", 1, 0)
	c.Set("b", 2, 0)

	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Fatalf("deleted key must be gone")
	}

	c.Clear()
	if c.Size() != 0 {
		t.Fatalf("size after clear got=%d want=0", c.Size())
	}
}
