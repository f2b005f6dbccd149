package cache

import (
	"testing"
	"time"
)

func TestGetSet(t *testing.T) {
	c := New[string](time.Minute, 0)
	defer c.Close()

	if _, ok := c.Get("missing"); ok {
		t.Error("expected miss for unknown key")
	}

	c.Set("k", "v")
	if v, ok := c.Get("k"); !ok || v != "v" {
		t.Errorf("expected hit with v, got %q %v", v, ok)
	}
}

func TestExpiry(t *testing.T) {
	c := New[int](time.Minute, 0)
	defer c.Close()

	now := time.Unix(1000, 0)
	c.now = func() time.Time { return now }

	c.Set("a", 1)
	c.Set("b", 2)

	now = now.Add(2 * time.Minute)
	if _, ok := c.Get("a"); ok {
		t.Error("expected expired entry to miss")
	}

	c.cleanup()
	if len(c.items) != 0 {
		t.Errorf("expected sweep to drop expired entries, %d left", len(c.items))
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	c := New[bool](time.Minute, time.Millisecond)
	c.Close()
	c.Close()
}
