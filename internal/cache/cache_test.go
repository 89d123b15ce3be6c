package cache

import (
	"testing"
	"time"
)

type profile struct {
	ID   string
	Name string
}

func TestCacheRoundTrip(t *testing.T) {
	c := New[profile](time.Minute)

	if _, ok := c.Get("u1"); ok {
		t.Error("empty cache should miss")
	}

	c.Set("u1", profile{ID: "u1", Name: "dana"})
	got, ok := c.Get("u1")
	if !ok || got.Name != "dana" {
		t.Errorf("got = %+v, ok = %v", got, ok)
	}
	if c.Size() != 1 {
		t.Errorf("size = %d", c.Size())
	}

	c.Delete("u1")
	if _, ok := c.Get("u1"); ok {
		t.Error("deleted key should miss")
	}
}

func TestCacheExpiry(t *testing.T) {
	c := New[int](10 * time.Millisecond)
	c.Set("k", 42)

	time.Sleep(30 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Error("expired entry should miss")
	}
}
