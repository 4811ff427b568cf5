package cache

import (
	"strconv"
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) Now() time.Time { return f.t }

func newTestCache(ttl time.Duration) (*Cache, *fakeClock) {
	clk := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := New(ttl)
	c.now = clk.Now
	return c, clk
}

func TestCache_SetGetExpire(t *testing.T) {
	c, clk := newTestCache(time.Minute)

	c.Set("a", 1)
	if v, ok := c.Get("a"); !ok || v.(int) != 1 {
		t.Fatalf("got %v, %v", v, ok)
	}

	clk.t = clk.t.Add(time.Minute)
	if _, ok := c.Get("a"); ok {
		t.Fatal("entry should have expired")
	}
	if c.Len() != 0 {
		t.Fatalf("expired entry should be removed, len=%d", c.Len())
	}
}

func TestCache_DeletePrefix(t *testing.T) {
	c, _ := newTestCache(time.Minute)

	c.Set("posts:list:1", 1)
	c.Set("posts:slug:a", 2)
	c.Set("other", 3)

	c.DeletePrefix("posts:")

	if _, ok := c.Get("posts:list:1"); ok {
		t.Fatal("list key should be gone")
	}
	if _, ok := c.Get("posts:slug:a"); ok {
		t.Fatal("slug key should be gone")
	}
	if _, ok := c.Get("other"); !ok {
		t.Fatal("unrelated key should stay")
	}
}

func TestCache_SetIfGenerationRefusesStaleFill(t *testing.T) {
	c, _ := newTestCache(time.Minute)

	// a reader loads data, then a writer invalidates before the fill
	gen := c.Generation()
	c.DeletePrefix("posts:")

	if c.SetIfGeneration("posts:slug:a", "stale", gen) {
		t.Fatal("fill after invalidation should be refused")
	}
	if _, ok := c.Get("posts:slug:a"); ok {
		t.Fatal("stale value must not be cached")
	}

	gen = c.Generation()
	if !c.SetIfGeneration("posts:slug:a", "fresh", gen) {
		t.Fatal("fill with the current generation should be stored")
	}
	if v, ok := c.Get("posts:slug:a"); !ok || v.(string) != "fresh" {
		t.Fatalf("got %v, %v", v, ok)
	}
}

func TestCache_SetSweepsExpired(t *testing.T) {
	c, clk := newTestCache(time.Second)

	for i := 0; i < sweepAt; i++ {
		c.Set("k"+strconv.Itoa(i), i)
	}

	clk.t = clk.t.Add(2 * time.Second)
	c.Set("fresh", true)

	if c.Len() != 1 {
		t.Fatalf("len = %d, want 1", c.Len())
	}
}
