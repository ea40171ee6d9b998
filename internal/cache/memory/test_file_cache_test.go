package memory

import (
	"testing"
	"time"
)

func TestFileCacheStampInvalidates(t *testing.T) {
	c := NewFileCache(4, 0)
	s1 := Stamp{Size: 3, ModTime: time.Unix(100, 0)}
	c.Put("a.png", s1, []byte("abc"))

	got, ok := c.Get("a.png", s1)
	if !ok || string(got) != "abc" {
		t.Fatalf("expected hit, got %q ok=%v", got, ok)
	}
	if _, ok := c.Get("a.png", Stamp{Size: 3, ModTime: time.Unix(200, 0)}); ok {
		t.Fatalf("expected miss after modification")
	}
	if _, ok := c.Get("a.png", s1); ok {
		t.Fatalf("stale entry should have been dropped")
	}
	st := c.Stats()
	if st.Hits != 1 || st.Misses != 2 {
		t.Fatalf("unexpected stats: %+v", st)
	}
}

func TestFileCacheEvictsByBytes(t *testing.T) {
	c := NewFileCache(10, 5)
	s := Stamp{Size: 3}
	c.Put("a", s, []byte("aaa"))
	c.Put("b", s, []byte("bbb"))
	if _, ok := c.Get("a", s); ok {
		t.Fatalf("oldest entry should have been evicted")
	}
	if _, ok := c.Get("b", s); !ok {
		t.Fatalf("newest entry should be cached")
	}
	c.Put("huge", Stamp{Size: 6}, []byte("123456"))
	if _, ok := c.Get("huge", Stamp{Size: 6}); ok {
		t.Fatalf("entries over the byte budget are not cached")
	}
}

func TestFileCacheEvictsByCount(t *testing.T) {
	c := NewFileCache(1, 0)
	s := Stamp{}
	c.Put("a", s, []byte("1"))
	c.Put("b", s, []byte("2"))
	if c.Stats().Entries != 1 {
		t.Fatalf("expected one entry, got %d", c.Stats().Entries)
	}
	c.Invalidate("b")
	if c.Stats().Entries != 0 {
		t.Fatalf("expected empty cache")
	}
}
