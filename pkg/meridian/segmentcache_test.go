package meridian

import "testing"

func TestSegmentCacheSplitsAndCachesOnMiss(t *testing.T) {
	c := newSegmentCache(10)
	segs := c.get("/users/42")
	want := []string{"users", "42"}
	if len(segs) != len(want) || segs[0] != want[0] || segs[1] != want[1] {
		t.Fatalf("got %v, want %v", segs, want)
	}
	if len(c.entries) != 1 {
		t.Fatalf("expected the split result to be cached, got %d entries", len(c.entries))
	}
}

func TestSegmentCacheClearsEntirelyAtBound(t *testing.T) {
	c := newSegmentCache(2)
	c.get("/a")
	c.get("/b")
	if len(c.entries) != 2 {
		t.Fatalf("expected 2 entries before the bound is hit, got %d", len(c.entries))
	}
	c.get("/c")
	if len(c.entries) != 1 {
		t.Fatalf("expected the cache to reset to a single fresh entry, got %d", len(c.entries))
	}
	if _, ok := c.entries["/a"]; ok {
		t.Error("expected the old entry for /a to be gone after the reset")
	}
}

func TestSegmentCacheNonPositiveSizeDefaults(t *testing.T) {
	c := newSegmentCache(0)
	if c.maxSize != 1000 {
		t.Errorf("got maxSize %d, want default of 1000", c.maxSize)
	}
}

func TestSegmentCacheClearEmptiesEntries(t *testing.T) {
	c := newSegmentCache(10)
	c.get("/a")
	c.clear()
	if len(c.entries) != 0 {
		t.Errorf("expected clear to empty the cache, got %d entries", len(c.entries))
	}
}
