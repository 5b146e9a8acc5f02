package zarrman

import (
	"testing"
	"time"
)

func TestManifestCacheInsertAndGet(t *testing.T) {
	c := newManifestCache(1024, time.Hour)
	key := ManifestPath{ZarrID: "a", Checksum: "b"}
	m := &Manifest{}
	c.insert(key, m, 10)

	got, ok := c.get(key)
	if !ok || got != m {
		t.Fatalf("get() = (%v, %v), want the inserted manifest", got, ok)
	}
}

func TestManifestCacheEvictsByByteBound(t *testing.T) {
	c := newManifestCache(15, time.Hour)
	k1 := ManifestPath{ZarrID: "a"}
	k2 := ManifestPath{ZarrID: "b"}
	k3 := ManifestPath{ZarrID: "c"}

	c.insert(k1, &Manifest{}, 10)
	c.insert(k2, &Manifest{}, 10)
	// k1 should be evicted since it is least recently used and the
	// total now exceeds the 15-byte bound.
	if _, ok := c.get(k1); ok {
		t.Errorf("get(k1) found, want evicted")
	}
	if _, ok := c.get(k2); !ok {
		t.Errorf("get(k2) not found, want present")
	}

	c.insert(k3, &Manifest{}, 10)
	if _, ok := c.get(k2); ok {
		t.Errorf("get(k2) found after k3 insert, want evicted")
	}
}

func TestManifestCacheGetRefreshesLRUOrder(t *testing.T) {
	c := newManifestCache(20, time.Hour)
	k1 := ManifestPath{ZarrID: "a"}
	k2 := ManifestPath{ZarrID: "b"}
	c.insert(k1, &Manifest{}, 10)
	c.insert(k2, &Manifest{}, 5)

	// Touching k1 makes it the most recently used, so inserting a third
	// entry that forces an eviction should evict k2 instead.
	c.get(k1)
	k3 := ManifestPath{ZarrID: "c"}
	c.insert(k3, &Manifest{}, 10)

	if _, ok := c.get(k1); !ok {
		t.Errorf("get(k1) not found after refresh, want present")
	}
	if _, ok := c.get(k2); ok {
		t.Errorf("get(k2) found, want evicted")
	}
}

func TestManifestCacheIdleExpiry(t *testing.T) {
	c := newManifestCache(1024, time.Nanosecond)
	key := ManifestPath{ZarrID: "a"}
	c.insert(key, &Manifest{}, 10)
	time.Sleep(time.Millisecond)

	if _, ok := c.get(key); ok {
		t.Errorf("get() found an idle-expired entry")
	}
}

func TestManifestCachePurgeIdle(t *testing.T) {
	c := newManifestCache(1024, time.Nanosecond)
	c.insert(ManifestPath{ZarrID: "a"}, &Manifest{}, 10)
	c.insert(ManifestPath{ZarrID: "b"}, &Manifest{}, 10)
	time.Sleep(time.Millisecond)

	purged := c.purgeIdle()
	if purged != 2 {
		t.Errorf("purgeIdle() = %d, want 2", purged)
	}
	count, bytes := c.stateSnapshot()
	if count != 0 || bytes != 0 {
		t.Errorf("stateSnapshot() = (%d, %d), want (0, 0)", count, bytes)
	}
}
