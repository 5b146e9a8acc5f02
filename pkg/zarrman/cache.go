package zarrman

import (
	"container/list"
	"sync"
	"time"
)

// manifestCache bounds cached manifests by two independent criteria
// operating together: total byte footprint, and per-entry idle TTL.
// hashicorp/golang-lru (used elsewhere in this module for the simpler
// per-count S3 client pool) has no notion of either byte-weighted
// eviction or idle expiry in the version pinned by the example pack, so
// this is hand-rolled on container/list the way a plain LRU is commonly
// built in Go when a size library doesn't fit.
type manifestCache struct {
	mu         sync.Mutex
	maxBytes   int64
	idleExpiry time.Duration
	totalBytes int64
	order      *list.List // front = most recently used
	index      map[ManifestPath]*list.Element
}

type cacheNode struct {
	key        ManifestPath
	manifest   *Manifest
	size       int64
	lastAccess time.Time
}

func newManifestCache(maxBytes int64, idleExpiry time.Duration) *manifestCache {
	return &manifestCache{
		maxBytes:   maxBytes,
		idleExpiry: idleExpiry,
		order:      list.New(),
		index:      make(map[ManifestPath]*list.Element),
	}
}

func (c *manifestCache) get(key ManifestPath) (*Manifest, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.index[key]
	if !ok {
		return nil, false
	}
	node := el.Value.(*cacheNode)
	if time.Since(node.lastAccess) > c.idleExpiry {
		c.removeElement(el)
		return nil, false
	}
	node.lastAccess = time.Now()
	c.order.MoveToFront(el)
	return node.manifest, true
}

// insert adds or replaces a cached manifest and evicts LRU entries until
// the byte bound holds.
func (c *manifestCache) insert(key ManifestPath, m *Manifest, size int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.index[key]; ok {
		c.removeElement(el)
	}
	node := &cacheNode{key: key, manifest: m, size: size, lastAccess: time.Now()}
	el := c.order.PushFront(node)
	c.index[key] = el
	c.totalBytes += size

	for c.totalBytes > c.maxBytes {
		back := c.order.Back()
		if back == nil {
			break
		}
		c.removeElement(back)
	}
}

func (c *manifestCache) removeElement(el *list.Element) {
	node := el.Value.(*cacheNode)
	c.order.Remove(el)
	delete(c.index, node.key)
	c.totalBytes -= node.size
}

// purgeIdle removes every entry whose idle TTL has expired and returns
// how many were removed.
func (c *manifestCache) purgeIdle() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	purged := 0
	for el := c.order.Back(); el != nil; {
		prev := el.Prev()
		node := el.Value.(*cacheNode)
		if now.Sub(node.lastAccess) > c.idleExpiry {
			c.removeElement(el)
			purged++
		}
		el = prev
	}
	return purged
}

// stateSnapshot returns (entry count, total bytes) for the housekeeping
// log line.
func (c *manifestCache) stateSnapshot() (int, int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.index), c.totalBytes
}
