package sppfcpg

import (
	"container/list"
	"sync"
)

// nodeAtCacheLimit is the advisory bound on find_nodes_at cache entries
// (spec §4.8, "bounded (advisory size ≈1,000 entries)").
const nodeAtCacheLimit = 1000

// nodeAtCache is a bounded, least-recently-used cache of find_nodes_at
// results keyed by query offset. Guarded by a single sync.Mutex, the same
// guard-the-slice idiom the teacher uses for arrayBasedMultiMap (there an
// RWMutex, here a plain Mutex: every lookup that hits also mutates the LRU
// order, so a read lock would buy nothing).
type nodeAtCache struct {
	mu       sync.Mutex
	entries  map[uint32]*list.Element
	order    *list.List // front = most recently used
	limit    int
}

type nodeAtCacheEntry struct {
	key    uint32
	result []Offset
}

func newNodeAtCache() *nodeAtCache {
	return &nodeAtCache{
		entries: make(map[uint32]*list.Element),
		order:   list.New(),
		limit:   nodeAtCacheLimit,
	}
}

func (c *nodeAtCache) get(point uint32) ([]Offset, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.entries[point]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*nodeAtCacheEntry).result, true
}

func (c *nodeAtCache) put(point uint32, result []Offset) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.entries[point]; ok {
		el.Value.(*nodeAtCacheEntry).result = result
		c.order.MoveToFront(el)
		return
	}
	el := c.order.PushFront(&nodeAtCacheEntry{key: point, result: result})
	c.entries[point] = el
	for len(c.entries) > c.limit {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*nodeAtCacheEntry).key)
	}
}

// clear empties the cache. Called at Graph.Close (spec §4.8, "cleared at
// dispose").
func (c *nodeAtCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[uint32]*list.Element)
	c.order.Init()
}
