// Package asset tracks the audio a conversation already knows about.
//
// Every download, trim, transcription or separation registers its output
// here, so a later request like "now make sheet music from it" can find
// the right file without the user repeating the link. The cache is owned
// by exactly one session and is touched sequentially, so it carries no
// lock of its own.
package asset

import "container/list"

// Asset is one known audio artifact.
type Asset struct {
	SourceRef   string // remote origin (video link); empty for local uploads
	LocalPath   string // resolved file on disk
	DisplayName string
}

// Cache is a bounded LRU of known assets plus a most-recent pointer.
//
// The most-recent pointer is deliberately independent of eviction: it
// always holds the last artifact produced in temporal order, even if the
// keyed entry for it has since been evicted.
type Cache struct {
	capacity int
	order    *list.List // front = most recently used, values are *Asset
	byKey    map[string]*list.Element
	recent   *Asset
}

// DefaultCapacity bounds a conversation's asset recall when the caller
// passes a non-positive capacity.
const DefaultCapacity = 32

// NewCache creates a cache holding at most capacity keyed assets.
func NewCache(capacity int) *Cache {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &Cache{
		capacity: capacity,
		order:    list.New(),
		byKey:    make(map[string]*list.Element),
	}
}

// key picks the mapping key for an asset: the source reference when there
// is one, else the local path (uploads have no remote origin but must
// still appear in the known-assets inventory).
func key(a Asset) string {
	if a.SourceRef != "" {
		return a.SourceRef
	}
	return a.LocalPath
}

// Register records an asset and makes it the most recent artifact.
// An existing entry under the same key is replaced in place.
func (c *Cache) Register(a Asset) {
	stored := a
	c.recent = &stored

	k := key(a)
	if k == "" {
		return
	}

	if el, ok := c.byKey[k]; ok {
		el.Value = &stored
		c.order.MoveToFront(el)
		return
	}

	c.byKey[k] = c.order.PushFront(&stored)

	for c.order.Len() > c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.byKey, key(*oldest.Value.(*Asset)))
	}
}

// Lookup resolves a source reference to a known asset, refreshing its
// recency in the LRU order.
func (c *Cache) Lookup(ref string) (Asset, bool) {
	if ref == "" {
		return Asset{}, false
	}
	el, ok := c.byKey[ref]
	if !ok {
		return Asset{}, false
	}
	c.order.MoveToFront(el)
	return *el.Value.(*Asset), true
}

// Recent returns the last successfully produced artifact, if any.
func (c *Cache) Recent() (Asset, bool) {
	if c.recent == nil {
		return Asset{}, false
	}
	return *c.recent, true
}

// Assets lists the keyed inventory, most recently used first. This is
// what the oracle sees as the known-audio list.
func (c *Cache) Assets() []Asset {
	out := make([]Asset, 0, c.order.Len())
	for el := c.order.Front(); el != nil; el = el.Next() {
		out = append(out, *el.Value.(*Asset))
	}
	return out
}

// Len reports the number of keyed entries.
func (c *Cache) Len() int {
	return c.order.Len()
}
