package memory

import (
	"container/list"
	"sync"
	"sync/atomic"
	"time"
)

// Stamp identifies one version of a file on disk.
type Stamp struct {
	Size    int64
	ModTime time.Time
}

type entry struct {
	path  string
	stamp Stamp
	data  []byte
}

// FileCache is a threadsafe LRU of file contents bounded by entry count and
// total bytes. Entries are only served while the caller's stamp still matches
// the one recorded at Put time.
type FileCache struct {
	mu         sync.Mutex
	ll         *list.List
	items      map[string]*list.Element
	maxEntries int
	maxBytes   int
	totalBytes int

	hits   atomic.Uint64
	misses atomic.Uint64
}

type Stats struct {
	Hits       uint64
	Misses     uint64
	Entries    int
	TotalBytes int
}

func NewFileCache(maxEntries int, maxBytes int) *FileCache {
	if maxEntries <= 0 {
		maxEntries = 1
	}
	return &FileCache{
		ll:         list.New(),
		items:      make(map[string]*list.Element),
		maxEntries: maxEntries,
		maxBytes:   maxBytes,
	}
}

func (c *FileCache) Get(path string, stamp Stamp) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	ele, ok := c.items[path]
	if !ok {
		c.misses.Add(1)
		return nil, false
	}
	ent := ele.Value.(*entry)
	if ent.stamp.Size != stamp.Size || !ent.stamp.ModTime.Equal(stamp.ModTime) {
		c.removeElement(ele)
		c.misses.Add(1)
		return nil, false
	}
	c.ll.MoveToFront(ele)
	c.hits.Add(1)
	return ent.data, true
}

func (c *FileCache) Put(path string, stamp Stamp, data []byte) {
	if c == nil {
		return
	}
	if c.maxBytes > 0 && len(data) > c.maxBytes {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if ele, ok := c.items[path]; ok {
		ent := ele.Value.(*entry)
		c.totalBytes -= len(ent.data)
		ent.data = data
		ent.stamp = stamp
		c.totalBytes += len(data)
		c.ll.MoveToFront(ele)
		c.evictLocked()
		return
	}

	ele := c.ll.PushFront(&entry{path: path, stamp: stamp, data: data})
	c.items[path] = ele
	c.totalBytes += len(data)
	c.evictLocked()
}

func (c *FileCache) Invalidate(path string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if ele, ok := c.items[path]; ok {
		c.removeElement(ele)
	}
}

func (c *FileCache) Clear() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ll = list.New()
	c.items = make(map[string]*list.Element)
	c.totalBytes = 0
}

func (c *FileCache) Stats() Stats {
	if c == nil {
		return Stats{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Hits:       c.hits.Load(),
		Misses:     c.misses.Load(),
		Entries:    c.ll.Len(),
		TotalBytes: c.totalBytes,
	}
}

func (c *FileCache) evictLocked() {
	for c.ll.Len() > 0 {
		if c.ll.Len() <= c.maxEntries && (c.maxBytes <= 0 || c.totalBytes <= c.maxBytes) {
			return
		}
		c.removeElement(c.ll.Back())
	}
}

func (c *FileCache) removeElement(ele *list.Element) {
	if ele == nil {
		return
	}
	c.ll.Remove(ele)
	ent := ele.Value.(*entry)
	delete(c.items, ent.path)
	c.totalBytes -= len(ent.data)
	if c.totalBytes < 0 {
		c.totalBytes = 0
	}
}
