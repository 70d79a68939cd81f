package opendoc

import (
	"container/list"
	"sync"
)

// imageInfo is the detected metadata of an image source.
type imageInfo struct {
	width  int
	height int
	mime   string
}

// ImageCache is an LRU cache of detected image metadata keyed by source
// identity. It is safe for concurrent use.
type ImageCache struct {
	mu      sync.Mutex
	entries map[string]*list.Element
	lru     *list.List
	maxSize int
}

type imageCacheEntry struct {
	key  string
	info imageInfo
}

// NewImageCache creates a cache holding at most maxSize entries. A
// maxSize of 0 disables caching.
func NewImageCache(maxSize int) *ImageCache {
	return &ImageCache{
		entries: make(map[string]*list.Element),
		lru:     list.New(),
		maxSize: maxSize,
	}
}

var (
	imageCache     *ImageCache
	imageCacheOnce sync.Once
)

// DefaultImageCache returns the process-wide metadata cache shared by all
// images.
func DefaultImageCache() *ImageCache {
	imageCacheOnce.Do(func() {
		imageCache = NewImageCache(GetGlobalConfig().ImageCacheSize)
	})
	return imageCache
}

func (c *ImageCache) get(key string) (imageInfo, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		return imageInfo{}, false
	}
	c.lru.MoveToFront(elem)
	return elem.Value.(*imageCacheEntry).info, true
}

func (c *ImageCache) set(key string, info imageInfo) {
	if c.maxSize <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		elem.Value.(*imageCacheEntry).info = info
		c.lru.MoveToFront(elem)
		return
	}

	// Evict least recently used
	if c.lru.Len() >= c.maxSize {
		if oldest := c.lru.Back(); oldest != nil {
			delete(c.entries, oldest.Value.(*imageCacheEntry).key)
			c.lru.Remove(oldest)
		}
	}

	c.entries[key] = c.lru.PushFront(&imageCacheEntry{key: key, info: info})
}

// Clear removes every entry.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*list.Element)
	c.lru = list.New()
}

// Size returns the number of cached entries.
func (c *ImageCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
