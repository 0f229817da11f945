package cache

import (
	"container/list"
	"context"
	"sync"
)

// DefaultCapacity bounds a MemoryCache created with a non-positive capacity.
const DefaultCapacity = 10000

// memoryItem is the list payload for one cached user.
type memoryItem struct {
	userID string
	entry  Entry
}

// MemoryCache is a bounded LRU RoleCache safe for concurrent use.
type MemoryCache struct {
	mu       sync.Mutex
	capacity int
	order    *list.List
	items    map[string]*list.Element
}

// NewMemoryCache creates an LRU cache holding at most capacity users.
func NewMemoryCache(capacity int) *MemoryCache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &MemoryCache{
		capacity: capacity,
		order:    list.New(),
		items:    make(map[string]*list.Element),
	}
}

// Get returns the entry for userID and marks it recently used.
func (c *MemoryCache) Get(_ context.Context, userID string) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[userID]
	if !ok {
		return Entry{}, false
	}
	c.order.MoveToFront(elem)
	return elem.Value.(*memoryItem).entry, true
}

// Set stores entry for userID, evicting the least recently used user when full.
func (c *MemoryCache) Set(_ context.Context, userID string, entry Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[userID]; ok {
		elem.Value.(*memoryItem).entry = entry
		c.order.MoveToFront(elem)
		return
	}
	c.items[userID] = c.order.PushFront(&memoryItem{userID: userID, entry: entry})
	for c.order.Len() > c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.items, oldest.Value.(*memoryItem).userID)
	}
}

// Clear drops every entry.
func (c *MemoryCache) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order.Init()
	c.items = make(map[string]*list.Element)
	return nil
}

// Len returns the number of cached users.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
