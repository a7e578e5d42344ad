package client

import (
	"sync"
	"time"
)

type TagType string

const (
	TagBlogs    TagType = "Blogs"
	TagComments TagType = "Comments"
)

// Tag names cached data. A tag without an ID stands for the whole type.
type Tag struct {
	Type TagType
	ID   string
}

func TypeTag(t TagType) Tag {
	return Tag{Type: t}
}

func IDTag(t TagType, id string) Tag {
	return Tag{Type: t, ID: id}
}

type cacheEntry struct {
	data      []byte
	tags      []Tag
	expiresAt time.Time
}

// QueryCache holds query results by key together with the tags they provide.
type QueryCache struct {
	mu         sync.Mutex
	entries    map[string]cacheEntry
	ttl        time.Duration
	generation uint64
	now        func() time.Time
}

func NewQueryCache(ttl time.Duration) *QueryCache {
	return &QueryCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (q *QueryCache) Get(key string) ([]byte, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	entry, ok := q.entries[key]
	if !ok {
		return nil, false
	}
	if !q.now().Before(entry.expiresAt) {
		delete(q.entries, key)
		return nil, false
	}
	return entry.data, true
}

// Generation changes on every invalidation and reset.
func (q *QueryCache) Generation() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.generation
}

// Set stores data unless the cache was invalidated after generation was
// read, so a response fetched before a mutation is not cached after it.
func (q *QueryCache) Set(key string, data []byte, tags []Tag, generation uint64) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if generation != q.generation {
		return false
	}
	q.entries[key] = cacheEntry{
		data:      data,
		tags:      tags,
		expiresAt: q.now().Add(q.ttl),
	}
	return true
}

// Invalidate evicts entries providing any of tags. A type tag evicts every
// entry providing a tag of that type; an id tag evicts entries providing
// exactly that tag.
func (q *QueryCache) Invalidate(tags ...Tag) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.generation++
	evicted := 0
	for key, entry := range q.entries {
		if providesAny(entry.tags, tags) {
			delete(q.entries, key)
			evicted++
		}
	}
	return evicted
}

func (q *QueryCache) Reset() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.generation++
	q.entries = make(map[string]cacheEntry)
}

func (q *QueryCache) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

func providesAny(provided, invalidated []Tag) bool {
	for _, inv := range invalidated {
		for _, p := range provided {
			if p.Type != inv.Type {
				continue
			}
			if inv.ID == "" || p.ID == inv.ID {
				return true
			}
		}
	}
	return false
}
