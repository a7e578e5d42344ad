package cache

import (
	"context"
	"time"
)

// Service stores response bodies under a key and indexes them by tag.
// Get returns nil data and a nil error on a miss.
type Service interface {
	Set(ctx context.Context, key string, data []byte, tags []string, duration time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)
	Invalidate(ctx context.Context, tags ...string) error
}

// Entry is a cached response as stored by the document backends.
type Entry struct {
	PK        string    `dynamodbav:"pk" bson:"_id"`
	SK        string    `dynamodbav:"sk" bson:"-"`
	Data      []byte    `dynamodbav:"data" bson:"data"`
	Tags      []string  `dynamodbav:"tags,omitempty" bson:"tags,omitempty"`
	TTL       int64     `dynamodbav:"ttl" bson:"ttl"`
	CreatedAt int64     `dynamodbav:"createdAt" bson:"createdAt"`
	ExpiresAt time.Time `dynamodbav:"-" bson:"expiresAt"`
}

func (Entry) GetCollectionName() string {
	return "cache_entries"
}

func (e Entry) IsExpired() bool {
	return time.Now().Unix() > e.TTL
}

// TagEntry links a tag to one cache key in the DynamoDB inverted index.
type TagEntry struct {
	PK        string `dynamodbav:"pk"`
	SK        string `dynamodbav:"sk"`
	TTL       int64  `dynamodbav:"ttl"`
	CreatedAt int64  `dynamodbav:"createdAt"`
}

const (
	CachePartitionPrefix = "CACHE#"
	TagPartitionPrefix   = "TAG#"
	CacheSortKey         = "DATA"
)

// Noop caches nothing.
type Noop struct{}

func (Noop) Set(context.Context, string, []byte, []string, time.Duration) error { return nil }
func (Noop) Get(context.Context, string) ([]byte, error)                        { return nil, nil }
func (Noop) Invalidate(context.Context, ...string) error                        { return nil }
