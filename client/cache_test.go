package client

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestQueryCache_Invalidate(t *testing.T) {
	tests := []struct {
		name       string
		invalidate []Tag
		remaining  []string
	}{
		{
			name:       "type tag evicts every entry of that type",
			invalidate: []Tag{TypeTag(TagBlogs)},
			remaining:  []string{"related", "total"},
		},
		{
			name:       "id tag evicts only exact matches",
			invalidate: []Tag{IDTag(TagBlogs, "p1")},
			remaining:  []string{"list", "detail-p2", "related", "total"},
		},
		{
			name:       "comment tag evicts the detail providing it",
			invalidate: []Tag{IDTag(TagComments, "p2")},
			remaining:  []string{"list", "detail-p1", "related", "total"},
		},
		{
			name:       "unknown id evicts nothing",
			invalidate: []Tag{IDTag(TagBlogs, "p9")},
			remaining:  []string{"list", "detail-p1", "detail-p2", "related", "total"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := NewQueryCache(time.Minute)
			gen := q.Generation()
			q.Set("list", []byte("[]"), []Tag{TypeTag(TagBlogs)}, gen)
			q.Set("detail-p1", []byte("{}"), []Tag{IDTag(TagBlogs, "p1"), IDTag(TagComments, "p1")}, gen)
			q.Set("detail-p2", []byte("{}"), []Tag{IDTag(TagBlogs, "p2"), IDTag(TagComments, "p2")}, gen)
			q.Set("related", []byte("[]"), nil, gen)
			q.Set("total", []byte("{}"), nil, gen)

			q.Invalidate(tt.invalidate...)

			assert.Equal(t, len(tt.remaining), q.Len())
			for _, key := range tt.remaining {
				_, ok := q.Get(key)
				assert.True(t, ok, key)
			}
		})
	}
}

func TestQueryCache_Expiry(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	q := NewQueryCache(time.Minute)
	q.now = func() time.Time { return now }

	q.Set("list", []byte("[]"), nil, q.Generation())
	_, ok := q.Get("list")
	assert.True(t, ok)

	now = now.Add(time.Minute)
	_, ok = q.Get("list")
	assert.False(t, ok)
	assert.Equal(t, 0, q.Len())
}

func TestQueryCache_StaleGenerationIsDropped(t *testing.T) {
	q := NewQueryCache(time.Minute)
	gen := q.Generation()

	q.Invalidate(TypeTag(TagBlogs))
	assert.False(t, q.Set("list", []byte("[]"), []Tag{TypeTag(TagBlogs)}, gen))

	q.Reset()
	assert.True(t, q.Set("list", []byte("[]"), []Tag{TypeTag(TagBlogs)}, q.Generation()))
	assert.Equal(t, 1, q.Len())
}
