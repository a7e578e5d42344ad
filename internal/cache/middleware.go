package cache

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/klass-lk/blogboot/internal/observability"
)

// KeyGenerator derives the cache key for a request.
type KeyGenerator func(c *gin.Context) string

// TagGenerator derives the tags a cached response is filed under.
type TagGenerator func(c *gin.Context) []string

type cacheWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *cacheWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *cacheWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// DefaultKeyGenerator hashes the request URL including the query string.
func DefaultKeyGenerator(c *gin.Context) string {
	hash := sha256.Sum256([]byte(c.Request.URL.String()))
	return hex.EncodeToString(hash[:])
}

// Middleware serves cached GET responses and stores 200 responses under
// the tags produced by tagGen. It sets X-Cache to HIT or MISS.
func Middleware(service Service, duration time.Duration, tagGen TagGenerator, keyGen KeyGenerator) gin.HandlerFunc {
	if keyGen == nil {
		keyGen = DefaultKeyGenerator
	}

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		key := keyGen(c)

		cached, err := service.Get(c.Request.Context(), key)
		if err != nil {
			observability.CacheLookups.WithLabelValues("error").Inc()
			slog.WarnContext(c.Request.Context(), "cache lookup failed", "error", err)
		}
		if err == nil && cached != nil {
			observability.CacheLookups.WithLabelValues("hit").Inc()
			c.Header("X-Cache", "HIT")
			c.Data(http.StatusOK, "application/json; charset=utf-8", cached)
			c.Abort()
			return
		}

		if err == nil {
			observability.CacheLookups.WithLabelValues("miss").Inc()
		}
		c.Header("X-Cache", "MISS")
		writer := &cacheWriter{
			ResponseWriter: c.Writer,
			body:           &bytes.Buffer{},
		}
		c.Writer = writer

		c.Next()

		if c.Writer.Status() != http.StatusOK {
			return
		}
		tags := []string{}
		if tagGen != nil {
			tags = tagGen(c)
		}
		// detached so a cancelled client does not drop the write
		ctx := context.WithoutCancel(c.Request.Context())
		if err := service.Set(ctx, key, writer.body.Bytes(), tags, duration); err != nil {
			slog.WarnContext(ctx, "cache store failed", "error", err)
		}
	}
}

// Invalidate drops every entry filed under tags and logs failures. A
// failed invalidation never fails the request that triggered it.
func Invalidate(ctx context.Context, service Service, tags ...string) {
	for _, tag := range tags {
		kind := "collection"
		if tag != TagPosts {
			kind = "document"
		}
		observability.CacheInvalidations.WithLabelValues(kind).Inc()
	}
	if err := service.Invalidate(ctx, tags...); err != nil {
		slog.ErrorContext(ctx, "cache invalidation failed", "tags", tags, "error", err)
	}
}
