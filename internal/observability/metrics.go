package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts requests by method, route and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blogboot_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status"})

	// HTTPRequestDuration records request latency by method and route.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "blogboot_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	// CacheLookups counts response cache lookups by result (hit, miss, error).
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blogboot_cache_lookups_total",
		Help: "Total response cache lookups by result",
	}, []string{"result"})

	// CacheInvalidations counts invalidated tags.
	CacheInvalidations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blogboot_cache_invalidations_total",
		Help: "Total cache tag invalidations",
	}, []string{"tag_kind"})

	// RateLimitedTotal counts requests rejected by the rate limiter.
	RateLimitedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blogboot_rate_limited_total",
		Help: "Total requests rejected by the rate limiter",
	}, []string{"route"})

	// CascadeDeletedComments counts comments removed with their post.
	CascadeDeletedComments = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blogboot_cascade_deleted_comments_total",
		Help: "Total comments deleted together with their post",
	})
)
