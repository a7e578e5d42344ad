// Package client is a typed client for the blog API. Query results are
// cached by tag and evicted when a mutation invalidates one of their tags.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/klass-lk/blogboot/internal/model"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultBaseURL           = "http://localhost:5000/api/"
	DefaultKeepUnusedDataFor = 60 * time.Second
)

type (
	Post                  = model.Post
	PostView              = model.PostView
	PostDetail            = model.PostDetail
	PostPatch             = model.PostPatch
	PostFilter            = model.PostFilter
	CreatePostRequest     = model.CreatePostRequest
	Comment               = model.Comment
	CommentView           = model.CommentView
	CreateCommentRequest  = model.CreateCommentRequest
	UserSummary           = model.UserSummary
	LoginResponse         = model.LoginResponse
	RegisterRequest       = model.RegisterRequest
	TotalCommentsResponse = model.TotalCommentsResponse
)

// APIError is a non-2xx response.
type APIError struct {
	StatusCode int    `json:"-"`
	ErrorCode  string `json:"error_code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("blog api: status %d", e.StatusCode)
	}
	return fmt.Sprintf("blog api: status %d: %s", e.StatusCode, e.Message)
}

type Options struct {
	BaseURL           string
	HTTPClient        *http.Client
	KeepUnusedDataFor time.Duration
}

type Client struct {
	baseURL *url.URL
	http    *http.Client
	cache   *QueryCache
	flight  singleflight.Group
}

// New returns a client that keeps the session cookie between calls.
func New(opts Options) (*Client, error) {
	base := opts.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if httpClient.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, err
		}
		clone := *httpClient
		clone.Jar = jar
		httpClient = &clone
	}

	ttl := opts.KeepUnusedDataFor
	if ttl <= 0 {
		ttl = DefaultKeepUnusedDataFor
	}

	return &Client{
		baseURL: baseURL,
		http:    httpClient,
		cache:   NewQueryCache(ttl),
	}, nil
}

func (c *Client) Cache() *QueryCache {
	return c.cache
}

// query serves path from the cache or fetches it once for all concurrent
// callers, then decodes it into out. The shared fetch does not inherit the
// cancellation of whichever caller started it; each caller stops waiting
// when its own ctx is done.
func (c *Client) query(ctx context.Context, path string, tags []Tag, out interface{}) error {
	if data, ok := c.cache.Get(path); ok {
		return json.Unmarshal(data, out)
	}

	fetchCtx := context.WithoutCancel(ctx)
	results := c.flight.DoChan(path, func() (interface{}, error) {
		generation := c.cache.Generation()
		data, err := c.do(fetchCtx, http.MethodGet, path, nil)
		if err != nil {
			return nil, err
		}
		c.cache.Set(path, data, tags, generation)
		return data, nil
	})

	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-results:
		if res.Err != nil {
			return res.Err
		}
		return json.Unmarshal(res.Val.([]byte), out)
	}
}

// mutate sends body and invalidates tags when the call succeeds.
func (c *Client) mutate(ctx context.Context, method, path string, body, out interface{}, invalidates ...Tag) error {
	data, err := c.do(ctx, method, path, body)
	if err != nil {
		return err
	}
	if len(invalidates) > 0 {
		c.cache.Invalidate(invalidates...)
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}) ([]byte, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return nil, err
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.ResolveReference(ref).String(), reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		_ = json.Unmarshal(data, apiErr)
		return nil, apiErr
	}
	return data, nil
}
