package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI counts requests per path and requires the session cookie on mutations.
type fakeAPI struct {
	mu      sync.Mutex
	hits    map[string]int
	delay   time.Duration
	started chan struct{}
}

func (f *fakeAPI) count(r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hits[r.Method+" "+r.URL.RequestURI()]++
}

func (f *fakeAPI) Hits(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[key]
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()
	writeJSON := func(w http.ResponseWriter, status int, v interface{}) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}
	requireSession := func(w http.ResponseWriter, r *http.Request) bool {
		if cookie, err := r.Cookie("token"); err != nil || cookie.Value != "session" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error_code": "UNAUTHORIZED", "message": "Unauthorized"})
			return false
		}
		return true
	}

	mux.HandleFunc("GET /api/blogs", func(w http.ResponseWriter, r *http.Request) {
		f.count(r)
		if f.started != nil {
			select {
			case f.started <- struct{}{}:
			default:
			}
		}
		time.Sleep(f.delay)
		writeJSON(w, http.StatusOK, []PostView{{Post: Post{ID: "p1", Title: "Hiking"}}})
	})
	mux.HandleFunc("GET /api/blogs/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.count(r)
		if r.PathValue("id") == "missing" {
			writeJSON(w, http.StatusNotFound, map[string]string{"error_code": "NOT_FOUND", "message": "Post not found"})
			return
		}
		writeJSON(w, http.StatusOK, PostDetail{Post: PostView{Post: Post{ID: r.PathValue("id")}}, Comments: []CommentView{}})
	})
	mux.HandleFunc("GET /api/blogs/related/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.count(r)
		writeJSON(w, http.StatusOK, []Post{{ID: "p2"}})
	})
	mux.HandleFunc("GET /api/comments/total-comments", func(w http.ResponseWriter, r *http.Request) {
		f.count(r)
		writeJSON(w, http.StatusOK, TotalCommentsResponse{TotalComment: 7})
	})
	mux.HandleFunc("POST /api/blogs/create-post", func(w http.ResponseWriter, r *http.Request) {
		f.count(r)
		if !requireSession(w, r) {
			return
		}
		var req CreatePostRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		writeJSON(w, http.StatusCreated, map[string]interface{}{"message": "Post created successfully", "post": Post{ID: "p3", Title: req.Title}})
	})
	mux.HandleFunc("PATCH /api/blogs/update-post/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.count(r)
		if !requireSession(w, r) {
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"message": "Post updated successfully", "post": Post{ID: r.PathValue("id")}})
	})
	mux.HandleFunc("DELETE /api/blogs/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.count(r)
		if !requireSession(w, r) {
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Post and associated comments deleted successfully"})
	})
	mux.HandleFunc("POST /api/comments/post-comment", func(w http.ResponseWriter, r *http.Request) {
		f.count(r)
		if !requireSession(w, r) {
			return
		}
		var req CreateCommentRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		writeJSON(w, http.StatusCreated, map[string]interface{}{"message": "Comment created successfully", "comment": Comment{ID: "c1", PostID: req.PostID}})
	})
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		f.count(r)
		http.SetCookie(w, &http.Cookie{Name: "token", Value: "session", Path: "/", HttpOnly: true})
		writeJSON(w, http.StatusOK, LoginResponse{Message: "Logged in successfully", Token: "session", User: UserSummary{ID: "a1"}})
	})
	mux.HandleFunc("POST /api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		f.count(r)
		http.SetCookie(w, &http.Cookie{Name: "token", Value: "", Path: "/", MaxAge: -1})
		writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
	})
	return mux
}

func newTestClient(t *testing.T) (*Client, *fakeAPI) {
	t.Helper()
	api := &fakeAPI{hits: make(map[string]int)}
	srv := httptest.NewServer(api.handler())
	t.Cleanup(srv.Close)

	c, err := New(Options{BaseURL: srv.URL + "/api"})
	require.NoError(t, err)
	return c, api
}

func TestClient_QueriesAreCached(t *testing.T) {
	c, api := newTestClient(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		posts, err := c.FetchBlogs(ctx, PostFilter{})
		require.NoError(t, err)
		require.Len(t, posts, 1)
	}
	_, err := c.TotalComments(ctx)
	require.NoError(t, err)
	total, err := c.TotalComments(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(7), total)
	assert.Equal(t, 1, api.Hits("GET /api/blogs"))
	assert.Equal(t, 1, api.Hits("GET /api/comments/total-comments"))
}

func TestClient_FilterQueryString(t *testing.T) {
	c, api := newTestClient(t)
	ctx := context.Background()

	_, err := c.FetchBlogs(ctx, PostFilter{Search: "ella", Category: "All Categories"})
	require.NoError(t, err)
	_, err = c.FetchBlogs(ctx, PostFilter{Category: "Travel", Location: "Kandy"})
	require.NoError(t, err)

	assert.Equal(t, 1, api.Hits("GET /api/blogs?search=ella"))
	assert.Equal(t, 1, api.Hits("GET /api/blogs?category=Travel&location=Kandy"))
}

func TestClient_MutationsInvalidateTags(t *testing.T) {
	c, api := newTestClient(t)
	ctx := context.Background()

	_, err := c.Login(ctx, "admin@blog.test", "admin-pass")
	require.NoError(t, err)

	warm := func() {
		_, err := c.FetchBlogs(ctx, PostFilter{})
		require.NoError(t, err)
		_, err = c.FetchBlogByID(ctx, "p1")
		require.NoError(t, err)
		_, err = c.FetchBlogByID(ctx, "p2")
		require.NoError(t, err)
		_, err = c.FetchRelatedBlogs(ctx, "p1")
		require.NoError(t, err)
	}
	warm()

	_, err = c.UpdateBlog(ctx, "p1", PostPatch{})
	require.NoError(t, err)
	warm()
	assert.Equal(t, 1, api.Hits("GET /api/blogs"), "list only provides the type tag")
	assert.Equal(t, 2, api.Hits("GET /api/blogs/p1"))
	assert.Equal(t, 1, api.Hits("GET /api/blogs/p2"))

	_, err = c.PostComment(ctx, CreateCommentRequest{Comment: "hi", PostID: "p2"})
	require.NoError(t, err)
	warm()
	assert.Equal(t, 2, api.Hits("GET /api/blogs/p2"))
	assert.Equal(t, 2, api.Hits("GET /api/blogs/p1"))

	post, err := c.PostBlog(ctx, CreatePostRequest{Title: "New"})
	require.NoError(t, err)
	assert.Equal(t, "New", post.Title)
	warm()
	assert.Equal(t, 2, api.Hits("GET /api/blogs"))
	assert.Equal(t, 3, api.Hits("GET /api/blogs/p1"))
	assert.Equal(t, 3, api.Hits("GET /api/blogs/p2"))
	assert.Equal(t, 1, api.Hits("GET /api/blogs/related/p1"), "related results provide no tags")

	require.NoError(t, c.DeleteBlog(ctx, "p2"))
	warm()
	assert.Equal(t, 4, api.Hits("GET /api/blogs/p2"))
	assert.Equal(t, 3, api.Hits("GET /api/blogs/p1"))
}

func TestClient_FailedMutationKeepsCache(t *testing.T) {
	c, api := newTestClient(t)
	ctx := context.Background()

	_, err := c.FetchBlogs(ctx, PostFilter{})
	require.NoError(t, err)

	_, err = c.PostBlog(ctx, CreatePostRequest{Title: "New"})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "UNAUTHORIZED", apiErr.ErrorCode)

	_, err = c.FetchBlogs(ctx, PostFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, api.Hits("GET /api/blogs"))
}

func TestClient_LoginAndLogoutResetCache(t *testing.T) {
	c, api := newTestClient(t)
	ctx := context.Background()

	_, err := c.FetchRelatedBlogs(ctx, "p1")
	require.NoError(t, err)

	resp, err := c.Login(ctx, "admin@blog.test", "admin-pass")
	require.NoError(t, err)
	assert.Equal(t, "a1", resp.User.ID)
	assert.Equal(t, 0, c.Cache().Len())

	require.NoError(t, c.DeleteBlog(ctx, "p1"), "the session cookie is sent after login")

	_, err = c.FetchRelatedBlogs(ctx, "p1")
	require.NoError(t, err)
	require.NoError(t, c.Logout(ctx))
	assert.Equal(t, 0, c.Cache().Len())
	assert.Equal(t, 2, api.Hits("GET /api/blogs/related/p1"))

	err = c.DeleteBlog(ctx, "p1")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}

func TestClient_NotFound(t *testing.T) {
	c, _ := newTestClient(t)

	_, err := c.FetchBlogByID(context.Background(), "missing")

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "Post not found", apiErr.Message)
	assert.Equal(t, 0, c.Cache().Len())
}

func TestClient_ConcurrentQueriesShareOneRequest(t *testing.T) {
	c, api := newTestClient(t)
	api.delay = 200 * time.Millisecond

	var (
		wg     sync.WaitGroup
		failed atomic.Int32
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.FetchBlogs(context.Background(), PostFilter{}); err != nil {
				failed.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Zero(t, failed.Load())
	assert.Equal(t, 1, api.Hits("GET /api/blogs"))
}

func TestNew_Defaults(t *testing.T) {
	c, err := New(Options{})
	require.NoError(t, err)

	assert.Equal(t, DefaultBaseURL, c.baseURL.String())
	assert.NotNil(t, c.http.Jar)
	assert.Equal(t, DefaultKeepUnusedDataFor, c.cache.ttl)
}

func TestClient_SharedQueryOutlivesFirstCaller(t *testing.T) {
	c, api := newTestClient(t)
	api.delay = 300 * time.Millisecond
	api.started = make(chan struct{}, 1)

	shortCtx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	shortErr := make(chan error, 1)
	go func() {
		_, err := c.FetchBlogs(shortCtx, PostFilter{})
		shortErr <- err
	}()

	<-api.started
	posts, err := c.FetchBlogs(context.Background(), PostFilter{})
	require.NoError(t, err)
	assert.Len(t, posts, 1)

	assert.ErrorIs(t, <-shortErr, context.DeadlineExceeded)
	assert.Equal(t, 1, api.Hits("GET /api/blogs"))
	assert.Equal(t, 1, c.Cache().Len())
}
