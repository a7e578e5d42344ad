package controller

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/klass-lk/blogboot/internal/auth"
	"github.com/klass-lk/blogboot/internal/cache"
	"github.com/klass-lk/blogboot/internal/middleware"
	"github.com/klass-lk/blogboot/internal/model"
	"github.com/klass-lk/blogboot/internal/server"
	"github.com/klass-lk/blogboot/internal/storage"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockPostService struct {
	mock.Mock
}

func (m *MockPostService) Create(ctx context.Context, authorID string, req model.CreatePostRequest) (model.Post, error) {
	args := m.Called(ctx, authorID, req)
	return args.Get(0).(model.Post), args.Error(1)
}

func (m *MockPostService) List(ctx context.Context, filter model.PostFilter) ([]model.PostView, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]model.PostView), args.Error(1)
}

func (m *MockPostService) Get(ctx context.Context, id string) (model.PostDetail, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.PostDetail), args.Error(1)
}

func (m *MockPostService) Update(ctx context.Context, id string, patch model.PostPatch) (model.Post, error) {
	args := m.Called(ctx, id, patch)
	return args.Get(0).(model.Post), args.Error(1)
}

func (m *MockPostService) Delete(ctx context.Context, id string) (model.Post, int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Post), args.Get(1).(int64), args.Error(2)
}

func (m *MockPostService) Related(ctx context.Context, id string) ([]model.Post, error) {
	args := m.Called(ctx, id)
	return args.Get(0).([]model.Post), args.Error(1)
}

type MockCommentService struct {
	mock.Mock
}

func (m *MockCommentService) Create(ctx context.Context, userID string, req model.CreateCommentRequest) (model.Comment, error) {
	args := m.Called(ctx, userID, req)
	return args.Get(0).(model.Comment), args.Error(1)
}

func (m *MockCommentService) Total(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Register(ctx context.Context, req model.RegisterRequest) (model.User, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockUserService) Login(ctx context.Context, req model.LoginRequest) (string, model.User, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Get(1).(model.User), args.Error(2)
}

type MockFileService struct {
	mock.Mock
}

func (m *MockFileService) GetUploadURL(ctx context.Context, fileName, prefix string) (storage.PresignedUpload, error) {
	args := m.Called(ctx, fileName, prefix)
	return args.Get(0).(storage.PresignedUpload), args.Error(1)
}

func (m *MockFileService) GetURL(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockFileService) IsExists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockFileService) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// recordingCache caches nothing and records invalidated tags.
type recordingCache struct {
	cache.Noop
	mu    sync.Mutex
	calls [][]string
}

func (r *recordingCache) Invalidate(_ context.Context, tags ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, tags)
	return nil
}

var testTokens = auth.NewTokenManager("controller-test-secret", time.Hour)

func bearer(t *testing.T, userID, role string) string {
	t.Helper()
	token, err := testTokens.Generate(userID, role)
	require.NoError(t, err)
	return "Bearer " + token
}

func newTestServer(path string, controller server.Controller) *server.Server {
	gin.SetMode(gin.TestMode)
	srv := server.New()
	srv.SetBasePath("/api")
	srv.RegisterController(path, controller)
	return srv
}

func authenticate() gin.HandlerFunc {
	return middleware.VerifyToken(testTokens)
}

func perform(srv *server.Server, method, target, body, authorization string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	srv.Engine().ServeHTTP(w, req)
	return w
}
