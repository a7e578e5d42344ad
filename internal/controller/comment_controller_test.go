package controller

import (
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/klass-lk/blogboot/internal/apperror"
	"github.com/klass-lk/blogboot/internal/cache"
	"github.com/klass-lk/blogboot/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func passThrough(c *gin.Context) { c.Next() }

func TestCommentController_PostComment(t *testing.T) {
	comments := new(MockCommentService)
	invalidated := &recordingCache{}
	srv := newTestServer("/comments", NewCommentController(comments, invalidated, authenticate(), passThrough))

	req := model.CreateCommentRequest{Comment: "Great read", PostID: "p1"}
	comments.On("Create", mock.Anything, "u1", req).Return(model.Comment{ID: "c1", Comment: "Great read", PostID: "p1", User: "u1"}, nil)

	w := perform(srv, http.MethodPost, "/api/comments/post-comment", `{"comment":"Great read","postId":"p1"}`, bearer(t, "u1", model.RoleUser))

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `"Comment created successfully"`, mustField(t, w.Body.Bytes(), "message"))
	assert.Equal(t, [][]string{{"post:p1"}}, invalidated.calls)
	comments.AssertExpectations(t)
}

func TestCommentController_PostCommentErrors(t *testing.T) {
	tests := []struct {
		name          string
		body          string
		authorization bool
		serviceErr    error
		wantCode      int
	}{
		{name: "anonymous", body: `{"comment":"x","postId":"p1"}`, wantCode: http.StatusUnauthorized},
		{name: "missing post id", body: `{"comment":"x"}`, authorization: true, wantCode: http.StatusBadRequest},
		{name: "unknown post", body: `{"comment":"x","postId":"p1"}`, authorization: true, serviceErr: apperror.NotFound("Post not found"), wantCode: http.StatusNotFound},
		{name: "store failure", body: `{"comment":"x","postId":"p1"}`, authorization: true, serviceErr: errors.New("db down"), wantCode: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			comments := new(MockCommentService)
			invalidated := &recordingCache{}
			srv := newTestServer("/comments", NewCommentController(comments, invalidated, authenticate(), passThrough))
			if tt.serviceErr != nil {
				comments.On("Create", mock.Anything, "u1", mock.Anything).Return(model.Comment{}, tt.serviceErr)
			}

			authorization := ""
			if tt.authorization {
				authorization = bearer(t, "u1", model.RoleUser)
			}
			w := perform(srv, http.MethodPost, "/api/comments/post-comment", tt.body, authorization)

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Empty(t, invalidated.calls)
		})
	}
}

func TestCommentController_TotalComments(t *testing.T) {
	comments := new(MockCommentService)
	srv := newTestServer("/comments", NewCommentController(comments, cache.Noop{}, authenticate(), passThrough))

	comments.On("Total", mock.Anything).Return(int64(42), nil)

	w := perform(srv, http.MethodGet, "/api/comments/total-comments", "", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"totalComment":42}`, w.Body.String())
}
