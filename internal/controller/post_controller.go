package controller

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/klass-lk/blogboot/internal/cache"
	"github.com/klass-lk/blogboot/internal/middleware"
	"github.com/klass-lk/blogboot/internal/model"
	"github.com/klass-lk/blogboot/internal/observability"
	"github.com/klass-lk/blogboot/internal/server"
	"github.com/klass-lk/blogboot/internal/storage"
)

type PostService interface {
	Create(ctx context.Context, authorID string, req model.CreatePostRequest) (model.Post, error)
	List(ctx context.Context, filter model.PostFilter) ([]model.PostView, error)
	Get(ctx context.Context, id string) (model.PostDetail, error)
	Update(ctx context.Context, id string, patch model.PostPatch) (model.Post, error)
	Delete(ctx context.Context, id string) (model.Post, int64, error)
	Related(ctx context.Context, id string) ([]model.Post, error)
}

type PostController struct {
	postService  PostService
	cacheService cache.Service
	cacheTTL     time.Duration
	files        storage.FileService
	authenticate gin.HandlerFunc
}

// NewPostController serves the blog routes. files may be nil when cover
// uploads are disabled.
func NewPostController(postService PostService, cacheService cache.Service, cacheTTL time.Duration, files storage.FileService, authenticate gin.HandlerFunc) *PostController {
	return &PostController{
		postService:  postService,
		cacheService: cacheService,
		cacheTTL:     cacheTTL,
		files:        files,
		authenticate: authenticate,
	}
}

func (c *PostController) Register(group *server.ControllerGroup) {
	group.GET("", c.GetPosts, cache.Middleware(c.cacheService, c.cacheTTL, cache.PostsTags, nil))
	group.GET("/related/:id", c.GetRelatedPosts, cache.Middleware(c.cacheService, c.cacheTTL, cache.PostsTags, nil))
	group.GET("/:id", c.GetPost, cache.Middleware(c.cacheService, c.cacheTTL, cache.PostDetailTags, nil))

	admin := group.Group("", c.authenticate, middleware.IsAdmin())
	{
		admin.POST("/create-post", c.CreatePost)
		admin.PATCH("/update-post/:id", c.UpdatePost)
		admin.DELETE("/:id", c.DeletePost)
	}
}

func (c *PostController) GetPosts(ctx *server.Context, filter model.PostFilter) ([]model.PostView, error) {
	return c.postService.List(ctx.Ctx(), filter)
}

func (c *PostController) GetPost(ctx *server.Context) (model.PostDetail, error) {
	return c.postService.Get(ctx.Ctx(), ctx.Param("id"))
}

func (c *PostController) GetRelatedPosts(ctx *server.Context) ([]model.Post, error) {
	return c.postService.Related(ctx.Ctx(), ctx.Param("id"))
}

func (c *PostController) CreatePost(ctx *server.Context, req model.CreatePostRequest) (*model.PostResponse, error) {
	authCtx, err := ctx.GetAuthContext()
	if err != nil {
		return nil, err
	}

	post, err := c.postService.Create(ctx.Ctx(), authCtx.UserID, req)
	if err != nil {
		return nil, err
	}
	cache.Invalidate(ctx.Ctx(), c.cacheService, cache.TagPosts, cache.PostTag(post.ID))

	ctx.SetStatus(http.StatusCreated)
	return &model.PostResponse{Message: "Post created successfully", Post: post}, nil
}

func (c *PostController) UpdatePost(ctx *server.Context, patch model.PostPatch) (*model.PostResponse, error) {
	id := ctx.Param("id")
	post, err := c.postService.Update(ctx.Ctx(), id, patch)
	if err != nil {
		return nil, err
	}
	cache.Invalidate(ctx.Ctx(), c.cacheService, cache.TagPosts, cache.PostTag(id))

	return &model.PostResponse{Message: "Post updated successfully", Post: post}, nil
}

func (c *PostController) DeletePost(ctx *server.Context) (*model.MessageResponse, error) {
	id := ctx.Param("id")
	post, removed, err := c.postService.Delete(ctx.Ctx(), id)
	if post.ID != "" {
		// The post is gone even when its comments could not be removed.
		cache.Invalidate(ctx.Ctx(), c.cacheService, cache.TagPosts, cache.PostTag(id))
	}
	if err != nil {
		return nil, err
	}
	observability.CascadeDeletedComments.Add(float64(removed))
	c.deleteCover(ctx.Ctx(), post.CoverImg)

	return &model.MessageResponse{Message: "Post and associated comments deleted successfully"}, nil
}

// deleteCover removes an uploaded cover. External image URLs are left alone.
func (c *PostController) deleteCover(ctx context.Context, key string) {
	if c.files == nil || !strings.HasPrefix(key, CoverPrefix+"/") {
		return
	}
	if err := c.files.Delete(ctx, key); err != nil {
		slog.WarnContext(ctx, "failed to delete cover image", "key", key, "error", err)
	}
}
