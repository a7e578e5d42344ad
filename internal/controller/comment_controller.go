package controller

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/klass-lk/blogboot/internal/cache"
	"github.com/klass-lk/blogboot/internal/model"
	"github.com/klass-lk/blogboot/internal/server"
)

type CommentService interface {
	Create(ctx context.Context, userID string, req model.CreateCommentRequest) (model.Comment, error)
	Total(ctx context.Context) (int64, error)
}

type CommentController struct {
	commentService CommentService
	cacheService   cache.Service
	authenticate   gin.HandlerFunc
	rateLimit      gin.HandlerFunc
}

func NewCommentController(commentService CommentService, cacheService cache.Service, authenticate, rateLimit gin.HandlerFunc) *CommentController {
	return &CommentController{
		commentService: commentService,
		cacheService:   cacheService,
		authenticate:   authenticate,
		rateLimit:      rateLimit,
	}
}

func (c *CommentController) Register(group *server.ControllerGroup) {
	group.POST("/post-comment", c.PostComment, c.authenticate, c.rateLimit)
	group.GET("/total-comments", c.TotalComments)
}

func (c *CommentController) PostComment(ctx *server.Context, req model.CreateCommentRequest) (*model.CommentResponse, error) {
	authCtx, err := ctx.GetAuthContext()
	if err != nil {
		return nil, err
	}

	comment, err := c.commentService.Create(ctx.Ctx(), authCtx.UserID, req)
	if err != nil {
		return nil, err
	}
	cache.Invalidate(ctx.Ctx(), c.cacheService, cache.PostTag(comment.PostID))

	ctx.SetStatus(http.StatusCreated)
	return &model.CommentResponse{Message: "Comment created successfully", Comment: comment}, nil
}

func (c *CommentController) TotalComments(ctx *server.Context) (*model.TotalCommentsResponse, error) {
	total, err := c.commentService.Total(ctx.Ctx())
	if err != nil {
		return nil, err
	}
	return &model.TotalCommentsResponse{TotalComment: total}, nil
}
