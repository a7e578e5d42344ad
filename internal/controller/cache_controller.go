package controller

import (
	"github.com/gin-gonic/gin"
	"github.com/klass-lk/blogboot/internal/apperror"
	"github.com/klass-lk/blogboot/internal/cache"
	"github.com/klass-lk/blogboot/internal/middleware"
	"github.com/klass-lk/blogboot/internal/model"
	"github.com/klass-lk/blogboot/internal/server"
)

type CacheController struct {
	cacheService cache.Service
	authenticate gin.HandlerFunc
}

func NewCacheController(cacheService cache.Service, authenticate gin.HandlerFunc) *CacheController {
	return &CacheController{
		cacheService: cacheService,
		authenticate: authenticate,
	}
}

func (c *CacheController) Register(group *server.ControllerGroup) {
	group.POST("/invalidate", c.Invalidate, c.authenticate, middleware.IsAdmin())
}

// Invalidate handles manual cache invalidation requests
// Query param: tag (required)
func (c *CacheController) Invalidate(ctx *server.Context) (*model.MessageResponse, error) {
	tag := ctx.Query("tag")
	if tag == "" {
		return nil, apperror.BadRequest("Tag is required")
	}

	if err := c.cacheService.Invalidate(ctx.Ctx(), tag); err != nil {
		return nil, apperror.Wrap(err, "Failed to invalidate cache")
	}
	return &model.MessageResponse{Message: "Cache invalidated"}, nil
}
