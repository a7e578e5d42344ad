package controller

import (
	"github.com/gin-gonic/gin"
	"github.com/klass-lk/blogboot/internal/middleware"
	"github.com/klass-lk/blogboot/internal/model"
	"github.com/klass-lk/blogboot/internal/server"
	"github.com/klass-lk/blogboot/internal/storage"
)

// CoverPrefix is the key prefix of uploaded cover images.
const CoverPrefix = "covers"

type UploadController struct {
	files        storage.FileService
	authenticate gin.HandlerFunc
}

func NewUploadController(files storage.FileService, authenticate gin.HandlerFunc) *UploadController {
	return &UploadController{
		files:        files,
		authenticate: authenticate,
	}
}

func (c *UploadController) Register(group *server.ControllerGroup) {
	group.POST("/cover-url", c.GetCoverUploadURL, c.authenticate, middleware.IsAdmin())
}

// GetCoverUploadURL presigns an upload. The returned key goes into the
// post's coverImg.
func (c *UploadController) GetCoverUploadURL(ctx *server.Context, req model.CoverUploadRequest) (*storage.PresignedUpload, error) {
	upload, err := c.files.GetUploadURL(ctx.Ctx(), req.FileName, CoverPrefix)
	if err != nil {
		return nil, err
	}
	return &upload, nil
}
