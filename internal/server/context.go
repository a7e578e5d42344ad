package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/klass-lk/blogboot/internal/apperror"
)

// Keys under which the auth middleware stores the caller identity.
const (
	UserIDKey = "user_id"
	RoleKey   = "role"
)

type AuthContext struct {
	UserID string
	Role   string
}

type Context struct {
	*gin.Context
	status int
}

func NewContext(c *gin.Context) *Context {
	return &Context{
		Context: c,
		status:  http.StatusOK,
	}
}

// Ctx returns the request context for downstream calls.
func (c *Context) Ctx() context.Context {
	return c.Request.Context()
}

// SetStatus overrides the status used when the handler result is written.
func (c *Context) SetStatus(status int) {
	c.status = status
}

// GetAuthContext returns the current auth context
func (c *Context) GetAuthContext() (AuthContext, error) {
	userID := c.GetString(UserIDKey)
	if userID == "" {
		return AuthContext{}, apperror.Unauthorized("Operation not permitted")
	}
	return AuthContext{
		UserID: userID,
		Role:   c.GetString(RoleKey),
	}, nil
}

func (c *Context) GetRequest(request interface{}) error {
	if err := c.ShouldBind(request); err != nil {
		return invalidRequest(err)
	}
	return nil
}

func (c *Context) SendError(err error) {
	SendError(c.Context, err)
}
