package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/klass-lk/blogboot/internal/middleware"
	"github.com/klass-lk/blogboot/internal/model"
	"github.com/klass-lk/blogboot/internal/server"
)

type UserService interface {
	Register(ctx context.Context, req model.RegisterRequest) (model.User, error)
	Login(ctx context.Context, req model.LoginRequest) (string, model.User, error)
}

type AuthController struct {
	userService  UserService
	tokenTTL     time.Duration
	secureCookie bool
	rateLimit    gin.HandlerFunc
}

// NewAuthController issues the session cookie. With secureCookie set the
// cookie is Secure and SameSite=None so a frontend on another origin can
// send it.
func NewAuthController(userService UserService, tokenTTL time.Duration, secureCookie bool, rateLimit gin.HandlerFunc) *AuthController {
	return &AuthController{
		userService:  userService,
		tokenTTL:     tokenTTL,
		secureCookie: secureCookie,
		rateLimit:    rateLimit,
	}
}

func (c *AuthController) Register(group *server.ControllerGroup) {
	group.POST("/register", c.RegisterUser, c.rateLimit)
	group.POST("/login", c.Login, c.rateLimit)
	group.POST("/logout", c.Logout)
}

func (c *AuthController) RegisterUser(ctx *server.Context, req model.RegisterRequest) (*model.RegisterResponse, error) {
	user, err := c.userService.Register(ctx.Ctx(), req)
	if err != nil {
		return nil, err
	}
	ctx.SetStatus(http.StatusCreated)
	return &model.RegisterResponse{Message: "User registered successfully", User: user.Summary()}, nil
}

func (c *AuthController) Login(ctx *server.Context, req model.LoginRequest) (*model.LoginResponse, error) {
	token, user, err := c.userService.Login(ctx.Ctx(), req)
	if err != nil {
		return nil, err
	}
	c.setTokenCookie(ctx, token, int(c.tokenTTL.Seconds()))

	return &model.LoginResponse{
		Message: "Logged in successfully",
		Token:   token,
		User:    user.Summary(),
	}, nil
}

func (c *AuthController) Logout(ctx *server.Context) (*model.MessageResponse, error) {
	c.setTokenCookie(ctx, "", -1)
	return &model.MessageResponse{Message: "Logged out successfully"}, nil
}

func (c *AuthController) setTokenCookie(ctx *server.Context, value string, maxAge int) {
	if c.secureCookie {
		ctx.SetSameSite(http.SameSiteNoneMode)
	} else {
		ctx.SetSameSite(http.SameSiteLaxMode)
	}
	ctx.SetCookie(middleware.TokenCookie, value, maxAge, "/", "", c.secureCookie, true)
}
