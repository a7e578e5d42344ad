package client

import (
	"context"
	"net/http"

	"github.com/klass-lk/blogboot/internal/model"
)

// Login stores the session cookie and drops every cached result, since
// what the caller may see depends on who they are.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResponse, error) {
	var resp LoginResponse
	err := c.mutate(ctx, http.MethodPost, "auth/login", model.LoginRequest{Email: email, Password: password}, &resp)
	if err == nil {
		c.cache.Reset()
	}
	return resp, err
}

func (c *Client) Logout(ctx context.Context) error {
	err := c.mutate(ctx, http.MethodPost, "auth/logout", nil, nil)
	if err == nil {
		c.cache.Reset()
	}
	return err
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) (UserSummary, error) {
	var resp model.RegisterResponse
	err := c.mutate(ctx, http.MethodPost, "auth/register", req, &resp)
	return resp.User, err
}
