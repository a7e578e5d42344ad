package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/klass-lk/blogboot/internal/apperror"
	"github.com/klass-lk/blogboot/internal/auth"
	"github.com/klass-lk/blogboot/internal/model"
	"github.com/klass-lk/blogboot/internal/server"
)

// TokenCookie is the cookie carrying the session token.
const TokenCookie = "token"

type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

// VerifyToken authenticates the request from the token cookie or a
// Bearer header and stores the user id and role on the context.
func VerifyToken(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFromRequest(c)
		if token == "" {
			server.SendError(c, apperror.Unauthorized("Unauthorized"))
			return
		}

		claims, err := parser.Parse(token)
		if err != nil {
			server.SendError(c, apperror.Unauthorized("Invalid token"))
			return
		}

		c.Set(server.UserIDKey, claims.Subject)
		c.Set(server.RoleKey, claims.Role)
		c.Next()
	}
}

// IsAdmin rejects callers whose role is not admin. It must run after VerifyToken.
func IsAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(server.RoleKey) != model.RoleAdmin {
			server.SendError(c, apperror.Forbidden("You are not allowed to perform this action"))
			return
		}
		c.Next()
	}
}

func tokenFromRequest(c *gin.Context) string {
	if cookie, err := c.Cookie(TokenCookie); err == nil && cookie != "" {
		return cookie
	}
	header := c.GetHeader("Authorization")
	if scheme, token, ok := strings.Cut(header, " "); ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(token)
	}
	return ""
}
