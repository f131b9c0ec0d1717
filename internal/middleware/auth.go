package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/roomieradar/roomieradar/internal/errors"
	"github.com/roomieradar/roomieradar/internal/telemetry"
)

const (
	// TokenCookie is the cookie the login handler sets.
	TokenCookie = "token"

	userIDKey = "user_id"
	tokenKey  = "auth_token"
)

// Authenticator resolves a bearer token to a user id.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (string, error)
}

// RequireAuth rejects requests without a valid token. The token is read from
// the token cookie first, then from an Authorization: Bearer header.
func RequireAuth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := TokenFromRequest(c)
		if token == "" {
			_ = c.Error(errors.NewAuthenticationError("Authentication required"))
			c.Abort()
			return
		}

		userID, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}

		c.Set(userIDKey, userID)
		c.Set(tokenKey, token)
		c.Request = c.Request.WithContext(telemetry.WithUserID(c.Request.Context(), userID))
		c.Next()
	}
}

// TokenFromRequest returns the raw token, or "" when none was sent.
func TokenFromRequest(c *gin.Context) string {
	if cookie, err := c.Cookie(TokenCookie); err == nil && cookie != "" {
		return cookie
	}
	header := c.GetHeader("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

// CurrentUserID returns the id RequireAuth stored on the context.
func CurrentUserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

// CurrentToken returns the token the request authenticated with.
func CurrentToken(c *gin.Context) string {
	return c.GetString(tokenKey)
}
