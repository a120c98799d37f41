package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/orlovm/bidmarket/internal/auth"
	"github.com/orlovm/bidmarket/pkg/errors"
	"github.com/orlovm/bidmarket/pkg/response"
)

const (
	CtxSessionKey = "session"
	CtxUserIDKey  = "userID"
)

// Auth resolves the bearer token into a Session using the supplied resolver.
func Auth(resolver auth.SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		authz := c.GetHeader("Authorization")
		if len(authz) < 8 || !strings.EqualFold(authz[:7], "Bearer ") {
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		token := strings.TrimSpace(authz[7:])
		session, err := resolver.Resolve(token)
		if err != nil {
			// Normalise all resolution failures to 401
			c.Header("WWW-Authenticate", "Bearer")
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		// Propagate identity into request context
		c.Set(CtxSessionKey, session)
		c.Set(CtxUserIDKey, session.UserID)

		c.Next()
	}
}

// RequireRole rejects sessions whose role does not match.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := SessionFromContext(c)
		if !ok {
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		if session.Role != role {
			response.Error(c, errors.ErrForbidden)
			c.Abort()
			return
		}

		c.Next()
	}
}

// SessionFromContext extracts the resolved session from gin context.
func SessionFromContext(c *gin.Context) (auth.Session, bool) {
	value, exists := c.Get(CtxSessionKey)
	if !exists {
		return auth.Session{}, false
	}

	session, ok := value.(auth.Session)
	return session, ok
}
